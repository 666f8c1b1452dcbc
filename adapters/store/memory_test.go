package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonrent/tonrent/core"
)

func listing(itemID, owner string) core.Listing {
	return core.Listing{
		ItemID:          itemID,
		OwnerAddress:    owner,
		UnitPrice:       1000,
		DurationSeconds: core.MinRentalDurationSeconds,
		ContractAddress: "EQ_" + itemID,
		State:           core.ListingAvailable,
		CreatedAt:       time.Now(),
	}
}

func TestMemoryCreateListingDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.CreateListing(ctx, listing("nft-1", "W1")))

	err := s.CreateListing(ctx, listing("nft-1", "W2"))
	assert.ErrorIs(t, err, core.ErrInvalidOffer)

	got, err := s.GetListing(ctx, "nft-1")
	require.NoError(t, err)
	assert.Equal(t, "W1", got.OwnerAddress, "the first write must survive")
}

func TestMemoryMarkRented(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.CreateListing(ctx, listing("nft-1", "W1")))

	end := time.Now().Add(7 * 24 * time.Hour)
	rented, err := s.MarkRented(ctx, "nft-1", "W2", end)
	require.NoError(t, err)
	assert.Equal(t, core.ListingRented, rented.State)
	assert.Equal(t, "W2", rented.RenterAddress)
	require.NotNil(t, rented.RentalEndTime)
	assert.True(t, rented.RentalEndTime.Equal(end))

	// Already rented.
	_, err = s.MarkRented(ctx, "nft-1", "W3", end)
	assert.ErrorIs(t, err, core.ErrNotFound)

	// Unknown item.
	_, err = s.MarkRented(ctx, "missing", "W3", end)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryAvailableListingsOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.CreateListing(ctx, listing(id, "W1")))
	}
	_, err := s.MarkRented(ctx, "a", "W2", time.Now().Add(time.Hour))
	require.NoError(t, err)

	available, err := s.AvailableListings(ctx)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "c", available[0].ItemID)
	assert.Equal(t, "b", available[1].ItemID)
}

func TestMemoryListingsByOwnerAndRenter(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.CreateListing(ctx, listing("nft-1", "W1")))
	require.NoError(t, s.CreateListing(ctx, listing("nft-2", "W1")))
	require.NoError(t, s.CreateListing(ctx, listing("nft-3", "W9")))

	_, err := s.MarkRented(ctx, "nft-2", "W2", time.Now().Add(time.Hour))
	require.NoError(t, err)

	owned, err := s.ListingsByOwner(ctx, "W1")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	rented, err := s.ListingsByRenter(ctx, "W2")
	require.NoError(t, err)
	require.Len(t, rented, 1)
	assert.Equal(t, "nft-2", rented[0].ItemID)

	none, err := s.ListingsByRenter(ctx, "W1")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryWalletUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	got, err := s.GetWallet(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.SaveWallet(ctx, 7, "EQ_first"))
	require.NoError(t, s.SaveWallet(ctx, 7, "EQ_second"))

	got, err = s.GetWallet(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "EQ_second", got, "rebinding replaces the previous wallet")
}
