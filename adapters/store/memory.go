package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tonrent/tonrent/core"
)

// Memory is an in-memory implementation of the listing and wallet stores.
// Listings keep insertion order. Used for development and tests.
type Memory struct {
	mu       sync.RWMutex
	listings map[string]core.Listing
	order    []string
	wallets  map[int64]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		listings: map[string]core.Listing{},
		wallets:  map[int64]string{},
	}
}

// CreateListing inserts the listing unless the item id is taken.
func (s *Memory) CreateListing(ctx context.Context, listing core.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.listings[listing.ItemID]; exists {
		return fmt.Errorf("%w: item %q already listed", core.ErrInvalidOffer, listing.ItemID)
	}
	s.listings[listing.ItemID] = listing
	s.order = append(s.order, listing.ItemID)
	return nil
}

// GetListing returns the listing for the item id.
func (s *Memory) GetListing(ctx context.Context, itemID string) (core.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[itemID]
	if !ok {
		return core.Listing{}, core.ErrNotFound
	}
	return listing, nil
}

// AvailableListings returns Available listings in insertion order.
func (s *Memory) AvailableListings(ctx context.Context) ([]core.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Listing
	for _, id := range s.order {
		if l := s.listings[id]; l.State == core.ListingAvailable {
			out = append(out, l)
		}
	}
	return out, nil
}

// MarkRented transitions the listing Available -> Rented. The check and the
// write happen under one lock, so only a single caller can win.
func (s *Memory) MarkRented(ctx context.Context, itemID, renter string, endTime time.Time) (core.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, ok := s.listings[itemID]
	if !ok || listing.State != core.ListingAvailable {
		return core.Listing{}, core.ErrNotFound
	}

	end := endTime
	listing.State = core.ListingRented
	listing.RenterAddress = renter
	listing.RentalEndTime = &end
	s.listings[itemID] = listing
	return listing, nil
}

// ListingsByOwner returns all listings owned by the wallet.
func (s *Memory) ListingsByOwner(ctx context.Context, owner string) ([]core.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Listing
	for _, id := range s.order {
		if l := s.listings[id]; l.OwnerAddress == owner {
			out = append(out, l)
		}
	}
	return out, nil
}

// ListingsByRenter returns listings currently rented by the wallet.
func (s *Memory) ListingsByRenter(ctx context.Context, renter string) ([]core.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Listing
	for _, id := range s.order {
		if l := s.listings[id]; l.State == core.ListingRented && l.RenterAddress == renter {
			out = append(out, l)
		}
	}
	return out, nil
}

// SaveWallet upserts the user's wallet binding, last write wins.
func (s *Memory) SaveWallet(ctx context.Context, userID int64, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[userID] = address
	return nil
}

// GetWallet returns the bound address, "" when the user has none.
func (s *Memory) GetWallet(ctx context.Context, userID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallets[userID], nil
}
