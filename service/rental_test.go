package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonrent/tonrent/adapters/store"
	"github.com/tonrent/tonrent/core"
	"github.com/tonrent/tonrent/ports"
)

type chainStub struct {
	mu        sync.Mutex
	deployErr error
	execErr   error
	execFail  bool
	signErr   error
	codeErr   error
	execCalls int
}

func (c *chainStub) Deploy(ctx context.Context, owner, itemID string, price, duration int64) (string, error) {
	if c.deployErr != nil {
		return "", c.deployErr
	}
	return "EQ_" + owner + "_" + itemID, nil
}

func (c *chainStub) ExecuteRental(ctx context.Context, contract, renter string, price int64) (bool, error) {
	c.mu.Lock()
	c.execCalls++
	c.mu.Unlock()
	if c.execErr != nil {
		return false, c.execErr
	}
	return !c.execFail, nil
}

func (c *chainStub) Sign(ctx context.Context, payload string, role ports.SignerRole) (string, error) {
	if c.signErr != nil {
		return "", c.signErr
	}
	return "sig:" + string(role), nil
}

func (c *chainStub) RetrieveCode(ctx context.Context, contract, deepLink, renterSig, platformSig string) (string, error) {
	if c.codeErr != nil {
		return "", c.codeErr
	}
	return "code-123", nil
}

func (c *chainStub) executions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execCalls
}

type inventoryStub struct {
	items []core.ExternalItem
}

func (i *inventoryStub) OwnedItems(ctx context.Context, wallet string) ([]core.ExternalItem, error) {
	return i.items, nil
}

func newRentalService(chain *chainStub) *RentalService {
	return NewRentalService(store.NewMemory(), chain, &inventoryStub{}, nil)
}

func TestOfferRejectsInvalidTerms(t *testing.T) {
	ctx := context.Background()
	svc := newRentalService(&chainStub{})

	cases := []struct {
		name     string
		price    int64
		duration int64
	}{
		{"zero price", 0, core.MinRentalDurationSeconds},
		{"negative price", -5, core.MinRentalDurationSeconds},
		{"duration below one week", 1000, core.MinRentalDurationSeconds - 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Offer(ctx, "W1", "nft-1", tc.price, tc.duration)
			assert.ErrorIs(t, err, core.ErrInvalidOffer)
		})
	}

	listings, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, listings, "rejected offers must not create listings")
}

func TestOfferAcceptsMinimumDuration(t *testing.T) {
	ctx := context.Background()
	svc := newRentalService(&chainStub{})

	contract, err := svc.Offer(ctx, "W1", "nft-1", 1000, core.MinRentalDurationSeconds)
	require.NoError(t, err)
	assert.Equal(t, "EQ_W1_nft-1", contract)

	listings, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "nft-1", listings[0].ItemID)
	assert.Equal(t, core.ListingAvailable, listings[0].State)
}

func TestOfferDeploymentFailureCreatesNothing(t *testing.T) {
	ctx := context.Background()
	svc := newRentalService(&chainStub{deployErr: errors.New("chain down")})

	_, err := svc.Offer(ctx, "W1", "nft-1", 1000, core.MinRentalDurationSeconds)
	assert.ErrorIs(t, err, core.ErrDeploymentFailed)

	listings, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestOfferDuplicateItem(t *testing.T) {
	ctx := context.Background()
	svc := newRentalService(&chainStub{})

	_, err := svc.Offer(ctx, "W1", "nft-1", 1000, core.MinRentalDurationSeconds)
	require.NoError(t, err)

	_, err = svc.Offer(ctx, "W2", "nft-1", 2000, core.MinRentalDurationSeconds)
	assert.ErrorIs(t, err, core.ErrInvalidOffer)
}

func TestRentLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newRentalService(&chainStub{})

	_, err := svc.Offer(ctx, "W1", "nft-1", 5_000_000, core.MinRentalDurationSeconds)
	require.NoError(t, err)

	before := time.Now()
	receipt, err := svc.Rent(ctx, "nft-1", "W2")
	require.NoError(t, err)

	assert.Equal(t, int64(5_000_000), receipt.UnitPrice)
	assert.NotEmpty(t, receipt.AuthCode)
	wantEnd := before.Add(time.Duration(core.MinRentalDurationSeconds) * time.Second)
	assert.WithinDuration(t, wantEnd, receipt.RentalEndTime, time.Second)

	listings, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, listings, "rented item must leave the available list")

	// A second rent observes the listing gone.
	_, err = svc.Rent(ctx, "nft-1", "W3")
	assert.ErrorIs(t, err, core.ErrNotFound)

	owner, err := svc.MyItems(ctx, "W1")
	require.NoError(t, err)
	require.Len(t, owner.Owned, 1)
	assert.Equal(t, "nft-1", owner.Owned[0].ItemID)
	assert.Empty(t, owner.Rented)

	renter, err := svc.MyItems(ctx, "W2")
	require.NoError(t, err)
	assert.Empty(t, renter.Owned)
	require.Len(t, renter.Rented, 1)
	assert.Equal(t, "nft-1", renter.Rented[0].ItemID)
}

func TestRentUnknownItem(t *testing.T) {
	svc := newRentalService(&chainStub{})
	_, err := svc.Rent(context.Background(), "missing", "W2")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRentExecutionFailureLeavesListingAvailable(t *testing.T) {
	ctx := context.Background()
	svc := newRentalService(&chainStub{execFail: true})

	_, err := svc.Offer(ctx, "W1", "nft-1", 1000, core.MinRentalDurationSeconds)
	require.NoError(t, err)

	_, err = svc.Rent(ctx, "nft-1", "W2")
	assert.ErrorIs(t, err, core.ErrRentalExecutionFailed)

	listings, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, core.ListingAvailable, listings[0].State)
}

func TestRentCodeRetrievalFailureKeepsRental(t *testing.T) {
	ctx := context.Background()
	chain := &chainStub{codeErr: errors.New("get_code reverted")}
	svc := newRentalService(chain)

	_, err := svc.Offer(ctx, "W1", "nft-1", 1000, core.MinRentalDurationSeconds)
	require.NoError(t, err)

	_, err = svc.Rent(ctx, "nft-1", "W2")
	assert.ErrorIs(t, err, core.ErrCodeRetrievalFailed)

	// The payment is final: the listing stays Rented.
	listings, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, listings)

	renter, err := svc.MyItems(ctx, "W2")
	require.NoError(t, err)
	require.Len(t, renter.Rented, 1)

	// The renter recovers the code without paying again.
	chain.codeErr = nil
	code, err := svc.ReissueCode(ctx, "nft-1", "W2")
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, 1, chain.executions(), "reissue must not re-run the rental payment")
}

func TestReissueCodeRequiresCurrentRenter(t *testing.T) {
	ctx := context.Background()
	svc := newRentalService(&chainStub{})

	_, err := svc.Offer(ctx, "W1", "nft-1", 1000, core.MinRentalDurationSeconds)
	require.NoError(t, err)

	// Not rented yet.
	_, err = svc.ReissueCode(ctx, "nft-1", "W2")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Rent(ctx, "nft-1", "W2")
	require.NoError(t, err)

	_, err = svc.ReissueCode(ctx, "nft-1", "W3")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.ReissueCode(ctx, "nft-1", "W2")
	assert.NoError(t, err)
}

func TestConcurrentRentSingleWinner(t *testing.T) {
	ctx := context.Background()
	chain := &chainStub{}
	svc := newRentalService(chain)

	_, err := svc.Offer(ctx, "W1", "nft-1", 1000, core.MinRentalDurationSeconds)
	require.NoError(t, err)

	const renters = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	for i := 0; i < renters; i++ {
		wg.Add(1)
		go func(renter string) {
			defer wg.Done()
			_, err := svc.Rent(ctx, "nft-1", renter)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, core.ErrNotFound):
				notFound++
			}
		}(string(rune('A' + i)))
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one rent call may win")
	assert.Equal(t, renters-1, notFound)
	assert.Equal(t, 1, chain.executions(), "losers must never reach the payment")
}

func TestSelfRentalPermitted(t *testing.T) {
	ctx := context.Background()
	svc := newRentalService(&chainStub{})

	_, err := svc.Offer(ctx, "W1", "nft-1", 1000, core.MinRentalDurationSeconds)
	require.NoError(t, err)

	_, err = svc.Rent(ctx, "nft-1", "W1")
	require.NoError(t, err)

	portfolio, err := svc.MyItems(ctx, "W1")
	require.NoError(t, err)
	require.Len(t, portfolio.Owned, 1)
	require.Len(t, portfolio.Rented, 1)
}

func TestListAvailableInsertionOrder(t *testing.T) {
	ctx := context.Background()
	svc := newRentalService(&chainStub{})

	for _, id := range []string{"c", "a", "b"} {
		_, err := svc.Offer(ctx, "W1", id, 1000, core.MinRentalDurationSeconds)
		require.NoError(t, err)
	}

	listings, err := svc.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, "c", listings[0].ItemID)
	assert.Equal(t, "a", listings[1].ItemID)
	assert.Equal(t, "b", listings[2].ItemID)
}
