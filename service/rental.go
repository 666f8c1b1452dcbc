package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tonrent/tonrent/core"
	"github.com/tonrent/tonrent/ports"
)

// RentalService owns the listing lifecycle: Offered -> Available -> Rented.
// Rent calls for the same item are serialized by a per-item lock, with the
// store's conditional update as the second guard.
type RentalService struct {
	listings  ports.ListingStore
	chain     ports.ContractCapability
	inventory ports.WalletInventory
	eventPub  ports.EventPublisher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// RentalReceipt is the outcome of a successful rental.
type RentalReceipt struct {
	UnitPrice     int64
	RentalEndTime time.Time
	AuthCode      string
}

// Portfolio splits a wallet's listings into owner and renter roles.
type Portfolio struct {
	Owned  []core.Listing
	Rented []core.Listing
}

// NewRentalService creates a new rental state machine.
func NewRentalService(
	listings ports.ListingStore,
	chain ports.ContractCapability,
	inventory ports.WalletInventory,
	eventPub ports.EventPublisher,
) *RentalService {
	return &RentalService{
		listings:  listings,
		chain:     chain,
		inventory: inventory,
		eventPub:  eventPub,
		locks:     map[string]*sync.Mutex{},
	}
}

func (s *RentalService) itemLock(itemID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[itemID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[itemID] = lock
	}
	return lock
}

// Offer validates the terms, deploys the rental contract and creates the
// listing in state Available. Nothing is persisted when deployment fails.
func (s *RentalService) Offer(ctx context.Context, owner, itemID string, price, durationSeconds int64) (string, error) {
	if price <= 0 {
		return "", fmt.Errorf("%w: price must be positive", core.ErrInvalidOffer)
	}
	if durationSeconds < core.MinRentalDurationSeconds {
		return "", fmt.Errorf("%w: duration below one week", core.ErrInvalidOffer)
	}
	if _, err := s.listings.GetListing(ctx, itemID); err == nil {
		return "", fmt.Errorf("%w: item %q already listed", core.ErrInvalidOffer, itemID)
	}

	contract, err := s.chain.Deploy(ctx, owner, itemID, price, durationSeconds)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrDeploymentFailed, err)
	}

	listing := core.Listing{
		ItemID:          itemID,
		OwnerAddress:    owner,
		UnitPrice:       price,
		DurationSeconds: durationSeconds,
		ContractAddress: contract,
		State:           core.ListingAvailable,
		CreatedAt:       time.Now(),
	}
	if err := s.listings.CreateListing(ctx, listing); err != nil {
		return "", err
	}
	return contract, nil
}

// Rent executes the rental against the item's contract, transitions the
// listing to Rented and retrieves the renter's access code. The lookup and
// the transition run under the item's lock, so of two concurrent calls only
// one sees the listing Available. A code-retrieval failure does NOT roll the
// rental back: the payment is already final, and the renter re-requests the
// code via ReissueCode.
func (s *RentalService) Rent(ctx context.Context, itemID, renter string) (RentalReceipt, error) {
	lock := s.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	listing, err := s.listings.GetListing(ctx, itemID)
	if err != nil {
		return RentalReceipt{}, core.ErrNotFound
	}
	if listing.State != core.ListingAvailable {
		return RentalReceipt{}, core.ErrNotFound
	}

	ok, err := s.chain.ExecuteRental(ctx, listing.ContractAddress, renter, listing.UnitPrice)
	if err != nil {
		return RentalReceipt{}, fmt.Errorf("%w: %v", core.ErrRentalExecutionFailed, err)
	}
	if !ok {
		return RentalReceipt{}, core.ErrRentalExecutionFailed
	}

	endTime := time.Now().Add(time.Duration(listing.DurationSeconds) * time.Second)
	if _, err := s.listings.MarkRented(ctx, itemID, renter, endTime); err != nil {
		return RentalReceipt{}, err
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishRented(ctx, itemID, renter, endTime); err != nil {
			log.Printf("rental: publishing rented event for %q: %v", itemID, err)
		}
	}

	code, err := s.retrieveCode(ctx, listing.ContractAddress, renter)
	if err != nil {
		return RentalReceipt{}, fmt.Errorf("%w: %v", core.ErrCodeRetrievalFailed, err)
	}

	return RentalReceipt{
		UnitPrice:     listing.UnitPrice,
		RentalEndTime: endTime,
		AuthCode:      code,
	}, nil
}

// ReissueCode re-runs the signing and code-retrieval sequence for a listing
// the wallet currently rents. Idempotent: it touches no rental state, so a
// renter left without a code after ErrCodeRetrievalFailed can retry freely.
func (s *RentalService) ReissueCode(ctx context.Context, itemID, renter string) (string, error) {
	listing, err := s.listings.GetListing(ctx, itemID)
	if err != nil {
		return "", core.ErrNotFound
	}
	if listing.State != core.ListingRented || listing.RenterAddress != renter {
		return "", core.ErrNotFound
	}

	code, err := s.retrieveCode(ctx, listing.ContractAddress, renter)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrCodeRetrievalFailed, err)
	}
	return code, nil
}

// retrieveCode performs the three-step sequence: deep link, renter signature,
// platform co-signature, then the contract's access code.
func (s *RentalService) retrieveCode(ctx context.Context, contract, renter string) (string, error) {
	deepLink := fmt.Sprintf("tc://?v=2&id=%s", renter)

	renterSig, err := s.chain.Sign(ctx, deepLink, ports.RoleRenter)
	if err != nil {
		return "", fmt.Errorf("renter signature: %w", err)
	}
	platformSig, err := s.chain.Sign(ctx, renterSig, ports.RolePlatform)
	if err != nil {
		return "", fmt.Errorf("platform signature: %w", err)
	}
	return s.chain.RetrieveCode(ctx, contract, deepLink, renterSig, platformSig)
}

// ListAvailable returns listings open for rent, in insertion order.
func (s *RentalService) ListAvailable(ctx context.Context) ([]core.Listing, error) {
	return s.listings.AvailableListings(ctx)
}

// MyItems returns the wallet's listings split by role. A wallet renting its
// own item appears in both.
func (s *RentalService) MyItems(ctx context.Context, wallet string) (Portfolio, error) {
	owned, err := s.listings.ListingsByOwner(ctx, wallet)
	if err != nil {
		return Portfolio{}, err
	}
	rented, err := s.listings.ListingsByRenter(ctx, wallet)
	if err != nil {
		return Portfolio{}, err
	}
	return Portfolio{Owned: owned, Rented: rented}, nil
}

// ExternalItems returns the wallet's on-chain NFTs within the configured
// collection.
func (s *RentalService) ExternalItems(ctx context.Context, wallet string) ([]core.ExternalItem, error) {
	return s.inventory.OwnedItems(ctx, wallet)
}
