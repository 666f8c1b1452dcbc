package ports

import (
	"context"
	"time"

	"github.com/tonrent/tonrent/core"
)

// ListingStore persists rental listings. All mutation goes through its
// atomic primitives; callers never read-then-write without them.
type ListingStore interface {
	// CreateListing inserts a listing if its item id is not taken.
	// A duplicate item id fails with core.ErrInvalidOffer.
	CreateListing(ctx context.Context, listing core.Listing) error

	// GetListing returns the listing for item id, core.ErrNotFound otherwise.
	GetListing(ctx context.Context, itemID string) (core.Listing, error)

	// AvailableListings returns listings in state Available, insertion order.
	AvailableListings(ctx context.Context) ([]core.Listing, error)

	// MarkRented transitions Available -> Rented in a single conditional
	// update. Fails with core.ErrNotFound unless the listing exists and is
	// Available; at most one caller ever wins for a given listing.
	MarkRented(ctx context.Context, itemID, renter string, endTime time.Time) (core.Listing, error)

	// ListingsByOwner returns all listings owned by the wallet.
	ListingsByOwner(ctx context.Context, owner string) ([]core.Listing, error)

	// ListingsByRenter returns listings currently rented by the wallet.
	ListingsByRenter(ctx context.Context, renter string) ([]core.Listing, error)
}

// WalletStore persists user-to-wallet bindings.
type WalletStore interface {
	// SaveWallet upserts the binding, last write wins.
	SaveWallet(ctx context.Context, userID int64, address string) error

	// GetWallet returns the bound address, or "" when the user has none.
	GetWallet(ctx context.Context, userID int64) (string, error)
}
