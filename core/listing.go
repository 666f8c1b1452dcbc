package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingState is the lifecycle state of a rental listing.
type ListingState string

const (
	ListingAvailable ListingState = "available"
	ListingRented    ListingState = "rented"
)

// MinRentalDurationSeconds is the shortest rental period an owner may offer
// (one week).
const MinRentalDurationSeconds int64 = 604800

// Listing is a rentable item tracked by the backend, linked to the smart
// contract deployed for it at offer time.
type Listing struct {
	ItemID          string
	OwnerAddress    string
	UnitPrice       int64 // nanoTON
	DurationSeconds int64
	ContractAddress string
	RenterAddress   string
	RentalEndTime   *time.Time
	State           ListingState
	CreatedAt       time.Time
}

var nanotonPerTon = decimal.NewFromInt(1_000_000_000)

// PriceTON renders the nanoTON unit price as a decimal TON string for
// display in the chat front-end.
func (l Listing) PriceTON() string {
	return decimal.NewFromInt(l.UnitPrice).Div(nanotonPerTon).String()
}

// ExternalItem is an NFT the wallet owns on-chain, as reported by the
// inventory capability.
type ExternalItem struct {
	ItemID string
}
