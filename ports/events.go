package ports

import (
	"context"
	"time"
)

// EventPublisher announces state changes to other instances and downstream
// consumers.
type EventPublisher interface {
	PublishWalletLinked(ctx context.Context, userID int64, address string) error
	PublishRented(ctx context.Context, itemID, renter string, rentalEndTime time.Time) error
}
