package ports

import "context"

// Notifier delivers out-of-band messages to the user's chat channel.
type Notifier interface {
	NotifyWalletLinked(ctx context.Context, userID int64, address string) error
}
