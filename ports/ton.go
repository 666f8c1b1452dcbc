package ports

import (
	"context"

	"github.com/tonrent/tonrent/core"
)

// BridgeSession is the bridge-side handle for one wallet-connect attempt.
type BridgeSession struct {
	ConnectorID  string
	ProofPayload string
}

// Connector is the wallet-connect bridge collaborator. The core depends
// only on the session handle it hands out and on the wallet address it
// eventually yields, not on the protocol internals.
type Connector interface {
	// Open starts a bridge session for the user.
	Open(ctx context.Context, userID int64) (BridgeSession, error)

	// AwaitWallet blocks until the bridge yields the confirmed wallet
	// address or the context deadline elapses.
	AwaitWallet(ctx context.Context, connectorID string) (string, error)
}

// WalletInventory reports NFTs a wallet owns on-chain within the configured
// collection.
type WalletInventory interface {
	OwnedItems(ctx context.Context, wallet string) ([]core.ExternalItem, error)
}
