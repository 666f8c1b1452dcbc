package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tonrent/tonrent/ports"
)

// Local is a deterministic ContractCapability for development and tests.
// Production deployments swap in an implementation backed by a real TON
// client; the rest of the system only sees the port.
type Local struct{}

// NewLocal creates the deterministic capability.
func NewLocal() *Local {
	return &Local{}
}

// Deploy derives a stable pseudo-address from the owner and item.
func (Local) Deploy(ctx context.Context, owner, itemID string, price, durationSeconds int64) (string, error) {
	return fmt.Sprintf("EQ_%s_%s", owner, itemID), nil
}

// ExecuteRental always succeeds.
func (Local) ExecuteRental(ctx context.Context, contractAddress, renter string, price int64) (bool, error) {
	return true, nil
}

// Sign produces a stable digest of the payload under the role's key.
func (Local) Sign(ctx context.Context, payload string, role ports.SignerRole) (string, error) {
	sum := sha256.Sum256([]byte(string(role) + ":" + payload))
	return hex.EncodeToString(sum[:]), nil
}

// RetrieveCode derives a short access code from the full signing context.
func (Local) RetrieveCode(ctx context.Context, contractAddress, deepLink, renterSig, platformSig string) (string, error) {
	sum := sha256.Sum256([]byte(contractAddress + deepLink + renterSig + platformSig))
	return "code-" + hex.EncodeToString(sum[:6]), nil
}
