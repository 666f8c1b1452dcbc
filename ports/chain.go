package ports

import "context"

// SignerRole selects which key signs a payload.
type SignerRole string

const (
	RoleRenter   SignerRole = "renter"
	RolePlatform SignerRole = "platform"
)

// ContractCapability is the smart-contract collaborator: deployment, rental
// execution, signing and access-code retrieval. Production backends implement
// it against a real chain client; tests use deterministic fakes.
type ContractCapability interface {
	// Deploy creates the rental contract for an offered item and returns
	// its address. Addresses are externally guaranteed unique.
	Deploy(ctx context.Context, owner, itemID string, price, durationSeconds int64) (string, error)

	// ExecuteRental performs the on-chain rental payment.
	ExecuteRental(ctx context.Context, contractAddress, renter string, price int64) (bool, error)

	// Sign signs the payload with the key for the given role.
	Sign(ctx context.Context, payload string, role SignerRole) (string, error)

	// RetrieveCode asks the contract for the renter's access code.
	RetrieveCode(ctx context.Context, contractAddress, deepLink, renterSig, platformSig string) (string, error)
}
