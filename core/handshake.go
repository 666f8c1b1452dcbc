package core

import "time"

// SessionStatus is the lifecycle state of a handshake session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionConfirmed SessionStatus = "confirmed"
	SessionExpired   SessionStatus = "expired"
)

// HandshakeSession tracks one in-flight wallet link attempt. At most one
// non-expired session exists per user; starting a new handshake replaces it.
type HandshakeSession struct {
	UserID      int64  // chat id of the requesting user
	Challenge   string // single-use token echoed back by the bridge callback
	ConnectorID string // bridge-side session handle
	CreatedAt   time.Time
	Status      SessionStatus
}

// WalletBinding associates a user with their connected wallet address.
// Last write wins; a re-bind simply overwrites the address.
type WalletBinding struct {
	UserID        int64
	WalletAddress string
}
