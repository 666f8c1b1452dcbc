package ports

import (
	"context"

	"github.com/tonrent/tonrent/core"
)

// SessionStore holds in-flight handshake sessions, one per user. Status
// transitions go through CompareAndSwap so racing callbacks cannot both
// consume a session.
type SessionStore interface {
	// Put stores the session, replacing any existing one for the user.
	Put(ctx context.Context, session core.HandshakeSession) error

	// Get returns the user's session, core.ErrInvalidSession when absent.
	Get(ctx context.Context, userID int64) (core.HandshakeSession, error)

	// CompareAndSwap transitions the session's status from -> to, but only
	// if the stored challenge matches. Returns false when the challenge
	// mismatches, the session is absent, or the status already moved on.
	CompareAndSwap(ctx context.Context, userID int64, challenge string, from, to core.SessionStatus) (bool, error)

	// Delete releases the user's session.
	Delete(ctx context.Context, userID int64) error
}
