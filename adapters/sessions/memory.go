package sessions

import (
	"context"
	"sync"

	"github.com/tonrent/tonrent/core"
)

// Memory is an in-memory session store. Sessions are lost on restart; that
// is the accepted failure mode unless the Redis store is wired instead.
type Memory struct {
	mu       sync.Mutex
	sessions map[int64]core.HandshakeSession
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{sessions: map[int64]core.HandshakeSession{}}
}

// Put stores the session, replacing any existing one for the user.
func (s *Memory) Put(ctx context.Context, session core.HandshakeSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = session
	return nil
}

// Get returns the user's session.
func (s *Memory) Get(ctx context.Context, userID int64) (core.HandshakeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		return core.HandshakeSession{}, core.ErrInvalidSession
	}
	return session, nil
}

// CompareAndSwap transitions the session status if the challenge and the
// current status both match.
func (s *Memory) CompareAndSwap(ctx context.Context, userID int64, challenge string, from, to core.SessionStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok || session.Challenge != challenge || session.Status != from {
		return false, nil
	}
	session.Status = to
	s.sessions[userID] = session
	return true, nil
}

// Delete releases the user's session.
func (s *Memory) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
