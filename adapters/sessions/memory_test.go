package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonrent/tonrent/core"
)

func pending(userID int64, challenge string) core.HandshakeSession {
	return core.HandshakeSession{
		UserID:      userID,
		Challenge:   challenge,
		ConnectorID: "conn-1",
		CreatedAt:   time.Now(),
		Status:      core.SessionPending,
	}
}

func TestMemoryPutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, err := s.Get(ctx, 7)
	assert.ErrorIs(t, err, core.ErrInvalidSession)

	require.NoError(t, s.Put(ctx, pending(7, "ch-1")))

	got, err := s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "ch-1", got.Challenge)
	assert.Equal(t, core.SessionPending, got.Status)

	// Put replaces wholesale.
	require.NoError(t, s.Put(ctx, pending(7, "ch-2")))
	got, err = s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "ch-2", got.Challenge)

	require.NoError(t, s.Delete(ctx, 7))
	_, err = s.Get(ctx, 7)
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}

func TestMemoryCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Put(ctx, pending(7, "ch-1")))

	// Wrong challenge.
	ok, err := s.CompareAndSwap(ctx, 7, "other", core.SessionPending, core.SessionConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)

	// Wrong user.
	ok, err = s.CompareAndSwap(ctx, 8, "ch-1", core.SessionPending, core.SessionConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CompareAndSwap(ctx, 7, "ch-1", core.SessionPending, core.SessionConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)

	// The transition consumed the Pending state.
	ok, err = s.CompareAndSwap(ctx, 7, "ch-1", core.SessionPending, core.SessionConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CompareAndSwap(ctx, 7, "ch-1", core.SessionConfirmed, core.SessionExpired)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, core.SessionExpired, got.Status)
}
