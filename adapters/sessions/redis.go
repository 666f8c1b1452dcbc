package sessions

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tonrent/tonrent/core"
)

// Redis is a session store backed by Redis, for deployments that want
// handshakes to survive a backend restart. One hash per user, with a TTL
// slightly above the challenge lifetime.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// casScript transitions the status field only when both the stored
// challenge and the current status match, atomically on the Redis side.
var casScript = redis.NewScript(`
local challenge = redis.call('HGET', KEYS[1], 'challenge')
local status = redis.call('HGET', KEYS[1], 'status')
if challenge == ARGV[1] and status == ARGV[2] then
	redis.call('HSET', KEYS[1], 'status', ARGV[3])
	return 1
end
return 0
`)

// NewRedis creates a Redis-backed session store.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		prefix: "rentd:handshake:",
		ttl:    ttl,
	}
}

func (s *Redis) key(userID int64) string {
	return fmt.Sprintf("%s%d", s.prefix, userID)
}

// Put stores the session, replacing any existing one for the user.
func (s *Redis) Put(ctx context.Context, session core.HandshakeSession) error {
	key := s.key(session.UserID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"challenge", session.Challenge,
			"connector_id", session.ConnectorID,
			"created_at", session.CreatedAt.Unix(),
			"status", string(session.Status),
		)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// Get returns the user's session.
func (s *Redis) Get(ctx context.Context, userID int64) (core.HandshakeSession, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return core.HandshakeSession{}, fmt.Errorf("loading session: %w", err)
	}
	if len(fields) == 0 {
		return core.HandshakeSession{}, core.ErrInvalidSession
	}

	createdAt, _ := strconv.ParseInt(fields["created_at"], 10, 64)
	return core.HandshakeSession{
		UserID:      userID,
		Challenge:   fields["challenge"],
		ConnectorID: fields["connector_id"],
		CreatedAt:   time.Unix(createdAt, 0),
		Status:      core.SessionStatus(fields["status"]),
	}, nil
}

// CompareAndSwap transitions the session status via a server-side script.
func (s *Redis) CompareAndSwap(ctx context.Context, userID int64, challenge string, from, to core.SessionStatus) (bool, error) {
	n, err := casScript.Run(ctx, s.client, []string{s.key(userID)},
		challenge, string(from), string(to)).Int()
	if err != nil {
		return false, fmt.Errorf("session cas: %w", err)
	}
	return n == 1, nil
}

// Delete releases the user's session.
func (s *Redis) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
