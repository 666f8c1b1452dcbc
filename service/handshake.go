package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/tonrent/tonrent/core"
	"github.com/tonrent/tonrent/ports"
)

const connectBaseURL = "https://app.tonkeeper.com/ton-connect"

// HandshakeService drives the wallet-link handshake: it issues challenges,
// builds the Tonkeeper authorization URL and consumes the bridge callback.
type HandshakeService struct {
	tokenizer ports.Tokenizer
	sessions  ports.SessionStore
	connector ports.Connector
	wallets   ports.WalletStore
	notifier  ports.Notifier
	eventPub  ports.EventPublisher

	manifestURL     string
	callbackBaseURL string
	connectTimeout  time.Duration
}

// NewHandshakeService creates a new handshake coordinator.
func NewHandshakeService(
	tokenizer ports.Tokenizer,
	sessions ports.SessionStore,
	connector ports.Connector,
	wallets ports.WalletStore,
	notifier ports.Notifier,
	eventPub ports.EventPublisher,
	manifestURL, callbackBaseURL string,
) *HandshakeService {
	return &HandshakeService{
		tokenizer:       tokenizer,
		sessions:        sessions,
		connector:       connector,
		wallets:         wallets,
		notifier:        notifier,
		eventPub:        eventPub,
		manifestURL:     manifestURL,
		callbackBaseURL: callbackBaseURL,
		connectTimeout:  90 * time.Second,
	}
}

// BeginHandshake opens a bridge session for the user and returns the
// authorization URL to present in the wallet app. Any prior pending session
// for the user is replaced.
func (s *HandshakeService) BeginHandshake(ctx context.Context, userID int64) (string, error) {
	bridge, err := s.connector.Open(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrUpstreamUnavailable, err)
	}

	challenge, err := s.tokenizer.IssueChallenge(userID)
	if err != nil {
		return "", fmt.Errorf("issuing challenge: %w", err)
	}

	session := core.HandshakeSession{
		UserID:      userID,
		Challenge:   challenge,
		ConnectorID: bridge.ConnectorID,
		CreatedAt:   time.Now(),
		Status:      core.SessionPending,
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}

	return s.connectURL(userID, bridge, challenge), nil
}

// connectURL builds the Tonkeeper deep link embedding the connector id, the
// ton_addr/ton_proof request and the callback the bridge redirects to.
func (s *HandshakeService) connectURL(userID int64, bridge ports.BridgeSession, challenge string) string {
	request := map[string]any{
		"manifestUrl": s.manifestURL,
		"items": []map[string]string{
			{"name": "ton_addr"},
			{"name": "ton_proof", "payload": bridge.ProofPayload},
		},
	}
	encoded, _ := json.Marshal(request)

	returnURL := fmt.Sprintf("%s/auth/callback?user_id=%d&state=%s",
		s.callbackBaseURL, userID, url.QueryEscape(challenge))

	return fmt.Sprintf("%s?v=2&id=%s&r=%s&return=%s",
		connectBaseURL, bridge.ConnectorID,
		url.QueryEscape(string(encoded)), url.QueryEscape(returnURL))
}

// CompleteHandshake consumes the bridge callback. The presented token must
// match the user's pending session exactly; the Pending -> Confirmed
// transition is a compare-and-swap, so of two racing callbacks only one
// proceeds to wait for the wallet. On success the binding is recorded, the
// session is consumed and the user is notified.
func (s *HandshakeService) CompleteHandshake(ctx context.Context, userID int64, presented string) (string, error) {
	if err := s.tokenizer.VerifyChallenge(presented, userID); err != nil {
		return "", core.ErrInvalidSession
	}

	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return "", core.ErrInvalidSession
	}

	ok, err := s.sessions.CompareAndSwap(ctx, userID, presented, core.SessionPending, core.SessionConfirmed)
	if err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}
	if !ok {
		return "", core.ErrInvalidSession
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	address, err := s.connector.AwaitWallet(waitCtx, session.ConnectorID)
	if err != nil {
		// Release the session so a retried BeginHandshake is not blocked
		// by stale state.
		if delErr := s.sessions.Delete(ctx, userID); delErr != nil {
			log.Printf("handshake: releasing session for user %d: %v", userID, delErr)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", core.ErrHandshakeTimeout
		}
		return "", fmt.Errorf("%w: %v", core.ErrUpstreamUnavailable, err)
	}

	if err := s.wallets.SaveWallet(ctx, userID, address); err != nil {
		return "", fmt.Errorf("saving wallet binding: %w", err)
	}

	// Consume the session; replaying the same token now fails the CAS above.
	if _, err := s.sessions.CompareAndSwap(ctx, userID, presented, core.SessionConfirmed, core.SessionExpired); err != nil {
		log.Printf("handshake: expiring session for user %d: %v", userID, err)
	}

	// The binding is committed; notification and event failures must not
	// fail the handshake.
	if s.notifier != nil {
		if err := s.notifier.NotifyWalletLinked(ctx, userID, address); err != nil {
			log.Printf("handshake: notifying user %d: %v", userID, err)
		}
	}
	if s.eventPub != nil {
		if err := s.eventPub.PublishWalletLinked(ctx, userID, address); err != nil {
			log.Printf("handshake: publishing wallet-linked event: %v", err)
		}
	}

	return address, nil
}

// Wallet returns the user's bound wallet address, "" when none.
func (s *HandshakeService) Wallet(ctx context.Context, userID int64) (string, error) {
	return s.wallets.GetWallet(ctx, userID)
}
