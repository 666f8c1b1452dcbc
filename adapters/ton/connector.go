package ton

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tonrent/tonrent/ports"
)

// BridgeClient talks to the wallet-connect bridge service: it opens
// connector sessions and polls them until the wallet confirms. AwaitWallet
// is bounded by the caller's context, never by a client-wide timeout.
type BridgeClient struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

// NewBridgeClient creates a client for the bridge at baseURL.
func NewBridgeClient(baseURL string) *BridgeClient {
	return &BridgeClient{
		baseURL:      baseURL,
		httpClient:   &http.Client{},
		pollInterval: 2 * time.Second,
	}
}

// Open starts a bridge session for the user.
func (c *BridgeClient) Open(ctx context.Context, userID int64) (ports.BridgeSession, error) {
	body, _ := json.Marshal(map[string]int64{"user_id": userID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sessions", bytes.NewReader(body))
	if err != nil {
		return ports.BridgeSession{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.BridgeSession{}, fmt.Errorf("opening bridge session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.BridgeSession{}, fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	var out struct {
		SessionID    string `json:"session_id"`
		ProofPayload string `json:"proof_payload"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.BridgeSession{}, fmt.Errorf("decoding bridge response: %w", err)
	}
	return ports.BridgeSession{ConnectorID: out.SessionID, ProofPayload: out.ProofPayload}, nil
}

// AwaitWallet polls the bridge until it yields the confirmed wallet address
// or the context deadline elapses.
func (c *BridgeClient) AwaitWallet(ctx context.Context, connectorID string) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		address, done, err := c.pollWallet(ctx, connectorID)
		if err != nil {
			return "", err
		}
		if done {
			return address, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *BridgeClient) pollWallet(ctx context.Context, connectorID string) (string, bool, error) {
	url := fmt.Sprintf("%s/sessions/%s/wallet", c.baseURL, connectorID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Context expiry surfaces through the transport error.
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, fmt.Errorf("polling bridge session: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out struct {
			Address string `json:"address"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", false, fmt.Errorf("decoding wallet response: %w", err)
		}
		return out.Address, true, nil
	case http.StatusNoContent:
		// Wallet has not confirmed yet.
		return "", false, nil
	default:
		return "", false, fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}
}
