package ton

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tonrent/tonrent/core"
)

// TonAPI queries tonapi.io for the NFTs a wallet owns within a single
// collection (the anonymous-numbers collection in production).
type TonAPI struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

// NewTonAPI creates an inventory client scoped to the given collection.
func NewTonAPI(baseURL, apiKey, collection string) *TonAPI {
	return &TonAPI{
		baseURL:    baseURL,
		apiKey:     apiKey,
		collection: collection,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// OwnedItems returns the wallet's NFTs belonging to the configured collection.
func (c *TonAPI) OwnedItems(ctx context.Context, wallet string) ([]core.ExternalItem, error) {
	endpoint := fmt.Sprintf("%s/v2/accounts/%s/nfts?collection=%s",
		c.baseURL, url.PathEscape(wallet), url.QueryEscape(c.collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying tonapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tonapi returned status %d", resp.StatusCode)
	}

	var out struct {
		NFTItems []struct {
			Address    string `json:"address"`
			Collection struct {
				Address string `json:"address"`
			} `json:"collection"`
		} `json:"nft_items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding tonapi response: %w", err)
	}

	var items []core.ExternalItem
	for _, nft := range out.NFTItems {
		if nft.Collection.Address != c.collection {
			continue
		}
		items = append(items, core.ExternalItem{ItemID: nft.Address})
	}
	return items, nil
}
