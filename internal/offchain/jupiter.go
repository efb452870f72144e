package offchain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adred-codev/soltrace/internal/domain"
	"github.com/adred-codev/soltrace/internal/metrics"
)

// JupiterClient talks to Jupiter's token search and price endpoints. The corpus
// carries no generic REST-client dependency suited to simple GET+query-string
// calls (see DESIGN.md), so this uses net/http directly, the way
// jupiter_rpc_client.rs wraps a plain reqwest::Client.
type JupiterClient struct {
	tokenURL string
	priceURL string
	http     *http.Client
}

// NewJupiterClient builds a Client against baseURL (Jupiter's lite API in
// production, an httptest server in tests).
func NewJupiterClient(baseURL string, httpClient *http.Client) *JupiterClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &JupiterClient{
		tokenURL: baseURL + "/tokens/v2/search",
		priceURL: baseURL + "/price/v3",
		http:     httpClient,
	}
}

// GetTokens fetches metadata for a batch of mints, chunking transparently.
func (c *JupiterClient) GetTokens(ctx context.Context, mints []string) ([]domain.TokenInfo, error) {
	var all []domain.TokenInfo
	for _, part := range chunk(mints, chunkSize) {
		var tokens []domain.TokenInfo
		if err := c.get(ctx, c.tokenURL, "query", part, &tokens); err != nil {
			return nil, err
		}
		all = append(all, tokens...)
	}
	return all, nil
}

// GetPrices fetches USD prices for a batch of mints, chunking transparently and
// unioning the per-chunk maps.
func (c *JupiterClient) GetPrices(ctx context.Context, mints []string) (map[string]domain.TokenPrice, error) {
	result := make(map[string]domain.TokenPrice)
	for _, part := range chunk(mints, chunkSize) {
		var prices map[string]domain.TokenPrice
		if err := c.get(ctx, c.priceURL, "ids", part, &prices); err != nil {
			return nil, err
		}
		for k, v := range prices {
			result[k] = v
		}
	}
	return result, nil
}

func (c *JupiterClient) get(ctx context.Context, endpoint, param string, ids []string, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set(param, strings.Join(ids, ","))
	u.RawQuery = q.Encode()

	label := param // "query" for token search, "ids" for price lookup
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.OffChainRequestsTotal.WithLabelValues(label, "error").Inc()
		return fmt.Errorf("off-chain request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.OffChainRequestsTotal.WithLabelValues(label, "error").Inc()
		return fmt.Errorf("off-chain request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.OffChainRequestsTotal.WithLabelValues(label, "error").Inc()
		return err
	}
	metrics.OffChainRequestsTotal.WithLabelValues(label, "ok").Inc()
	return nil
}
