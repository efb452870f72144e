// Package onchain implements C3: a JSON-RPC-over-HTTP client against a Solana node,
// ported from services/solana_rpc_client.rs.
package onchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adred-codev/soltrace/internal/metrics"
)

// Client fetches full transaction records and account balances. Failures are
// surfaced to callers as plain errors; the decoder treats them as non-fatal
// per-signature errors (skip and continue), per spec §4.3.
type Client interface {
	GetTransaction(ctx context.Context, signature string) (*TransactionResult, error)
	GetTokenAccountBalance(ctx context.Context, pubKey string) (*UiTokenAmount, error)
	GetBalance(ctx context.Context, pubKey string) (uint64, error)
}

// RPCClient is the Client implementation against a Solana JSON-RPC endpoint.
type RPCClient struct {
	url  string
	http *http.Client
}

// NewRPCClient builds an RPCClient targeting the given JSON-RPC URL.
func NewRPCClient(url string, httpClient *http.Client) *RPCClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &RPCClient{url: url, http: httpClient}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

func (c *RPCClient) post(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.OnChainRequestsTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("on-chain request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.OnChainRequestsTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("on-chain request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.OnChainRequestsTotal.WithLabelValues(method, "error").Inc()
		return err
	}
	metrics.OnChainRequestsTotal.WithLabelValues(method, "ok").Inc()
	return nil
}

// GetTransaction calls getTransaction at commitment=confirmed per spec §4.3,
// returning nil with no error when the node reports no result.
func (c *RPCClient) GetTransaction(ctx context.Context, signature string) (*TransactionResult, error) {
	var resp TransactionResponse
	err := c.post(ctx, "getTransaction", []any{
		signature,
		map[string]any{
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
			"encoding":                        "json",
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getTransaction failed: %s", resp.Error.Message)
	}
	return resp.Result, nil
}

// GetTokenAccountBalance calls getTokenAccountBalance at commitment=finalized.
func (c *RPCClient) GetTokenAccountBalance(ctx context.Context, pubKey string) (*UiTokenAmount, error) {
	var resp TokenAccountBalanceResponse
	err := c.post(ctx, "getTokenAccountBalance", []any{
		pubKey,
		map[string]any{"commitment": "finalized"},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("getTokenAccountBalance failed: %s", resp.Error.Message)
	}
	if resp.Result == nil {
		return nil, nil
	}
	return &resp.Result.Value, nil
}

// GetBalance calls getBalance at commitment=finalized, returning native-coin
// balance in lamports.
func (c *RPCClient) GetBalance(ctx context.Context, pubKey string) (uint64, error) {
	var resp BalanceResponse
	err := c.post(ctx, "getBalance", []any{
		pubKey,
		map[string]any{"commitment": "finalized"},
	}, &resp)
	if err != nil {
		return 0, err
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getBalance failed: %s", resp.Error.Message)
	}
	if resp.Result == nil {
		return 0, nil
	}
	return resp.Result.Value, nil
}
