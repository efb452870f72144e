// Package offchain implements C2: batch token-metadata and price lookups against a
// Jupiter-style off-chain metadata service. Ported from services/jupiter_rpc_client.rs.
package offchain

import (
	"context"

	"github.com/adred-codev/soltrace/internal/domain"
)

// chunkSize is the off-chain service's per-request id limit; callers may pass more
// mints than this and Client transparently splits the request, preserving the union
// of results (spec §4.2).
const chunkSize = 100

// Client fetches token metadata and price batches from an external HTTP service.
// Implementations are best-effort: missing mints simply produce no entry, not an
// error.
type Client interface {
	GetTokens(ctx context.Context, mints []string) ([]domain.TokenInfo, error)
	GetPrices(ctx context.Context, mints []string) (map[string]domain.TokenPrice, error)
}

func chunk(mints []string, size int) [][]string {
	if len(mints) == 0 {
		return nil
	}
	var chunks [][]string
	for len(mints) > 0 {
		n := size
		if n > len(mints) {
			n = len(mints)
		}
		chunks = append(chunks, mints[:n])
		mints = mints[n:]
	}
	return chunks
}
