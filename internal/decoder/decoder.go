// Package decoder implements C5: turning a transaction signature into a classified
// Trade for a watched wallet. Ported from utils/transactions.rs (handle_transaction,
// calc_sol_change, calc_fee, calc_token_changes_for_wallet, build_trades).
package decoder

import (
	"context"

	"github.com/adred-codev/soltrace/internal/domain"
	"github.com/adred-codev/soltrace/internal/metrics"
	"github.com/adred-codev/soltrace/internal/offchain"
	"github.com/adred-codev/soltrace/internal/onchain"
	"github.com/adred-codev/soltrace/internal/tokenstore"
)

// Decoder resolves a signature to a Trade for a given wallet, enriching with
// prices and metadata on a best-effort basis.
type Decoder struct {
	onChain  onchain.Client
	offChain offchain.Client
	tokens   *tokenstore.Store
}

// New builds a Decoder over the three upstream collaborators it fans out to.
func New(onChain onchain.Client, offChain offchain.Client, tokens *tokenstore.Store) *Decoder {
	return &Decoder{onChain: onChain, offChain: offChain, tokens: tokens}
}

// Decode runs the full pipeline for one signature against one subscription's
// wallet. It returns (nil, nil) whenever the transaction does not produce a Trade
// for this wallet (wrong fee payer, missing meta, or an all-zero delta) — these are
// not error conditions, per spec §4.5 steps 1-3 and 7.
func (d *Decoder) Decode(ctx context.Context, signature string, sub *domain.SubscriptionInput) (*domain.Trade, error) {
	tx, err := d.onChain.GetTransaction(ctx, signature)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, nil
	}

	if !isFeePayer(sub.Wallet, tx.Transaction) {
		return nil, nil
	}

	if tx.Meta == nil {
		return nil, nil
	}

	deltas := computeDeltas(tx.Meta, sub.Wallet)
	if len(deltas) == 0 {
		return nil, nil
	}

	mints := make([]string, 0, len(deltas))
	for mint := range deltas {
		mints = append(mints, mint)
	}

	prices, priceErr := d.offChain.GetPrices(ctx, mints)
	if priceErr != nil {
		prices = nil // transient upstream failure: proceed without USD enrichment
	}

	d.enrichTokenStore(ctx, mints)

	trade := classify(deltas, prices, d.tokens)
	if trade != nil {
		metrics.TradesDecodedTotal.Inc()
	}
	return trade, nil
}

func isFeePayer(wallet string, tx onchain.EncodedTransaction) bool {
	if len(tx.Message.AccountKeys) == 0 {
		return false
	}
	return tx.Message.AccountKeys[0] == wallet
}

// computeDeltas builds the per-mint signed net balance change for the wallet,
// including the native-coin wrapper minus the transaction fee, dropping zero
// entries, per spec §4.5 steps 4-7.
func computeDeltas(meta *onchain.TransactionMeta, wallet string) map[string]float64 {
	deltas := make(map[string]float64)

	var preSol, postSol uint64
	if len(meta.PreBalances) > 0 {
		preSol = meta.PreBalances[0]
	}
	if len(meta.PostBalances) > 0 {
		postSol = meta.PostBalances[0]
	}
	solChange := (float64(postSol) - float64(preSol)) / domain.LamportsPerNative
	fee := float64(meta.Fee) / domain.LamportsPerNative
	deltas[domain.WrappedNativeMint] = solChange - fee

	for _, tb := range meta.PreTokenBalances {
		if tb.Owner != nil && *tb.Owner == wallet {
			deltas[tb.Mint] -= tb.UiTokenAmount.ToFloat64()
		}
	}
	for _, tb := range meta.PostTokenBalances {
		if tb.Owner != nil && *tb.Owner == wallet {
			deltas[tb.Mint] += tb.UiTokenAmount.ToFloat64()
		}
	}

	for mint, v := range deltas {
		if v == 0 {
			delete(deltas, mint)
		}
	}
	return deltas
}

// enrichTokenStore primes the shared TokenStore with metadata for any mint not yet
// cached. Failures are swallowed: metadata is best-effort, per spec §4.5 step 8b.
func (d *Decoder) enrichTokenStore(ctx context.Context, mints []string) {
	var missing []string
	for _, m := range mints {
		if !d.tokens.Has(m) {
			missing = append(missing, m)
		}
	}
	if len(missing) == 0 {
		return
	}

	tokens, err := d.offChain.GetTokens(ctx, missing)
	if err != nil {
		return
	}
	for _, t := range tokens {
		_ = d.tokens.Add(t) // AlreadyExists is benign; a racing enrich is fine
	}
}

// classify partitions deltas into sells/buys and returns a Trade, or nil if either
// side ends up empty, per spec §4.5 step 9.
func classify(deltas map[string]float64, prices map[string]domain.TokenPrice, tokens *tokenstore.Store) *domain.Trade {
	var sells, buys []domain.Transfer

	for mint, amount := range deltas {
		transfer := domain.NewTransfer(mint, abs(amount))

		if prices != nil {
			if price, ok := prices[mint]; ok {
				p := price.USDPrice
				transfer.USDPrice = &p
			}
		}
		if info, err := tokens.Get(mint); err == nil {
			transfer.Symbol = &info.Symbol
			transfer.Name = &info.Name
		}

		if amount < 0 {
			sells = append(sells, transfer)
		} else if amount > 0 {
			buys = append(buys, transfer)
		}
	}

	if len(sells) == 0 || len(buys) == 0 {
		return nil
	}

	return &domain.Trade{From: sells, To: buys}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
