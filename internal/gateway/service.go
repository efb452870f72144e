// Package gateway implements C7: the StreamingService front door that orchestrates
// C1-C6. Ported from wallet_service.rs (RPC handler bodies) and utils/holdings.rs
// (query_holdings), with the RPC transport itself left to internal/rpc.
package gateway

import (
	"context"
	"fmt"

	"github.com/adred-codev/soltrace/internal/addressutil"
	"github.com/adred-codev/soltrace/internal/decoder"
	"github.com/adred-codev/soltrace/internal/domain"
	"github.com/adred-codev/soltrace/internal/metrics"
	"github.com/adred-codev/soltrace/internal/offchain"
	"github.com/adred-codev/soltrace/internal/onchain"
	"github.com/adred-codev/soltrace/internal/session"
	"github.com/adred-codev/soltrace/internal/tokenstore"
	"github.com/adred-codev/soltrace/internal/wsclient"
	"github.com/google/uuid"
)

// UpstreamWS is the subset of wsclient.Client's contract the Service needs; each
// session gets its own instance from WSFactory, per spec §9's "factory per
// session" design note.
type UpstreamWS interface {
	Subscribe(ctx context.Context, wallet string, decode wsclient.DecodeFunc, out chan<- string) (uint64, error)
	Unsubscribe(subID uint64) error
}

// WSFactory builds a fresh upstream WebSocket client for one session.
type WSFactory func() UpstreamWS

// Service is the StreamingService (C7): the sole entry point the RPC transport
// layer calls into.
type Service struct {
	sessions  *session.Registry
	tokens    *tokenstore.Store
	onChain   onchain.Client
	offChain  offchain.Client
	decoder   *decoder.Decoder
	wsFactory WSFactory
}

// New wires a Service over its six collaborators.
func New(sessions *session.Registry, tokens *tokenstore.Store, onChain onchain.Client, offChain offchain.Client, dec *decoder.Decoder, wsFactory WSFactory) *Service {
	return &Service{
		sessions:  sessions,
		tokens:    tokens,
		onChain:   onChain,
		offChain:  offChain,
		decoder:   dec,
		wsFactory: wsFactory,
	}
}

// Init validates a wallet + watchlist, primes the token cache, derives the
// per-mint associated-token-account map, and registers a brand-new session.
func (s *Service) Init(ctx context.Context, wallet string, tokens []string) (uuid.UUID, error) {
	if err := addressutil.Validate(wallet); err != nil {
		return uuid.Nil, ErrInvalidWallet
	}
	if len(tokens) == 0 {
		return uuid.Nil, ErrMissingTokens
	}

	var invalid []string
	for _, t := range tokens {
		if err := addressutil.Validate(t); err != nil {
			invalid = append(invalid, t)
		}
	}
	if len(invalid) > 0 {
		return uuid.Nil, &InvalidTokenError{Addrs: invalid}
	}

	watchlist := append([]string{}, tokens...)
	hasWrapped := false
	for _, t := range watchlist {
		if t == domain.WrappedNativeMint {
			hasWrapped = true
			break
		}
	}
	if !hasWrapped {
		watchlist = append(watchlist, domain.WrappedNativeMint)
	}

	fetched, err := s.offChain.GetTokens(ctx, watchlist)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}
	for _, info := range fetched {
		_ = s.tokens.Add(info) // AlreadyExists is benign
	}

	accounts := make(map[string]string, len(watchlist))
	for _, mint := range watchlist {
		ata, err := addressutil.DeriveTokenAccount(wallet, mint)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		accounts[mint] = ata
	}

	input := domain.NewSubscriptionInput(wallet, watchlist)
	id := s.sessions.Insert(&session.State{
		Wallet:        wallet,
		Input:         input,
		TokenAccounts: accounts,
	})
	metrics.SessionsTotal.Inc()
	return id, nil
}

// Subscribe dials a fresh upstream WebSocket for the session's wallet and attaches
// it, returning the bounded downstream channel the RPC layer streams from.
func (s *Service) Subscribe(ctx context.Context, clientID uuid.UUID) (session.Downstream, error) {
	st, err := s.sessions.Get(clientID)
	if err != nil {
		metrics.SubscribeErrorsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if st.Streaming {
		metrics.SubscribeErrorsTotal.WithLabelValues("already_subscribed").Inc()
		return nil, session.ErrAlreadySubscribed
	}

	ws := s.wsFactory()
	downstream := make(session.Downstream, 10)
	decode := func(ctx context.Context, signature string) (*domain.Trade, error) {
		return s.decoder.Decode(ctx, signature, st.Input)
	}

	subID, err := ws.Subscribe(ctx, st.Wallet, decode, downstream)
	if err != nil {
		metrics.SubscribeErrorsTotal.WithLabelValues("upstream_unavailable").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	cancel := func() { _ = ws.Unsubscribe(subID) }

	if err := s.sessions.Subscribe(clientID, subID, downstream, cancel); err != nil {
		cancel() // lost the race against a concurrent Subscribe; release what we opened
		metrics.SubscribeErrorsTotal.WithLabelValues("already_subscribed").Inc()
		return nil, err
	}
	metrics.SubscriptionsActive.Inc()
	return downstream, nil
}

// Unsubscribe detaches and closes the session's live upstream subscription, if any.
func (s *Service) Unsubscribe(clientID uuid.UUID) error {
	st, err := s.sessions.Get(clientID)
	if err != nil {
		return err
	}
	wasStreaming := st.Streaming
	if err := s.sessions.Unsubscribe(clientID); err != nil {
		return err
	}
	if wasStreaming {
		metrics.SubscriptionsActive.Dec()
	}
	return nil
}

// Holdings returns a point-in-time snapshot of every watched mint with a non-zero
// balance and known metadata, per spec §4.7. Any transport failure against the
// on-chain or off-chain RPCs aborts the whole call (ErrInternal), matching the
// original's use of `?` rather than best-effort degrading.
func (s *Service) Holdings(ctx context.Context, clientID uuid.UUID) ([]domain.Holding, error) {
	st, err := s.sessions.Get(clientID)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]float64)
	for mint, account := range st.TokenAccounts {
		amt, err := s.onChain.GetTokenAccountBalance(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if amt == nil {
			continue
		}
		if v := amt.ToFloat64(); v > 0 {
			balances[mint] = v
		}
	}

	lamports, err := s.onChain.GetBalance(ctx, st.Wallet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if sol := float64(lamports) / domain.LamportsPerNative; sol > 0 {
		balances[domain.WrappedNativeMint] += sol
	}

	mints := make([]string, 0, len(balances))
	for mint := range balances {
		mints = append(mints, mint)
	}
	prices, err := s.offChain.GetPrices(ctx, mints)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	var holdings []domain.Holding
	for mint, balance := range balances {
		info, err := s.tokens.Get(mint)
		if err != nil {
			continue // metadata-first principle: unknown mints are silently skipped
		}

		h := domain.Holding{
			Name:    info.Name,
			Symbol:  info.Symbol,
			Address: mint,
			Balance: balance,
		}
		if price, ok := prices[mint]; ok {
			p := price.USDPrice
			v := balance * p
			h.USDPrice = &p
			h.USDValue = &v
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// GetTrade synchronously decodes a single signature against the session's wallet.
func (s *Service) GetTrade(ctx context.Context, clientID uuid.UUID, signature string) (*domain.Trade, error) {
	st, err := s.sessions.Get(clientID)
	if err != nil {
		return nil, err
	}

	trade, err := s.decoder.Decode(ctx, signature, st.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return trade, nil
}
