package rpc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/adred-codev/soltrace/internal/decoder"
	"github.com/adred-codev/soltrace/internal/domain"
	"github.com/adred-codev/soltrace/internal/gateway"
	"github.com/adred-codev/soltrace/internal/offchain"
	"github.com/adred-codev/soltrace/internal/onchain"
	"github.com/adred-codev/soltrace/internal/session"
	"github.com/adred-codev/soltrace/internal/tokenstore"
	"github.com/adred-codev/soltrace/internal/wsclient"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	wallet   = "9AhKqLR67hwapvG8SA2JFXaCshXc9nALJjpKaHZrsbkw"
	bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

type fakeOnChain struct{}

func (fakeOnChain) GetTransaction(ctx context.Context, signature string) (*onchain.TransactionResult, error) {
	return nil, nil
}
func (fakeOnChain) GetTokenAccountBalance(ctx context.Context, pubKey string) (*onchain.UiTokenAmount, error) {
	return nil, nil
}
func (fakeOnChain) GetBalance(ctx context.Context, pubKey string) (uint64, error) { return 0, nil }

type fakeOffChain struct{}

func (fakeOffChain) GetTokens(ctx context.Context, mints []string) ([]domain.TokenInfo, error) {
	out := make([]domain.TokenInfo, len(mints))
	for i, m := range mints {
		out[i] = domain.TokenInfo{ID: m, Name: "t", Symbol: "T"}
	}
	return out, nil
}
func (fakeOffChain) GetPrices(ctx context.Context, mints []string) (map[string]domain.TokenPrice, error) {
	return nil, nil
}

func newTestServer() *Server {
	tokens := tokenstore.New()
	on := fakeOnChain{}
	off := fakeOffChain{}
	dec := decoder.New(on, off, tokens)
	svc := gateway.New(session.New(), tokens, on, off, dec, func() gateway.UpstreamWS {
		return fakeWS{}
	})
	return NewServer(svc, zerolog.Nop())
}

type fakeWS struct{}

func (fakeWS) Subscribe(ctx context.Context, wallet string, decode wsclient.DecodeFunc, out chan<- string) (uint64, error) {
	return 1, nil
}
func (fakeWS) Unsubscribe(subID uint64) error { return nil }

func ctxWithClientID(id string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs(clientIDKey, id))
}

func mustParseClientID(t *testing.T, id string) uuid.UUID {
	t.Helper()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	return parsed
}

func TestInitThenUnauthenticatedWithoutHeader(t *testing.T) {
	s := newTestServer()
	resp, err := s.Init(context.Background(), &InitRequest{Wallet: wallet, Tokens: []string{bonkMint}})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ClientID)

	_, err = s.Unsubscribe(context.Background(), &UnsubscribeRequest{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInitRejectsInvalidWallet(t *testing.T) {
	s := newTestServer()
	_, err := s.Init(context.Background(), &InitRequest{Wallet: "not-a-wallet", Tokens: []string{bonkMint}})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestUnsubscribeUnknownClientIsNotFound(t *testing.T) {
	s := newTestServer()
	_, err := s.Unsubscribe(ctxWithClientID("00000000-0000-0000-0000-000000000000"), &UnsubscribeRequest{})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestMalformedClientIDIsInvalidArgument(t *testing.T) {
	s := newTestServer()
	_, err := s.Unsubscribe(ctxWithClientID("not-a-uuid"), &UnsubscribeRequest{})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// capturingWS retains the downstream channel a Subscribe call is given, so a
// test can drive it directly the way wsclient would once an upstream
// notification decodes to a message.
type capturingWS struct {
	mu sync.Mutex
	ch chan<- string
}

func (w *capturingWS) Subscribe(ctx context.Context, wallet string, decode wsclient.DecodeFunc, out chan<- string) (uint64, error) {
	w.mu.Lock()
	w.ch = out
	w.mu.Unlock()
	return 1, nil
}
func (w *capturingWS) Unsubscribe(subID uint64) error { return nil }

func (w *capturingWS) channel() chan<- string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ch
}

// fakeStream implements WalletService_SubscribeServer without a real grpc.ServerStream.
type fakeStream struct {
	ctx context.Context

	mu   sync.Mutex
	sent []string
}

func (f *fakeStream) Send(m *SubscribeResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m.Message)
	return nil
}
func (f *fakeStream) Context() context.Context     { return f.ctx }
func (f *fakeStream) SetHeader(metadata.MD) error  { return nil }
func (f *fakeStream) SendHeader(metadata.MD) error { return nil }
func (f *fakeStream) SetTrailer(metadata.MD)       {}
func (f *fakeStream) SendMsg(m any) error          { return nil }
func (f *fakeStream) RecvMsg(m any) error          { return nil }

func (f *fakeStream) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newSubscribeTestServer(ws *capturingWS) (*Server, *gateway.Service) {
	tokens := tokenstore.New()
	on := fakeOnChain{}
	off := fakeOffChain{}
	dec := decoder.New(on, off, tokens)
	svc := gateway.New(session.New(), tokens, on, off, dec, func() gateway.UpstreamWS { return ws })
	return NewServer(svc, zerolog.Nop()), svc
}

func TestSubscribeStreamsMessagesThenEndsOnUpstreamClose(t *testing.T) {
	ws := &capturingWS{}
	s, _ := newSubscribeTestServer(ws)

	resp, err := s.Init(context.Background(), &InitRequest{Wallet: wallet, Tokens: []string{bonkMint}})
	require.NoError(t, err)

	stream := &fakeStream{ctx: ctxWithClientID(resp.ClientID)}
	done := make(chan error, 1)
	go func() { done <- s.Subscribe(&SubscribeRequest{}, stream) }()

	require.Eventually(t, func() bool { return ws.channel() != nil }, time.Second, time.Millisecond)

	out := ws.channel()
	out <- "Trade detected: test"
	close(out) // simulates wsclient's readPump closing the downstream channel

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Subscribe did not return after the downstream channel closed")
	}

	require.Equal(t, []string{"Trade detected: test"}, stream.messages())

	// A second Subscribe must succeed, proving the session was released back to
	// Idle rather than left dangling as already-subscribed.
	_, err = s.svc.Subscribe(context.Background(), mustParseClientID(t, resp.ClientID))
	require.NoError(t, err)
}

func TestSubscribeUnsubscribesOnClientDisconnect(t *testing.T) {
	ws := &capturingWS{}
	s, _ := newSubscribeTestServer(ws)

	resp, err := s.Init(context.Background(), &InitRequest{Wallet: wallet, Tokens: []string{bonkMint}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ctx = metadata.NewIncomingContext(ctx, metadata.Pairs(clientIDKey, resp.ClientID))
	stream := &fakeStream{ctx: ctx}

	done := make(chan error, 1)
	go func() { done <- s.Subscribe(&SubscribeRequest{}, stream) }()

	require.Eventually(t, func() bool { return ws.channel() != nil }, time.Second, time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Subscribe did not return after the client context was cancelled")
	}

	// A second Subscribe must succeed, proving cancellation released the session.
	_, err = s.svc.Subscribe(context.Background(), mustParseClientID(t, resp.ClientID))
	require.NoError(t, err)
}

func TestHoldingsAndGetTradeRoundTrip(t *testing.T) {
	s := newTestServer()
	resp, err := s.Init(context.Background(), &InitRequest{Wallet: wallet, Tokens: []string{bonkMint}})
	require.NoError(t, err)

	ctx := ctxWithClientID(resp.ClientID)

	holdings, err := s.Holdings(ctx, &HoldingsRequest{})
	require.NoError(t, err)
	require.NotNil(t, holdings)

	trade, err := s.GetTrade(ctx, &GetTradeRequest{Signature: "sig"})
	require.NoError(t, err)
	require.Nil(t, trade.Trade)
}
