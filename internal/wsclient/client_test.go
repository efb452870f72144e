package wsclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adred-codev/soltrace/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// fakeUpstream serves one logsSubscribe/logsUnsubscribe round trip: it acks the
// subscribe request with subID 42, then sends one notification frame for each
// signature received on notify.
func fakeUpstream(t *testing.T, notify chan string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Contains(t, string(raw), "logsSubscribe")

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"result":42,"id":1}`)))

		for sig := range notify {
			frame := map[string]any{
				"jsonrpc": "2.0",
				"method":  "logsNotification",
				"params": map[string]any{
					"subscription": 42,
					"result": map[string]any{
						"context": map[string]any{"slot": 1},
						"value":   map[string]any{"signature": sig, "err": nil},
					},
				},
			}
			b, _ := json.Marshal(frame)
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}

		// drain until the client closes or unsubscribes
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestSubscribeDeliversDecodedTrade(t *testing.T) {
	notify := make(chan string, 1)
	srv := fakeUpstream(t, notify)
	defer srv.Close()
	defer close(notify)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := NewClient(url, zerolog.Nop())

	trade := &domain.Trade{
		From: []domain.Transfer{domain.NewTransfer(domain.WrappedNativeMint, 1)},
		To:   []domain.Transfer{domain.NewTransfer("mint", 2)},
	}
	decode := func(ctx context.Context, signature string) (*domain.Trade, error) {
		require.Equal(t, "sig1", signature)
		return trade, nil
	}

	out := make(chan string, 10)
	subID, err := c.Subscribe(context.Background(), "wallet1", decode, out)
	require.NoError(t, err)
	require.Equal(t, uint64(42), subID)

	notify <- "sig1"

	select {
	case msg := <-out:
		require.Contains(t, msg, "Trade detected:")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivered message")
	}

	require.NoError(t, c.Unsubscribe(subID))
}

func TestSubscribeFailsWhenUpstreamRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":{"code":-1,"message":"nope"},"id":1}`))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := NewClient(url, zerolog.Nop())

	_, err := c.Subscribe(context.Background(), "wallet1", nil, make(chan string, 1))
	require.Error(t, err)
}

func TestUnsubscribeUnknownSubIsNoop(t *testing.T) {
	c := NewClient("ws://example.invalid", zerolog.Nop())
	require.NoError(t, c.Unsubscribe(999))
}
