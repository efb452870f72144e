// Package wsclient implements C4: the upstream logs-subscription WebSocket. Each
// Client owns at most one live upstream connection at a time, dialed fresh on
// Subscribe and torn down on Unsubscribe — the factory-per-session design spec
// §4.4 calls for. Grounded on services/solana_ws_client.rs for protocol framing and
// on ws/internal/single/core/{pump_write,client_lifecycle}.go for the single-writer
// actor / keepalive-ticker idiom.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adred-codev/soltrace/internal/domain"
	"github.com/adred-codev/soltrace/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeChannelCapacity = 3
	writeWait            = 10 * time.Second
	pingInterval         = 20 * time.Second
)

// DecodeFunc resolves a notified signature to a Trade, or (nil, nil) when the
// transaction carries nothing relevant for the watched wallet/tokens.
type DecodeFunc func(ctx context.Context, signature string) (*domain.Trade, error)

type wsFrame struct {
	opcode int
	data   []byte
}

// subscription is the per-connection state shared by the write pump, the
// keepalive ticker and the read pump. shutdown is safe to call from any of the
// three and from Unsubscribe; only the first caller closes anything.
type subscription struct {
	conn      *websocket.Conn
	writeCh   chan wsFrame
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscription) shutdown() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// Client dials the configured upstream URL on demand. Safe for concurrent use;
// the gateway builds a fresh Client for each Subscribe and later calls
// Unsubscribe on that same Client when the session returns to Idle.
type Client struct {
	url       string
	logger    zerolog.Logger
	nextReqID uint64 // atomic

	mu   sync.Mutex
	subs map[uint64]*subscription
}

// NewClient returns a Client that dials url (a wss:// logs-subscription endpoint).
func NewClient(url string, logger zerolog.Logger) *Client {
	return &Client{
		url:    url,
		logger: logger.With().Str("component", "wsclient").Logger(),
		subs:   make(map[uint64]*subscription),
	}
}

func (c *Client) allocReqID() uint64 {
	return atomic.AddUint64(&c.nextReqID, 1)
}

// Subscribe dials a fresh upstream connection, issues logsSubscribe for wallet,
// and on success spawns the write pump, keepalive ticker and read pump. Every
// clean notification (err == null) is decoded via decode and, if it produces a
// Trade, rendered and pushed onto out; out is never blocked on — a full channel
// silently drops the message, per spec §5's bounded-channel invariant.
func (c *Client) Subscribe(ctx context.Context, wallet string, decode DecodeFunc, out chan<- string) (uint64, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("dial upstream websocket: %w", err)
	}

	reqID := c.allocReqID()
	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      reqID,
		"method":  "logsSubscribe",
		"params": []any{
			map[string]any{"mentions": []string{wallet}},
			map[string]any{"commitment": "finalized"},
		},
	}
	payload, err := json.Marshal(req)
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("encode logsSubscribe: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		conn.Close()
		return 0, fmt.Errorf("send logsSubscribe: %w", err)
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return 0, fmt.Errorf("read logsSubscribe ack: %w", err)
	}
	kind, env := classify(raw)
	if kind != frameSubscribed {
		conn.Close()
		return 0, errors.New("logsSubscribe did not return a subscription id")
	}
	subID := env.subscribedID()

	sub := &subscription{
		conn:    conn,
		writeCh: make(chan wsFrame, writeChannelCapacity),
		done:    make(chan struct{}),
	}
	c.mu.Lock()
	c.subs[subID] = sub
	c.mu.Unlock()

	go c.writePump(sub, subID)
	go c.keepalive(sub, subID)
	go c.readPump(sub, subID, wallet, decode, out)

	c.logger.Info().Uint64("sub_id", subID).Str("wallet", wallet).Msg("upstream logs subscription established")
	return subID, nil
}

// Unsubscribe sends logsUnsubscribe followed by a close frame, then tears the
// connection down. Unknown subID is a legal no-op — the upstream connection may
// already have died and been reaped by readPump.
func (c *Client) Unsubscribe(subID uint64) error {
	c.mu.Lock()
	sub, ok := c.subs[subID]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	reqID := c.allocReqID()
	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      reqID,
		"method":  "logsUnsubscribe",
		"params":  []any{subID},
	}
	payload, err := json.Marshal(req)
	if err == nil {
		select {
		case sub.writeCh <- wsFrame{opcode: websocket.TextMessage, data: payload}:
		case <-sub.done:
		}
	}
	select {
	case sub.writeCh <- wsFrame{opcode: websocket.CloseMessage}:
	case <-sub.done:
	}

	// writePump shuts the subscription down once the close frame is written;
	// wait for that before forcing the connection closed.
	select {
	case <-sub.done:
	case <-time.After(writeWait):
	}
	sub.shutdown()
	return nil
}

func (c *Client) writePump(sub *subscription, subID uint64) {
	defer sub.shutdown()
	for {
		select {
		case frame := <-sub.writeCh:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(frame.opcode, frame.data); err != nil {
				c.logger.Debug().Uint64("sub_id", subID).Err(err).Msg("upstream write failed")
				return
			}
			if frame.opcode == websocket.CloseMessage {
				return
			}
		case <-sub.done:
			return
		}
	}
}

func (c *Client) keepalive(sub *subscription, subID uint64) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			select {
			case sub.writeCh <- wsFrame{opcode: websocket.PingMessage}:
			case <-sub.done:
				return
			}
		case <-sub.done:
			return
		}
	}
}

func (c *Client) readPump(sub *subscription, subID uint64, wallet string, decode DecodeFunc, out chan<- string) {
	defer func() {
		c.mu.Lock()
		delete(c.subs, subID)
		c.mu.Unlock()
		sub.shutdown()
		close(out) // no more notifications will ever arrive for this subscription
	}()

	for {
		_, raw, err := sub.conn.ReadMessage()
		if err != nil {
			c.logger.Debug().Uint64("sub_id", subID).Err(err).Msg("upstream read failed, closing subscription")
			return
		}

		kind, env := classify(raw)
		switch kind {
		case frameNotification:
			metrics.NotificationsTotal.Inc()
			if isCleanNotification(env) {
				signature := env.Params.Result.Value.Signature
				trade, err := decode(context.Background(), signature)
				if err == nil && trade != nil {
					deliver(out, fmt.Sprintf("Trade detected: %s", trade.String()))
				}
			}
		case frameUnsubscribed:
			deliver(out, fmt.Sprintf("Unsubscription success: %t", env.unsubscribedOK()))
			return
		case frameError:
			if env.Error != nil {
				deliver(out, fmt.Sprintf("Error response: %s", env.Error.Message))
			}
		case frameSubscribed:
			// a second Subscribed frame is not expected mid-stream; ignore it
		default:
			// unrecognized frame shape, ignore for forward compatibility
		}
	}
}

func isCleanNotification(env envelope) bool {
	if env.Params == nil {
		return false
	}
	raw := env.Params.Result.Value.Err
	return len(raw) == 0 || string(raw) == "null"
}

// deliver pushes msg onto out without ever blocking; a full channel means the
// downstream consumer is lagging and the message is dropped, per spec §5.
func deliver(out chan<- string, msg string) {
	select {
	case out <- msg:
	default:
		metrics.DownstreamDroppedTotal.Inc()
	}
}
