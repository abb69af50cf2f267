package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/prathamesh1010/mcp-k8s/internal/instrumentation"
	"github.com/prathamesh1010/mcp-k8s/internal/logging"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second

	// wsMaxMessageSize bounds a single inbound chat frame.
	wsMaxMessageSize = 4096

	clientSendBuffer = 64

	// DefaultMaxPending caps inbound events waiting for the next Poll.
	DefaultMaxPending = 256

	// TransportWebSocket labels bridge connections in logs and metrics.
	TransportWebSocket = "websocket"
)

// ErrBridgeClosed is returned by Post after Close.
var ErrBridgeClosed = errors.New("chat bridge closed")

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithBridgeLogger sets the logger.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithBridgeMetrics records connection counts.
func WithBridgeMetrics(metrics *instrumentation.Metrics) BridgeOption {
	return func(b *Bridge) {
		b.metrics = metrics
	}
}

// WithMaxPending overrides DefaultMaxPending.
func WithMaxPending(n int) BridgeOption {
	return func(b *Bridge) {
		if n > 0 {
			b.inbox.limit = n
		}
	}
}

// WithCheckOrigin replaces the origin check used during the upgrade.
// The default accepts every origin.
func WithCheckOrigin(fn func(r *http.Request) bool) BridgeOption {
	return func(b *Bridge) {
		if fn != nil {
			b.upgrader.CheckOrigin = fn
		}
	}
}

// Bridge connects a game-side chat relay to the dispatch loop over
// WebSocket. Each connected relay sends {"message": "..."} frames for
// the lines players type and receives {"message": "..."} frames for
// everything the loop posts.
type Bridge struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	inbox    queue

	mu      sync.RWMutex
	clients map[*bridgeClient]struct{}
	closed  bool
}

var (
	_ Channel      = (*Bridge)(nil)
	_ http.Handler = (*Bridge)(nil)
)

type bridgeClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *bridgeClient) close() {
	c.once.Do(func() { close(c.send) })
}

// outbound is the frame written to relays.
type outbound struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBridge creates a bridge with no connected relays.
func NewBridge(opts ...BridgeOption) *Bridge {
	b := &Bridge{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  slog.Default(),
		inbox:   queue{limit: DefaultMaxPending},
		clients: make(map[*bridgeClient]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ServeHTTP upgrades the request and serves the relay until it
// disconnects.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		http.Error(w, "chat bridge closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", logging.Err(err))
		return
	}

	client := &bridgeClient{conn: conn, send: make(chan []byte, clientSendBuffer)}
	if !b.register(client) {
		_ = conn.Close()
		return
	}

	b.logger.Info("chat relay connected",
		slog.String("remote_addr", r.RemoteAddr),
		logging.Transport(TransportWebSocket))

	go b.writePump(client)
	b.readPump(client)
}

func (b *Bridge) register(c *bridgeClient) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.clients[c] = struct{}{}
	b.metrics.IncrementChatConnections(context.Background(), TransportWebSocket)
	return true
}

func (b *Bridge) unregister(c *bridgeClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[c]; !ok {
		return
	}
	delete(b.clients, c)
	c.close()
	b.metrics.DecrementChatConnections(context.Background(), TransportWebSocket)
}

// readPump queues inbound lines until the connection fails.
func (b *Bridge) readPump(c *bridgeClient) {
	defer func() {
		b.unregister(c)
		_ = c.conn.Close()
		b.logger.Info("chat relay disconnected", logging.Transport(TransportWebSocket))
	}()

	c.conn.SetReadLimit(wsMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.logger.Debug("chat relay read error", logging.Err(err))
			}
			return
		}

		event, ok := decodeEvent(data)
		if !ok {
			b.logger.Debug("dropping empty chat frame")
			continue
		}
		if !b.inbox.push(event) {
			b.logger.Warn("chat inbox full, dropping message",
				slog.String("message", logging.Truncate(event.Message, 80)))
		}
	}
}

// decodeEvent accepts either a JSON object with a message field or a
// plain text frame.
func decodeEvent(data []byte) (Event, bool) {
	var event Event
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "{") && json.Unmarshal(data, &event) == nil {
		event.Message = strings.TrimSpace(event.Message)
	} else {
		event = Event{Message: text}
	}
	if event.Message == "" {
		return Event{}, false
	}
	event.ReceivedAt = time.Now()
	return event, true
}

// writePump sends queued frames and keeps the connection alive.
func (b *Bridge) writePump(c *bridgeClient) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Poll drains inbound events.
func (b *Bridge) Poll(_ context.Context) ([]Event, error) {
	return b.inbox.drain(), nil
}

// Post broadcasts message to every connected relay. Relays whose send
// buffer is full miss the message. With no relay connected the message
// is dropped and logged.
func (b *Bridge) Post(_ context.Context, message string) error {
	data, err := json.Marshal(outbound{Message: message, Timestamp: time.Now().UTC()})
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBridgeClosed
	}
	if len(b.clients) == 0 {
		b.logger.Debug("no chat relay connected, message dropped",
			slog.String("message", logging.Truncate(message, 80)))
		return nil
	}

	for c := range b.clients {
		select {
		case c.send <- data:
		default:
			b.logger.Warn("chat relay send buffer full, skipping message")
		}
	}
	return nil
}

// Clients returns the number of connected relays.
func (b *Bridge) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects every relay. Further Posts fail with ErrBridgeClosed.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for c := range b.clients {
		delete(b.clients, c)
		c.close()
		b.metrics.DecrementChatConnections(context.Background(), TransportWebSocket)
	}
	return nil
}
