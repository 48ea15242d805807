package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/arena/internal/event"
)

// Controller applies client commands to the simulation.
// Implemented by sim.Runner.
type Controller interface {
	Move(ctx context.Context, dx, dy float64) error
	Attack(ctx context.Context) error
	Retry(ctx context.Context) error
	Snapshot(ctx context.Context) (any, error)
}

// Config configures the hub.
type Config struct {
	QueueSize    int           // per-client outbox and inbound event queue capacity
	WriteTimeout time.Duration // per-write deadline
}

// Hub fans core notifications out to websocket clients and forwards
// client commands to the controller.
type Hub struct {
	cfg      Config
	control  Controller
	upgrader websocket.Upgrader

	events  chan event.Event
	dropped atomic.Int64

	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// NewHub creates hub. control may be nil (read-only feed).
func NewHub(cfg Config, control Controller) *Hub {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Hub{
		cfg:     cfg,
		control: control,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		events:  make(chan event.Event, cfg.QueueSize),
		clients: make(map[*client]struct{}),
	}
}

// Publish queues ev for broadcast. Never blocks: safe to call from bus
// handlers on the simulation goroutine. Events are dropped when the queue is full.
func (h *Hub) Publish(ev event.Event) {
	select {
	case h.events <- ev:
	default:
		if h.dropped.Add(1)%100 == 1 {
			slog.Warn("feed queue full, events dropped", "total", h.dropped.Load())
		}
	}
}

// Dropped returns number of events dropped because the queue was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Run broadcasts queued events (blocks until context is canceled).
func (h *Hub) Run(ctx context.Context) error {
	slog.Info("event feed started")

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			slog.Info("event feed stopped")
			return ctx.Err()

		case ev := <-h.events:
			data, err := marshalEvent(ev)
			if err != nil {
				slog.Error("failed to marshal event", "type", ev.Type, "error", err)
				continue
			}
			h.broadcast(data)
		}
	}
}

func (h *Hub) broadcast(data []byte) {
	var slow []*client

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	// Closing the outbox makes the writer drop the connection.
	for _, c := range slow {
		slog.Warn("feed client too slow, disconnecting", "remote", c.conn.RemoteAddr())
		h.unregister(c)
	}
}

// ClientCount returns number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		c.close()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

// ServeHTTP upgrades the request to a websocket, sends the current
// snapshot and then streams events until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.cfg.QueueSize),
	}

	if h.control != nil {
		snapshot, err := h.control.Snapshot(r.Context())
		if err == nil {
			var data []byte
			data, err = marshalSnapshot(snapshot)
			if err == nil {
				c.send <- data
			}
		}
		if err != nil {
			slog.Error("failed to build initial snapshot", "remote", r.RemoteAddr, "error", err)
			h.writeClose(conn, websocket.CloseInternalServerErr, "snapshot unavailable")
			conn.Close()
			return
		}
	}

	h.register(c)
	slog.Info("feed client connected", "remote", conn.RemoteAddr(), "clients", h.ClientCount())

	go h.writePump(c)
	h.readPump(r.Context(), c)

	h.unregister(c)
	slog.Info("feed client disconnected", "remote", conn.RemoteAddr(), "clients", h.ClientCount())
}

// writePump drains the client outbox into the connection.
func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Debug("feed write failed", "remote", c.conn.RemoteAddr(), "error", err)
			return
		}
	}

	h.writeClose(c.conn, websocket.CloseNormalClosure, "")
}

// writeClose sends a close frame. Failures only mean the peer is already gone.
func (h *Hub) writeClose(conn *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(h.cfg.WriteTimeout)
	message := websocket.FormatCloseMessage(code, text)
	if err := conn.WriteControl(websocket.CloseMessage, message, deadline); err != nil {
		slog.Debug("feed close frame not sent", "remote", conn.RemoteAddr(), "code", code, "error", err)
	}
}

// readPump applies client commands until the connection fails.
func (h *Hub) readPump(ctx context.Context, c *client) {
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			slog.Debug("bad feed client message", "remote", c.conn.RemoteAddr(), "error", err)
			continue
		}
		if h.control == nil {
			continue
		}

		if err := h.apply(ctx, msg); err != nil {
			slog.Warn("feed command failed", "type", msg.Type, "error", err)
			return
		}
	}
}

func (h *Hub) apply(ctx context.Context, msg clientMessage) error {
	switch msg.Type {
	case TypeInput:
		return h.control.Move(ctx, msg.DX, msg.DY)
	case TypeAttack:
		return h.control.Attack(ctx)
	case TypeRetry:
		return h.control.Retry(ctx)
	default:
		slog.Debug("unknown feed command", "type", msg.Type)
		return nil
	}
}
