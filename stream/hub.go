// Package stream broadcasts track snapshots to websocket clients
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lixenwraith/endless-road/events"
	"github.com/lixenwraith/endless-road/road"
)

const (
	sendBuffer   = 8
	writeTimeout = 2 * time.Second
)

// Source provides the state to broadcast
type Source interface {
	Snapshot() road.State
}

// Frame is the JSON message sent to clients
type Frame struct {
	Type     string          `json:"type"` // "state" or "reset"
	Run      uuid.UUID       `json:"run"`
	Tick     uint64          `json:"tick"`
	Distance float64         `json:"distance"`
	Speed    float64         `json:"speed"`
	Pivot    road.Pivot      `json:"pivot"`
	Pieces   []road.Snapshot `json:"pieces"`
}

// NewFrame wraps a road state
func NewFrame(kind string, s road.State) Frame {
	return Frame{
		Type:     kind,
		Run:      s.Run,
		Tick:     s.Tick,
		Distance: s.Distance,
		Speed:    s.Speed,
		Pivot:    s.Pivot,
		Pieces:   s.Pieces,
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	id   uuid.UUID
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithBroadcastEvery sends a state frame every n ticks
func WithBroadcastEvery(n uint64) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.every = n
		}
	}
}

func WithLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// Hub fans frames out to websocket clients
// Each client has its own writer goroutine and a small buffer; slow clients lose their oldest frames
type Hub struct {
	source   Source
	logger   *slog.Logger
	upgrader websocket.Upgrader
	every    uint64

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	frames  atomic.Uint64
	dropped atomic.Uint64
}

// NewHub creates a hub reading state from src
func NewHub(src Source, opts ...HubOption) *Hub {
	h := &Hub{
		source: src,
		logger: slog.New(slog.DiscardHandler),
		every:  1,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handler serves /ws and /healthz
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// ServeWS upgrades the request and streams frames until the client goes away
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), id: uuid.New()}

	// Queue the current state before the client becomes visible to Broadcast
	if h.source != nil {
		if data, err := json.Marshal(NewFrame("state", h.source.Snapshot())); err == nil {
			c.send <- data
		}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("stream client connected", "client", c.id, "remote", r.RemoteAddr)

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client messages and detects disconnects
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("stream write failed", "client", c.id, "error", err)
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Info("stream client disconnected", "client", c.id)
}

// Broadcast marshals the frame once and queues it for every client
func (h *Hub) Broadcast(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Drop the oldest queued frame to make room
			select {
			case <-c.send:
				h.dropped.Add(1)
			default:
			}
			select {
			case c.send <- data:
			default:
				h.dropped.Add(1)
			}
		}
	}
	h.frames.Add(1)
	return nil
}

// EventTypes implements events.Handler
func (h *Hub) EventTypes() []events.EventType {
	return []events.EventType{events.EventTick, events.EventTrackReset}
}

// HandleEvent broadcasts on reset and every n-th tick
func (h *Hub) HandleEvent(ev events.GameEvent) {
	if h.source == nil || h.Clients() == 0 {
		return
	}

	kind := "state"
	switch ev.Type {
	case events.EventTrackReset:
		kind = "reset"
	case events.EventTick:
		if ev.Tick%h.every != 0 {
			return
		}
	default:
		return
	}

	if err := h.Broadcast(NewFrame(kind, h.source.Snapshot())); err != nil {
		h.logger.Error("stream marshal failed", "error", err)
	}
}

// Clients returns the connected client count
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Frames returns the number of broadcasts
func (h *Hub) Frames() uint64 {
	return h.frames.Load()
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
