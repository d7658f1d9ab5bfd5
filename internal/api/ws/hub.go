// Package ws pushes lifecycle events to connected UI clients.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/monitoring"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The server binds to localhost; the UI shell is the only client.
		return true
	},
}

// sendBuffer bounds per-client queued events. A client that cannot drain
// this many messages is dead weight and gets dropped.
const sendBuffer = 16

// Event is the wire envelope for every pushed message.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans lifecycle events out to every connected client. Implements the
// launcher's Events interface.
type Hub struct {
	log     *logging.Logger
	metrics *monitoring.Metrics

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates an empty hub.
func NewHub(log *logging.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// WithMetrics adds connection gauge tracking to the hub.
func (h *Hub) WithMetrics(m *monitoring.Metrics) *Hub {
	h.metrics = m
	return h
}

// HandleConnection upgrades the request and serves the client until it
// disconnects.
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(cl)
	defer h.remove(cl)

	go h.writeLoop(cl)

	// Read loop: clients only ever send pings; anything else is ignored.
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType == websocket.TextMessage && string(data) == `{"type":"ping"}` {
			h.sendTo(cl, Event{Type: "pong", Timestamp: time.Now().Unix()})
		}
	}
}

// ProfilesChanged pushes the full profile list after any mutation.
func (h *Hub) ProfilesChanged(profiles []types.Profile) {
	h.Broadcast("profiles.updated", profiles)
}

// ActiveChanged pushes the set of profiles with open windows.
func (h *Hub) ActiveChanged(names []string) {
	h.Broadcast("profiles.active", names)
}

// RestartRequired announces that a wipe needs a restart to finish.
func (h *Hub) RestartRequired(profileName string) {
	h.Broadcast("restart.required", gin.H{"profile": profileName})
}

// Broadcast sends one event to every connected client.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	data, err := sonic.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		h.log.Error("Failed to marshal event", zap.String("type", eventType), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			// Client is not draining; drop it rather than block the
			// broadcaster.
			h.dropLocked(cl)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) sendTo(cl *client, ev Event) {
	data, err := sonic.Marshal(ev)
	if err != nil {
		return
	}
	// A concurrent Broadcast may have dropped the client and closed its
	// send channel; only send while it is still a member.
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; !ok {
		return
	}
	select {
	case cl.send <- data:
	default:
	}
}

func (h *Hub) writeLoop(cl *client) {
	for data := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Info("WebSocket client connected", zap.Int("clients", n))
	if h.metrics != nil {
		h.metrics.WSConnections.Set(float64(n))
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	h.dropLocked(cl)
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Info("WebSocket client disconnected", zap.Int("clients", n))
	if h.metrics != nil {
		h.metrics.WSConnections.Set(float64(n))
	}
}

// dropLocked must be called with h.mu held.
func (h *Hub) dropLocked(cl *client) {
	if _, ok := h.clients[cl]; !ok {
		return
	}
	delete(h.clients, cl)
	close(cl.send)
	cl.conn.Close()
}
