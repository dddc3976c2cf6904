package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// writeWait is the deadline for a single websocket write
	writeWait = 10 * time.Second

	// sendQueueSize bounds the per-connection outbound queue. A full queue
	// means the connection is too slow to keep up and events are dropped
	// for it, never queued unboundedly.
	sendQueueSize = 32

	// intentTimeout bounds store I/O triggered by a single inbound intent
	intentTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub owns the websocket transport for the coordination core: it
// authenticates handshakes, registers connections in the presence registry,
// decodes inbound intents, and implements Sender for the dispatcher. Events
// queued for one connection are written by a single goroutine, which
// preserves dispatch order per connection.
type Hub struct {
	auth       *Authenticator
	registry   *Registry
	controller *Controller

	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub creates a hub over the given authenticator and presence registry
func NewHub(auth *Authenticator, registry *Registry) *Hub {
	return &Hub{
		auth:     auth,
		registry: registry,
		clients:  make(map[string]*client),
	}
}

// SetController attaches the lifecycle controller that handles leave intents.
// Wiring is two-phase because the controller's dispatcher sends through this hub.
func (h *Hub) SetController(c *Controller) {
	h.controller = c
}

// ServeWS authenticates and upgrades a websocket connection. The credential
// is verified before the upgrade, so a bad token is observable as a rejected
// handshake rather than a silently degraded connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}

	identity, err := h.auth.Verify(token)
	if err != nil {
		zap.S().Warnw("websocket handshake rejected",
			"remote", r.RemoteAddr,
			"error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.registry.Register(c.id, identity)

	zap.S().Infow("websocket client connected",
		"connectionId", c.id,
		"userId", identity.UserID)

	go h.writePump(c)
	h.readPump(c)
}

// Send implements Sender: a non-blocking enqueue onto the connection's write
// queue. Returns false when the connection is gone or its queue is full.
func (h *Hub) Send(connectionID string, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[connectionID]
	if !ok {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		zap.S().Warnw("dropping event for slow connection", "connectionId", connectionID)
		return false
	}
}

// Connections returns the number of currently open connections
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			zap.S().Debugw("ignoring malformed frame", "connectionId", c.id, "error", err)
			continue
		}

		switch frame.Kind {
		case IntentRegister:
			var intent RegisterIntent
			if err := json.Unmarshal(frame.Data, &intent); err != nil {
				zap.S().Debugw("ignoring malformed register intent", "connectionId", c.id, "error", err)
				continue
			}
			h.registry.Register(c.id, Identity{
				UserID:      intent.UserID,
				Role:        intent.Role,
				DisplayName: intent.DisplayName,
			})

		case IntentLeaveSession:
			var intent LeaveSessionIntent
			if err := json.Unmarshal(frame.Data, &intent); err != nil {
				zap.S().Debugw("ignoring malformed leave intent", "connectionId", c.id, "error", err)
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
			if err := h.controller.RecordLeave(ctx, intent.RoomToken, intent.UserID, c.id); err != nil {
				zap.S().Warnw("failed to record leave signal",
					"connectionId", c.id,
					"roomToken", intent.RoomToken,
					"error", err)
			}
			cancel()

		default:
			zap.S().Debugw("ignoring unknown intent", "connectionId", c.id, "kind", frame.Kind)
		}
	}
}

func (h *Hub) writePump(c *client) {
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// drop tears a connection down: abandoned connections are removed from the
// presence registry immediately, with no grace period.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()

	h.registry.Remove(c.id)
	c.conn.Close()

	zap.S().Infow("websocket client disconnected", "connectionId", c.id)
}
