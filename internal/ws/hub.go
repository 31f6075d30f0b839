package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// Event types pushed to connected clients.
const (
	EventOrderCreated     = "order_created"
	EventOrderUpdated     = "order_updated"
	EventOrderDeleted     = "order_deleted"
	EventProductChanged   = "product_changed"
	EventImportCompleted  = "import_completed"
	EventDashboardRefresh = "dashboard_refresh"
	EventAuth             = "auth_state_change"
)

// Event is the envelope every websocket message uses.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher is what services need from the hub.
type Publisher interface {
	Publish(eventType string, payload any)
	PublishToUser(userID, eventType string, payload any)
}

// Client is a connection plus the account it authenticated as ("" for guests).
type Client struct {
	Conn   *websocket.Conn
	UserID string
}

// outboxSize bounds queued events; publishing never blocks, so overflow is
// dropped.
const outboxSize = 256

// outbound is a queued event. A nil userIDs goes to every client.
type outbound struct {
	userIDs []string
	data    []byte
}

// Hub fans events out to websocket clients. Events leave in the order they
// were published.
type Hub struct {
	Clients    map[*websocket.Conn]string
	Register   chan *Client
	Unregister chan *websocket.Conn
	outbox     chan outbound
	done       chan struct{}
	mutex      sync.Mutex
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]string),
		Register:   make(chan *Client),
		Unregister: make(chan *websocket.Conn),
		outbox:     make(chan outbound, outboxSize),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case c := <-h.Register:
			h.mutex.Lock()
			h.Clients[c.Conn] = c.UserID
			h.mutex.Unlock()
			h.log.Debug("ws client connected", slog.String("user_id", c.UserID))

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case msg := <-h.outbox:
			h.write(msg.data, msg.userIDs)
		}
	}
}

// write sends data to every client, or only to clients of the given users.
func (h *Hub) write(data []byte, userIDs []string) {
	var targets map[string]struct{}
	if userIDs != nil {
		targets = make(map[string]struct{}, len(userIDs))
		for _, id := range userIDs {
			targets[id] = struct{}{}
		}
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn, userID := range h.Clients {
		if targets != nil {
			if _, ok := targets[userID]; !ok || userID == "" {
				continue
			}
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.Clients, conn)
		}
	}
}

// Join registers a client; it returns false once the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Leave(conn *websocket.Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}

// ClientCount is the number of live connections.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Publish broadcasts an event without blocking the caller.
func (h *Hub) Publish(eventType string, payload any) {
	data, ok := h.encode(eventType, payload)
	if !ok {
		return
	}
	h.enqueue(eventType, outbound{data: data})
}

// PublishToUser sends an event only to the connections of one account.
func (h *Hub) PublishToUser(userID, eventType string, payload any) {
	h.SendToUsers([]string{userID}, eventType, payload)
}

func (h *Hub) SendToUsers(userIDs []string, eventType string, payload any) {
	if len(userIDs) == 0 {
		return
	}
	data, ok := h.encode(eventType, payload)
	if !ok {
		return
	}
	h.enqueue(eventType, outbound{userIDs: userIDs, data: data})
}

func (h *Hub) enqueue(eventType string, msg outbound) {
	select {
	case h.outbox <- msg:
	default:
		h.log.Warn("ws outbox full, event dropped", slog.String("type", eventType))
	}
}

func (h *Hub) encode(eventType string, payload any) ([]byte, bool) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, At: time.Now()})
	if err != nil {
		h.log.Error("ws encode failed", slog.String("type", eventType), slog.String("error", err.Error()))
		return nil, false
	}
	return data, true
}
