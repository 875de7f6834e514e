// Package realtime fans out live phase events (chat messages, progress
// changes) to websocket clients grouped in one room per phase.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"site-tracker-api/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Event types pushed to rooms
const (
	EventChatMessage = "CHAT_MESSAGE"
	EventProgress    = "PROGRESS_UPDATED"
	EventStatus      = "STATUS_CHANGED"
)

// Envelope is the frame written to clients
type Envelope struct {
	Type    string      `json:"type"`
	PhaseID uuid.UUID   `json:"phaseId"`
	Data    interface{} `json:"data,omitempty"`
	SentAt  time.Time   `json:"sentAt"`
}

// Broadcaster is what services depend on to push room events
type Broadcaster interface {
	Broadcast(phaseID uuid.UUID, eventType string, data interface{})
}

type client struct {
	conn       *websocket.Conn
	send       chan []byte
	room       uuid.UUID
	employeeID uuid.UUID
}

// Hub tracks connected clients per phase room
type Hub struct {
	rooms      map[uuid.UUID]map[*client]bool
	mu         sync.RWMutex
	register   chan *client
	unregister chan *client
	done       chan struct{}
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewHub creates a hub; call Run in its own goroutine
func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger,
		metrics:    m,
	}
}

// Run processes registrations until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = make(map[*client]bool)
			}
			h.rooms[c.room][c] = true
			h.mu.Unlock()
			if h.metrics != nil {
				h.metrics.ChatConnected()
			}
			h.logger.Debug("Client joined phase room",
				zap.String("phase_id", c.room.String()),
				zap.String("employee_id", c.employeeID.String()))

		case c := <-h.unregister:
			h.remove(c)

		case <-h.done:
			h.mu.Lock()
			for room, clients := range h.rooms {
				for c := range clients {
					close(c.send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop disconnects every client and ends Run
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, exists := clients[c]; !exists {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.room)
	}
	if h.metrics != nil {
		h.metrics.ChatDisconnected()
	}
}

// RoomSize returns the number of clients in a phase room
func (h *Hub) RoomSize(phaseID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[phaseID])
}

// ClientCount returns the number of connected clients across all rooms
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.rooms {
		n += len(clients)
	}
	return n
}

// Broadcast queues an event for every client in the phase room. Slow clients are dropped.
func (h *Hub) Broadcast(phaseID uuid.UUID, eventType string, data interface{}) {
	payload, err := json.Marshal(Envelope{Type: eventType, PhaseID: phaseID, Data: data, SentAt: time.Now().UTC()})
	if err != nil {
		h.logger.Error("Failed to marshal room event", zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.rooms[phaseID] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("Dropping slow websocket client", zap.String("employee_id", c.employeeID.String()))
		h.remove(c)
	}
}

// Serve attaches an upgraded connection to a phase room and blocks until it closes
func (h *Hub) Serve(conn *websocket.Conn, phaseID, employeeID uuid.UUID) {
	c := &client{
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		room:       phaseID,
		employeeID: employeeID,
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

// readPump only services control frames; messages are posted over HTTP
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NoopBroadcaster discards events
type NoopBroadcaster struct{}

func (NoopBroadcaster) Broadcast(uuid.UUID, string, interface{}) {}
