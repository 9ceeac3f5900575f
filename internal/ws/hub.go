package ws

import (
	"encoding/json"
	"sync"

	"task_manager/internal/domain"
	"task_manager/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	WSConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections",
		Help: "Open websocket connections",
	})
	WSDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ws_dropped_clients_total",
		Help: "Clients disconnected because their send buffer was full",
	})
)

func init() {
	prometheus.MustRegister(WSConnections, WSDropped)
}

// Hub routes task events to every open connection of the task's owner.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register adds c under its user. It reports false once the hub is closed.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	WSConnections.Inc()
	logger.Debug("ws client registered", "user_id", c.UserID, "connections", len(set))
	return true
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.Send)
	WSConnections.Dec()
}

// Publish never blocks: a client whose buffer is full is dropped.
func (h *Hub) Publish(ev domain.TaskEvent) {
	if ev.UserID == "" {
		return
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal event failed", "type", ev.Type, "error", err)
		return
	}
	h.SendToUser(ev.UserID, msg)
}

// SendToUser delivers a raw message to all of userID's connections.
func (h *Hub) SendToUser(userID string, msg []byte) {
	h.mu.RLock()
	var slow []*Client
	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) == 0 {
		return
	}
	h.mu.Lock()
	for _, c := range slow {
		h.removeLocked(c)
		WSDropped.Inc()
		logger.Warn("ws client dropped, send buffer full", "user_id", c.UserID)
	}
	h.mu.Unlock()
}

// deliver sends to one client if it is still registered; a full buffer skips the message.
func (h *Hub) deliver(c *Client, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.UserID][c]; !ok {
		return
	}
	select {
	case c.Send <- msg:
	default:
	}
}

// Connections reports how many connections userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects everyone and refuses new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}
