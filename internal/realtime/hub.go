// Package realtime is the in-process real-time channel: a websocket hub whose
// clients join a room per tenant and a room per subject. Handshake requires
// the same signed token as the HTTP surface.
package realtime

import (
	"encoding/json"
	"sync"

	"polling-service/prometheus"

	"go.uber.org/zap"
)

// Message is the wire frame sent to websocket clients.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub maintains the set of active clients grouped into named rooms and
// broadcasts messages to them.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

func (h *Hub) join(c *Client) {
	h.mu.Lock()
	for _, room := range c.rooms {
		clients, ok := h.rooms[room]
		if !ok {
			clients = make(map[*Client]struct{})
			h.rooms[room] = clients
		}
		clients[c] = struct{}{}
	}
	h.mu.Unlock()

	prometheus.WebsocketClientsGauge.Inc()
	h.log.Info("websocket client connected",
		zap.String("user_id", c.userID),
		zap.Strings("rooms", c.rooms))
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	removed := false
	for _, room := range c.rooms {
		if clients, ok := h.rooms[room]; ok {
			if _, present := clients[c]; present {
				delete(clients, c)
				removed = true
			}
			if len(clients) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()

	if removed {
		close(c.send)
		prometheus.WebsocketClientsGauge.Dec()
		h.log.Info("websocket client disconnected", zap.String("user_id", c.userID))
	}
}

// Broadcast sends an event to every client in the room. Clients whose send
// buffer is full are skipped; the channel offers no delivery guarantee.
func (h *Hub) Broadcast(room, event string, payload interface{}) {
	frame, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		prometheus.RecordEventFailure("realtime")
		h.log.Warn("broadcast marshal failed", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		select {
		case c.send <- frame:
		default:
			prometheus.RecordEventFailure("realtime")
			h.log.Warn("dropping frame for slow websocket client",
				zap.String("user_id", c.userID),
				zap.String("event", event))
		}
	}
}

// ClientCount returns the number of clients in a room.
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
