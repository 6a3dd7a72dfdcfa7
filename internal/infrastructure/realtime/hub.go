package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/metrics"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/chat"
)

const (
	EventJoinChat        = "joinChat"
	EventSendMessage     = "sendMessage"
	EventJoined          = "joined"
	EventMessageReceived = "messageReceived"
	EventError           = "error"
)

// OutboundEvent is every frame the server writes to a socket.
type OutboundEvent struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Hub tracks connected clients and the rooms they joined on this instance.
type Hub struct {
	broker Broker
	log    *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]map[string]struct{}
	rooms   map[string]map[*Client]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(broker Broker, log *slog.Logger) *Hub {
	return &Hub{
		broker:  broker,
		log:     log,
		clients: make(map[*Client]map[string]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		done:    make(chan struct{}),
	}
}

// Run subscribes to the broker until Close is called.
func (h *Hub) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	go func() {
		defer close(h.done)
		if err := h.broker.Subscribe(ctx, h.deliver); err != nil {
			h.log.Error("chat broker subscription ended", "error", err)
		}
	}()
}

// Publish sends a chat message to every member of room, on any instance.
func (h *Hub) Publish(ctx context.Context, room string, event *chat.MessageEvent) error {
	payload, err := json.Marshal(OutboundEvent{Type: EventMessageReceived, Data: event})
	if err != nil {
		return fmt.Errorf("encode chat event: %w", err)
	}
	return h.broker.Publish(ctx, room, payload)
}

func (h *Hub) deliver(room string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		c.enqueue(payload)
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = make(map[string]struct{})
	h.mu.Unlock()
	metrics.WSConnected()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	rooms, ok := h.clients[c]
	if ok {
		for room := range rooms {
			members := h.rooms[room]
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		metrics.WSDisconnected()
	}
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.clients[c]
	if !ok {
		return
	}
	rooms[room] = struct{}{}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

// sendTo writes one frame to a single client if it is still registered.
func (h *Hub) sendTo(c *Client, event OutboundEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode websocket event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; ok {
		c.enqueue(payload)
	}
}

// RoomSize reports how many local clients joined room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close stops the broker subscription and disconnects every client.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
		<-h.done
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.conn.Close()
	}
}
