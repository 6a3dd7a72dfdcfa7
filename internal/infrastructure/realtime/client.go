package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/chat"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 16 * 1024

	sendBuffer = 64

	handleTimeout = 10 * time.Second
)

// ChatService is what a socket can ask of the chat use case.
type ChatService interface {
	Join(ctx context.Context, userID, targetID uuid.UUID) (string, error)
	SendMessage(ctx context.Context, userID, targetID uuid.UUID, text string) (*chat.MessageEvent, error)
}

// InboundEvent is every frame a client may send.
type InboundEvent struct {
	Type         string `json:"type"`
	TargetUserID string `json:"target_user_id"`
	Text         string `json:"text,omitempty"`
}

// NewUpgrader accepts connections from the configured origins only.
// Requests without an Origin header are not from browsers and are accepted.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// Client is one authenticated websocket connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	userID  uuid.UUID
	service ChatService
	log     *slog.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, service ChatService, log *slog.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		userID:  userID,
		service: service,
		log:     log.With("user_id", userID),
	}
}

func (c *Client) Start() {
	c.hub.register(c)
	go c.writePump()
	go c.readPump()
}

// enqueue must be called with the hub lock held.
func (c *Client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.log.Warn("websocket send buffer full, dropping frame")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket closed unexpectedly", "error", err)
			}
			return
		}
		c.handle(data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handle(data []byte) {
	var in InboundEvent
	if err := json.Unmarshal(data, &in); err != nil {
		c.fail("malformed frame")
		return
	}

	targetID, err := uuid.Parse(in.TargetUserID)
	if err != nil {
		c.fail("target_user_id must be a valid id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	switch in.Type {
	case EventJoinChat:
		room, err := c.service.Join(ctx, c.userID, targetID)
		if err != nil {
			c.fail(publicError(err))
			return
		}
		c.hub.join(c, room)
		c.hub.sendTo(c, OutboundEvent{Type: EventJoined, Data: map[string]string{"room": room}})

	case EventSendMessage:
		room, err := c.service.Join(ctx, c.userID, targetID)
		if err != nil {
			c.fail(publicError(err))
			return
		}
		// the sender sees its own message through the room
		c.hub.join(c, room)
		if _, err := c.service.SendMessage(ctx, c.userID, targetID, in.Text); err != nil {
			c.fail(publicError(err))
		}

	default:
		c.fail("unknown event type " + in.Type)
	}
}

func (c *Client) fail(msg string) {
	c.hub.sendTo(c, OutboundEvent{Type: EventError, Error: msg})
}

func publicError(err error) string {
	for _, known := range []error{
		domain.ErrInvalidInput,
		domain.ErrUserNotFound,
		domain.ErrChatNotAllowed,
	} {
		if errors.Is(err, known) {
			return err.Error()
		}
	}
	return "internal error"
}
