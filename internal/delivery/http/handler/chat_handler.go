package handler

import (
	"log/slog"
	"net/http"

	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/realtime"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/chat"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type ChatHandler struct {
	chatUseCase *chat.ChatUseCase
	hub         *realtime.Hub
	upgrader    websocket.Upgrader
	log         *slog.Logger
}

func NewChatHandler(chatUseCase *chat.ChatUseCase, hub *realtime.Hub, allowedOrigins []string, log *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		hub:         hub,
		upgrader:    realtime.NewUpgrader(allowedOrigins),
		log:         log,
	}
}

// Open handles GET /chat/:target_user_id
// @Summary Open a chat
// @Description Returns the chat with its history, creating it on first use. Only connections can chat.
// @Tags chat
// @Produce json
// @Success 200 {object} domain.Chat
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /chat/{target_user_id} [get]
func (h *ChatHandler) Open(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "target_user_id")
	if !ok {
		return
	}

	conversation, err := h.chatUseCase.Open(c.Request.Context(), userID, targetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// SendMessage handles POST /chat/:target_user_id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "target_user_id")
	if !ok {
		return
	}

	var req chat.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingMessage(err)})
		return
	}

	event, err := h.chatUseCase.SendMessage(c.Request.Context(), userID, targetID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// Socket handles GET /ws and upgrades to a websocket for live chat
func (h *ChatHandler) Socket(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.log.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	realtime.NewClient(h.hub, conn, userID, h.chatUseCase, h.log).Start()
}
