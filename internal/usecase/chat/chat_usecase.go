package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/metrics"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/google/uuid"
)

const maxMessageLength = 2000

// ConnectionChecker decides whether two users may chat.
type ConnectionChecker interface {
	IsConnected(ctx context.Context, a, b uuid.UUID) (bool, error)
}

// Publisher fans a message out to everyone in a room.
type Publisher interface {
	Publish(ctx context.Context, room string, event *MessageEvent) error
}

// MessageEvent is what room members receive for every new message.
type MessageEvent struct {
	Room      string    `json:"room"`
	SenderID  uuid.UUID `json:"sender_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	connections ConnectionChecker
	publisher   Publisher
	log         *slog.Logger
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	connections ConnectionChecker,
	publisher Publisher,
	log *slog.Logger,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		connections: connections,
		publisher:   publisher,
		log:         log,
	}
}

// Open returns the chat between userID and targetID with its history, creating it on first use.
func (uc *ChatUseCase) Open(ctx context.Context, userID, targetID uuid.UUID) (*domain.Chat, error) {
	if err := uc.authorize(ctx, userID, targetID); err != nil {
		return nil, err
	}
	chat, err := uc.chatRepo.GetOrCreate(ctx, userID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat: %w", err)
	}
	return chat, nil
}

// Join authorizes userID for the room shared with targetID and returns the room name.
func (uc *ChatUseCase) Join(ctx context.Context, userID, targetID uuid.UUID) (string, error) {
	if err := uc.authorize(ctx, userID, targetID); err != nil {
		return "", err
	}
	return domain.PairKey(userID, targetID), nil
}

// SendMessage stores the message and then publishes it to the pair's room.
// A publish failure is logged; the message is already persisted.
func (uc *ChatUseCase) SendMessage(ctx context.Context, userID, targetID uuid.UUID, text string) (*MessageEvent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, fmt.Errorf("%w: message longer than %d characters", domain.ErrInvalidInput, maxMessageLength)
	}

	if err := uc.authorize(ctx, userID, targetID); err != nil {
		return nil, err
	}

	sender, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	msg := domain.Message{
		SenderID:  userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.chatRepo.AppendMessage(ctx, userID, targetID, msg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	metrics.RecordChatMessage()

	event := &MessageEvent{
		Room:      domain.PairKey(userID, targetID),
		SenderID:  userID,
		FirstName: sender.FirstName,
		LastName:  sender.LastName,
		Text:      text,
		CreatedAt: msg.CreatedAt,
	}
	if err := uc.publisher.Publish(ctx, event.Room, event); err != nil {
		uc.log.Error("failed to publish chat message", "room", event.Room, "error", err)
	}

	return event, nil
}

func (uc *ChatUseCase) authorize(ctx context.Context, userID, targetID uuid.UUID) error {
	if userID == targetID {
		return fmt.Errorf("%w: cannot chat with yourself", domain.ErrInvalidInput)
	}

	exists, err := uc.userRepo.Exists(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	connected, err := uc.connections.IsConnected(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if !connected {
		return domain.ErrChatNotAllowed
	}
	return nil
}
