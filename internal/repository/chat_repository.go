package repository

import (
	"context"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/google/uuid"
)

type ChatRepository interface {
	// GetOrCreate returns the single chat for the pair, creating it if absent.
	GetOrCreate(ctx context.Context, a, b uuid.UUID) (*domain.Chat, error)
	AppendMessage(ctx context.Context, a, b uuid.UUID, msg domain.Message) error
	EnsureIndexes(ctx context.Context) error
}
