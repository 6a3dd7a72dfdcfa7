package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/google/uuid"
)

type ChatRepository struct {
	mu    sync.Mutex
	chats map[string]*domain.Chat
}

var _ repository.ChatRepository = (*ChatRepository)(nil)

func NewChatRepository() *ChatRepository {
	return &ChatRepository{chats: make(map[string]*domain.Chat)}
}

func (r *ChatRepository) GetOrCreate(ctx context.Context, a, b uuid.UUID) (*domain.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneChat(r.getOrCreate(a, b)), nil
}

func (r *ChatRepository) AppendMessage(ctx context.Context, a, b uuid.UUID, msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat := r.getOrCreate(a, b)
	chat.Messages = append(chat.Messages, msg)
	chat.UpdatedAt = msg.CreatedAt
	return nil
}

func (r *ChatRepository) EnsureIndexes(ctx context.Context) error {
	return nil
}

func (r *ChatRepository) getOrCreate(a, b uuid.UUID) *domain.Chat {
	key := domain.PairKey(a, b)
	chat, ok := r.chats[key]
	if !ok {
		now := time.Now()
		chat = &domain.Chat{
			ID:           uuid.NewString(),
			PairKey:      key,
			Participants: []uuid.UUID{a, b},
			Messages:     []domain.Message{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		r.chats[key] = chat
	}
	return chat
}

func cloneChat(c *domain.Chat) *domain.Chat {
	out := *c
	out.Participants = append([]uuid.UUID(nil), c.Participants...)
	out.Messages = append([]domain.Message{}, c.Messages...)
	return &out
}
