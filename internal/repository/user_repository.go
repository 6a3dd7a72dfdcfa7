package repository

import (
	"context"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetPublicByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.PublicUser, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// ListDiscoverable returns users whose id is not in exclude, ordered by creation.
	ListDiscoverable(ctx context.Context, exclude []uuid.UUID, limit, offset int) ([]*domain.PublicUser, error)
}
