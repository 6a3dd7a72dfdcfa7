package repository

import (
	"context"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/google/uuid"
)

type ConnectionRequestRepository interface {
	// Create inserts a request; a second row for the same pair key fails with domain.ErrDuplicateRequest.
	Create(ctx context.Context, req *domain.ConnectionRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ConnectionRequest, error)
	ExistsForPair(ctx context.Context, pairKey string) (bool, error)
	// GetByPairKey returns the single request for an unordered pair or domain.ErrRequestNotFound.
	GetByPairKey(ctx context.Context, pairKey string) (*domain.ConnectionRequest, error)
	// Review moves an interested request addressed to reviewerID to status.
	// Any mismatch yields domain.ErrRequestNotFound.
	Review(ctx context.Context, id, reviewerID uuid.UUID, status domain.RequestStatus) (*domain.ConnectionRequest, error)
	ListReceived(ctx context.Context, userID uuid.UUID, status domain.RequestStatus) ([]*domain.ConnectionRequest, error)
	ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.RequestStatus) ([]*domain.ConnectionRequest, error)
	// RelatedUserIDs returns every user with a request to or from userID, any status.
	RelatedUserIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListCreatedBetween(ctx context.Context, status domain.RequestStatus, from, to time.Time) ([]*domain.ConnectionRequest, error)
}
