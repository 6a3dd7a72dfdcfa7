package feed

import (
	"context"
	"fmt"
	"math"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/metrics"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// ExclusionSource lists the users a viewer already has a relationship with.
type ExclusionSource interface {
	ExclusionSet(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type FeedUseCase struct {
	userRepo        repository.UserRepository
	exclusions      ExclusionSource
	defaultPageSize int
	maxPageSize     int
}

func NewFeedUseCase(userRepo repository.UserRepository, exclusions ExclusionSource, defaultPageSize, maxPageSize int) *FeedUseCase {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if maxPageSize < defaultPageSize {
		maxPageSize = MaxPageSize
	}
	return &FeedUseCase{
		userRepo:        userRepo,
		exclusions:      exclusions,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// Feed returns one page of users the viewer has never interacted with, oldest accounts first.
func (uc *FeedUseCase) Feed(ctx context.Context, viewerID uuid.UUID, page, pageSize int) ([]*domain.PublicUser, error) {
	page, pageSize = uc.clamp(page, pageSize)
	// any page whose offset does not fit in an int lies past the last user
	if page-1 > math.MaxInt/pageSize {
		metrics.RecordFeedPage(0)
		return []*domain.PublicUser{}, nil
	}

	related, err := uc.exclusions.ExclusionSet(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to build exclusion set: %w", err)
	}
	exclude := append(related, viewerID)

	users, err := uc.userRepo.ListDiscoverable(ctx, exclude, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed users: %w", err)
	}
	if users == nil {
		users = []*domain.PublicUser{}
	}

	metrics.RecordFeedPage(len(users))
	return users, nil
}

func (uc *FeedUseCase) clamp(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = uc.defaultPageSize
	}
	if pageSize > uc.maxPageSize {
		pageSize = uc.maxPageSize
	}
	return page, pageSize
}
