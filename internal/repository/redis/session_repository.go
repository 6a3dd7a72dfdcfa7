package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

const revokedPrefix = "devmatch:revoked:"

type sessionRepository struct {
	client *goredis.Client
}

func NewSessionRepository(client *goredis.Client) repository.SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedPrefix+tokenHash, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *sessionRepository) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedPrefix+tokenHash).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
