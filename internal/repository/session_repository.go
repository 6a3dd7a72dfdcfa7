package repository

import (
	"context"
	"time"
)

// SessionRepository tracks tokens revoked before their natural expiry.
type SessionRepository interface {
	Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}
