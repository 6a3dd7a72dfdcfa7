package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/repository"
)

// SessionRepository is used when Redis is not configured. Revocations do not
// survive a restart and are not shared between instances.
type SessionRepository struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{revoked: make(map[string]time.Time)}
}

func (r *SessionRepository) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for hash, until := range r.revoked {
		if now.After(until) {
			delete(r.revoked, hash)
		}
	}
	r.revoked[tokenHash] = now.Add(ttl)
	return nil
}

func (r *SessionRepository) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.revoked[tokenHash]
	return ok && time.Now().Before(until), nil
}
