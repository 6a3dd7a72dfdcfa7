// Package memory holds map-backed repositories with the same contracts as the
// database ones. Use cases are tested against them.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/google/uuid"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
	// seq keeps creation order stable when timestamps collide.
	seq   map[uuid.UUID]int
	next  int
	clock func() time.Time
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[uuid.UUID]*domain.User),
		seq:   make(map[uuid.UUID]int),
		clock: time.Now,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.clock()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = cloneUser(user)
	r.seq[user.ID] = r.next
	r.next++
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) GetPublicByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.PublicUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.PublicUser, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u.Public())
		}
	}
	return out, nil
}

func (r *UserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[id]
	return ok, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	updated := cloneUser(user)
	updated.Email = existing.Email
	updated.PasswordHash = existing.PasswordHash
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.clock()
	r.users[user.ID] = updated
	user.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = r.clock()
	return nil
}

func (r *UserRepository) ListDiscoverable(ctx context.Context, exclude []uuid.UUID, limit, offset int) ([]*domain.PublicUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skip := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	candidates := make([]*domain.User, 0, len(r.users))
	for id, u := range r.users {
		if _, excluded := skip[id]; excluded {
			continue
		}
		candidates = append(candidates, u)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return r.seq[candidates[i].ID] < r.seq[candidates[j].ID]
	})

	if offset < 0 || offset >= len(candidates) {
		return []*domain.PublicUser{}, nil
	}
	end := offset + limit
	if limit > len(candidates)-offset {
		end = len(candidates)
	}

	out := make([]*domain.PublicUser, 0, end-offset)
	for _, u := range candidates[offset:end] {
		out = append(out, u.Public())
	}
	return out, nil
}

// Delete removes a user outright. Only tests need it, to leave dangling requests behind.
func (r *UserRepository) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.Skills != nil {
		c.Skills = append([]string(nil), u.Skills...)
	}
	return &c
}
