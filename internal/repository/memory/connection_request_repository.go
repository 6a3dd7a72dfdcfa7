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

type ConnectionRequestRepository struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*domain.ConnectionRequest
	byPair   map[string]uuid.UUID
	clock    func() time.Time
}

var _ repository.ConnectionRequestRepository = (*ConnectionRequestRepository)(nil)

func NewConnectionRequestRepository() *ConnectionRequestRepository {
	return &ConnectionRequestRepository{
		requests: make(map[uuid.UUID]*domain.ConnectionRequest),
		byPair:   make(map[string]uuid.UUID),
		clock:    time.Now,
	}
}

// SetClock overrides the creation timestamp source.
func (r *ConnectionRequestRepository) SetClock(clock func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = clock
}

func (r *ConnectionRequestRepository) Create(ctx context.Context, req *domain.ConnectionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req.PairKey = domain.PairKey(req.FromUserID, req.ToUserID)
	if _, taken := r.byPair[req.PairKey]; taken {
		return domain.ErrDuplicateRequest
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := r.clock()
	req.CreatedAt = now
	req.UpdatedAt = now

	c := *req
	r.requests[req.ID] = &c
	r.byPair[req.PairKey] = req.ID
	return nil
}

func (r *ConnectionRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConnectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	c := *req
	return &c, nil
}

func (r *ConnectionRequestRepository) ExistsForPair(ctx context.Context, pairKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.byPair[pairKey]
	return ok, nil
}

func (r *ConnectionRequestRepository) GetByPairKey(ctx context.Context, pairKey string) (*domain.ConnectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byPair[pairKey]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	c := *r.requests[id]
	return &c, nil
}

func (r *ConnectionRequestRepository) Review(ctx context.Context, id, reviewerID uuid.UUID, status domain.RequestStatus) (*domain.ConnectionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok || req.ToUserID != reviewerID || req.Status != domain.StatusInterested {
		return nil, domain.ErrRequestNotFound
	}
	req.Status = status
	req.UpdatedAt = r.clock()
	c := *req
	return &c, nil
}

func (r *ConnectionRequestRepository) ListReceived(ctx context.Context, userID uuid.UUID, status domain.RequestStatus) ([]*domain.ConnectionRequest, error) {
	out := r.filter(func(req *domain.ConnectionRequest) bool {
		return req.ToUserID == userID && req.Status == status
	})
	// newest first; equal timestamps keep ascending id order
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ConnectionRequestRepository) ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.RequestStatus) ([]*domain.ConnectionRequest, error) {
	return r.filter(func(req *domain.ConnectionRequest) bool {
		return req.HasUser(userID) && req.Status == status
	}), nil
}

func (r *ConnectionRequestRepository) RelatedUserIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, req := range r.filter(func(req *domain.ConnectionRequest) bool { return req.HasUser(userID) }) {
		other, _ := req.GetOtherUserID(userID)
		ids = append(ids, other)
	}
	return ids, nil
}

func (r *ConnectionRequestRepository) ListCreatedBetween(ctx context.Context, status domain.RequestStatus, from, to time.Time) ([]*domain.ConnectionRequest, error) {
	return r.filter(func(req *domain.ConnectionRequest) bool {
		return req.Status == status && !req.CreatedAt.Before(from) && req.CreatedAt.Before(to)
	}), nil
}

func (r *ConnectionRequestRepository) filter(keep func(*domain.ConnectionRequest) bool) []*domain.ConnectionRequest {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.ConnectionRequest, 0)
	for _, req := range r.requests {
		if keep(req) {
			c := *req
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
