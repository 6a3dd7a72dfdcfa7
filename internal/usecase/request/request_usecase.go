package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/infrastructure/metrics"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/notification"
	"github.com/google/uuid"
)

// Enqueuer accepts notifications for background delivery.
type Enqueuer interface {
	Enqueue(event notification.Event)
}

type RequestUseCase struct {
	requestRepo repository.ConnectionRequestRepository
	userRepo    repository.UserRepository
	notifier    Enqueuer
	log         *slog.Logger
}

func NewRequestUseCase(
	requestRepo repository.ConnectionRequestRepository,
	userRepo repository.UserRepository,
	notifier Enqueuer,
	log *slog.Logger,
) *RequestUseCase {
	return &RequestUseCase{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		log:         log,
	}
}

// ReceivedRequest is a pending request together with who sent it.
type ReceivedRequest struct {
	ID        uuid.UUID            `json:"id"`
	Status    domain.RequestStatus `json:"status"`
	From      *domain.PublicUser   `json:"from_user"`
	CreatedAt time.Time            `json:"created_at"`
}

// Send creates a request from initiator to target.
func (uc *RequestUseCase) Send(ctx context.Context, initiatorID, targetID uuid.UUID, status domain.RequestStatus) (*domain.ConnectionRequest, error) {
	if !status.IsSendStatus() {
		return nil, domain.ErrInvalidStatus
	}

	exists, err := uc.userRepo.Exists(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up target: %w", err)
	}
	if !exists {
		return nil, domain.ErrTargetNotFound
	}

	if initiatorID == targetID {
		return nil, domain.ErrSelfRequest
	}

	// Fast path; the unique index on pair_key settles concurrent sends.
	related, err := uc.requestRepo.ExistsForPair(ctx, domain.PairKey(initiatorID, targetID))
	if err != nil {
		return nil, fmt.Errorf("failed to check existing request: %w", err)
	}
	if related {
		return nil, domain.ErrDuplicateRequest
	}

	req := &domain.ConnectionRequest{
		FromUserID: initiatorID,
		ToUserID:   targetID,
		Status:     status,
	}
	if err := uc.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	metrics.RecordConnectionRequest(string(status))
	uc.log.Info("connection request sent",
		"request_id", req.ID, "from_user_id", initiatorID, "to_user_id", targetID, "status", status)

	if status == domain.StatusInterested {
		uc.notify(ctx, notification.KindRequestSent, targetID, initiatorID)
	}

	return req, nil
}

// Review lets the recipient of an interested request accept or reject it.
func (uc *RequestUseCase) Review(ctx context.Context, reviewerID, requestID uuid.UUID, decision domain.RequestStatus) (*domain.ConnectionRequest, error) {
	if !decision.IsReviewStatus() {
		return nil, domain.ErrInvalidStatus
	}

	req, err := uc.requestRepo.Review(ctx, requestID, reviewerID, decision)
	if err != nil {
		return nil, err
	}

	metrics.RecordReview(string(decision))
	uc.log.Info("connection request reviewed",
		"request_id", req.ID, "reviewer_id", reviewerID, "decision", decision)

	if decision == domain.StatusAccepted {
		uc.notify(ctx, notification.KindRequestAccepted, req.FromUserID, reviewerID)
	}

	return req, nil
}

// ExclusionSet returns every user who has a request with userID in either direction, any status.
func (uc *RequestUseCase) ExclusionSet(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := uc.requestRepo.RelatedUserIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load related users: %w", err)
	}
	return ids, nil
}

// ConnectionsOf resolves accepted requests to the other party. Users that no longer exist are skipped.
func (uc *RequestUseCase) ConnectionsOf(ctx context.Context, userID uuid.UUID) ([]*domain.PublicUser, error) {
	accepted, err := uc.requestRepo.ListByUserAndStatus(ctx, userID, domain.StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to load connections: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(accepted))
	for _, req := range accepted {
		if other, ok := req.GetOtherUserID(userID); ok {
			ids = append(ids, other)
		}
	}
	if len(ids) == 0 {
		return []*domain.PublicUser{}, nil
	}

	users, err := uc.userRepo.GetPublicByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection profiles: %w", err)
	}
	return orderByIDs(users, ids), nil
}

// IsConnected reports whether a and b share an accepted request.
func (uc *RequestUseCase) IsConnected(ctx context.Context, a, b uuid.UUID) (bool, error) {
	req, err := uc.requestRepo.GetByPairKey(ctx, domain.PairKey(a, b))
	if errors.Is(err, domain.ErrRequestNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load connection: %w", err)
	}
	return req.Status == domain.StatusAccepted, nil
}

// ListReceived returns interested requests addressed to userID, newest first.
func (uc *RequestUseCase) ListReceived(ctx context.Context, userID uuid.UUID) ([]*ReceivedRequest, error) {
	pending, err := uc.requestRepo.ListReceived(ctx, userID, domain.StatusInterested)
	if err != nil {
		return nil, fmt.Errorf("failed to load received requests: %w", err)
	}

	senderIDs := make([]uuid.UUID, 0, len(pending))
	for _, req := range pending {
		senderIDs = append(senderIDs, req.FromUserID)
	}
	senders, err := uc.userRepo.GetPublicByIDs(ctx, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load senders: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.PublicUser, len(senders))
	for _, s := range senders {
		byID[s.ID] = s
	}

	out := make([]*ReceivedRequest, 0, len(pending))
	for _, req := range pending {
		from, ok := byID[req.FromUserID]
		if !ok {
			continue
		}
		out = append(out, &ReceivedRequest{
			ID:        req.ID,
			Status:    req.Status,
			From:      from,
			CreatedAt: req.CreatedAt,
		})
	}
	return out, nil
}

// notify looks up both parties and hands the event to the dispatcher.
// Lookup failures are logged; the primary operation has already succeeded.
func (uc *RequestUseCase) notify(ctx context.Context, kind notification.Kind, toID, fromID uuid.UUID) {
	to, err := uc.userRepo.GetByID(ctx, toID)
	if err != nil {
		metrics.RecordNotification(string(kind), "failed")
		uc.log.Warn("notification recipient lookup failed", "kind", kind, "user_id", toID, "error", err)
		return
	}
	from, err := uc.userRepo.GetByID(ctx, fromID)
	if err != nil {
		metrics.RecordNotification(string(kind), "failed")
		uc.log.Warn("notification sender lookup failed", "kind", kind, "user_id", fromID, "error", err)
		return
	}

	uc.notifier.Enqueue(notification.Event{
		Kind: kind,
		To:   to,
		From: []*domain.PublicUser{from.Public()},
	})
}

func orderByIDs(users []*domain.PublicUser, ids []uuid.UUID) []*domain.PublicUser {
	byID := make(map[uuid.UUID]*domain.PublicUser, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]*domain.PublicUser, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out
}
