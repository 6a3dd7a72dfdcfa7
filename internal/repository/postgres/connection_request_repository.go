package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type connectionRequestRow struct {
	ID         uuid.UUID `db:"id"`
	FromUserID uuid.UUID `db:"from_user_id"`
	ToUserID   uuid.UUID `db:"to_user_id"`
	Status     string    `db:"status"`
	PairKey    string    `db:"pair_key"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *connectionRequestRow) toDomain() *domain.ConnectionRequest {
	return &domain.ConnectionRequest{
		ID:         r.ID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Status:     domain.RequestStatus(r.Status),
		PairKey:    r.PairKey,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type connectionRequestRepository struct {
	db *sqlx.DB
}

func NewConnectionRequestRepository(db *sqlx.DB) repository.ConnectionRequestRepository {
	return &connectionRequestRepository{db: db}
}

func (r *connectionRequestRepository) Create(ctx context.Context, req *domain.ConnectionRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	// pair_key carries the unique index; a concurrent send from the other side loses here
	req.PairKey = domain.PairKey(req.FromUserID, req.ToUserID)

	query := `
		INSERT INTO connection_requests (id, from_user_id, to_user_id, status, pair_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, req.ID, req.FromUserID, req.ToUserID, string(req.Status), req.PairKey).
		Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRequest
		}
		return fmt.Errorf("insert connection request: %w", err)
	}
	return nil
}

func (r *connectionRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConnectionRequest, error) {
	var row connectionRequestRow
	query := `SELECT * FROM connection_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("get connection request: %w", err)
	}
	return row.toDomain(), nil
}

func (r *connectionRequestRepository) ExistsForPair(ctx context.Context, pairKey string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM connection_requests WHERE pair_key = $1)`
	if err := r.db.GetContext(ctx, &exists, query, pairKey); err != nil {
		return false, fmt.Errorf("check pair: %w", err)
	}
	return exists, nil
}

func (r *connectionRequestRepository) GetByPairKey(ctx context.Context, pairKey string) (*domain.ConnectionRequest, error) {
	var row connectionRequestRow
	query := `SELECT * FROM connection_requests WHERE pair_key = $1`
	if err := r.db.GetContext(ctx, &row, query, pairKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("get connection request by pair: %w", err)
	}
	return row.toDomain(), nil
}

func (r *connectionRequestRepository) Review(ctx context.Context, id, reviewerID uuid.UUID, status domain.RequestStatus) (*domain.ConnectionRequest, error) {
	var row connectionRequestRow
	query := `
		UPDATE connection_requests
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND to_user_id = $3 AND status = $4
		RETURNING *
	`
	err := r.db.GetContext(ctx, &row, query, string(status), id, reviewerID, string(domain.StatusInterested))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("review connection request: %w", err)
	}
	return row.toDomain(), nil
}

func (r *connectionRequestRepository) ListReceived(ctx context.Context, userID uuid.UUID, status domain.RequestStatus) ([]*domain.ConnectionRequest, error) {
	var rows []connectionRequestRow
	query := `
		SELECT * FROM connection_requests
		WHERE to_user_id = $1 AND status = $2
		ORDER BY created_at DESC, id
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID, string(status)); err != nil {
		return nil, fmt.Errorf("list received requests: %w", err)
	}
	return toConnectionRequests(rows), nil
}

func (r *connectionRequestRepository) ListByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.RequestStatus) ([]*domain.ConnectionRequest, error) {
	var rows []connectionRequestRow
	query := `
		SELECT * FROM connection_requests
		WHERE (from_user_id = $1 OR to_user_id = $1) AND status = $2
		ORDER BY created_at, id
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID, string(status)); err != nil {
		return nil, fmt.Errorf("list requests by status: %w", err)
	}
	return toConnectionRequests(rows), nil
}

func (r *connectionRequestRepository) RelatedUserIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `
		SELECT to_user_id FROM connection_requests WHERE from_user_id = $1
		UNION
		SELECT from_user_id FROM connection_requests WHERE to_user_id = $1
	`
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list related users: %w", err)
	}
	return ids, nil
}

func (r *connectionRequestRepository) ListCreatedBetween(ctx context.Context, status domain.RequestStatus, from, to time.Time) ([]*domain.ConnectionRequest, error) {
	var rows []connectionRequestRow
	query := `
		SELECT * FROM connection_requests
		WHERE status = $1 AND created_at >= $2 AND created_at < $3
		ORDER BY to_user_id, created_at
	`
	if err := r.db.SelectContext(ctx, &rows, query, string(status), from, to); err != nil {
		return nil, fmt.Errorf("list requests created between: %w", err)
	}
	return toConnectionRequests(rows), nil
}

func toConnectionRequests(rows []connectionRequestRow) []*domain.ConnectionRequest {
	out := make([]*domain.ConnectionRequest, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}
