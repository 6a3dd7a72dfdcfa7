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
	"github.com/lib/pq"
)

const publicUserColumns = `id, first_name, last_name, age, gender, photo_url, about, skills`

type userRow struct {
	ID           uuid.UUID      `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	Age          sql.NullInt64  `db:"age"`
	Gender       sql.NullString `db:"gender"`
	PhotoURL     string         `db:"photo_url"`
	About        string         `db:"about"`
	Skills       pq.StringArray `db:"skills"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Age:          intPtr(r.Age),
		Gender:       genderPtr(r.Gender),
		PhotoURL:     r.PhotoURL,
		About:        r.About,
		Skills:       []string(r.Skills),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type publicUserRow struct {
	ID        uuid.UUID      `db:"id"`
	FirstName string         `db:"first_name"`
	LastName  string         `db:"last_name"`
	Age       sql.NullInt64  `db:"age"`
	Gender    sql.NullString `db:"gender"`
	PhotoURL  string         `db:"photo_url"`
	About     string         `db:"about"`
	Skills    pq.StringArray `db:"skills"`
}

func (r *publicUserRow) toDomain() *domain.PublicUser {
	return &domain.PublicUser{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Age:       intPtr(r.Age),
		Gender:    genderPtr(r.Gender),
		PhotoURL:  r.PhotoURL,
		About:     r.About,
		Skills:    []string(r.Skills),
	}
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, age, gender, photo_url, about, skills)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		nullInt(user.Age), nullGender(user.Gender), user.PhotoURL, user.About, pq.Array(user.Skills),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var row userRow
	query := `SELECT * FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	query := `SELECT * FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &row, query, domain.NormalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return row.toDomain(), nil
}

func (r *userRepository) GetPublicByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.PublicUser, error) {
	if len(ids) == 0 {
		return []*domain.PublicUser{}, nil
	}
	var rows []publicUserRow
	query := `SELECT ` + publicUserColumns + ` FROM users WHERE id = ANY($1::uuid[]) ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(uuidStrings(ids))); err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	return toPublicUsers(rows), nil
}

func (r *userRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, age = $3, gender = $4,
		    photo_url = $5, about = $6, skills = $7,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $8
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		user.FirstName, user.LastName, nullInt(user.Age), nullGender(user.Gender),
		user.PhotoURL, user.About, pq.Array(user.Skills),
		user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ListDiscoverable(ctx context.Context, exclude []uuid.UUID, limit, offset int) ([]*domain.PublicUser, error) {
	var rows []publicUserRow
	query := `
		SELECT ` + publicUserColumns + `
		FROM users
		WHERE NOT (id = ANY($1::uuid[]))
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(uuidStrings(exclude)), limit, offset); err != nil {
		return nil, fmt.Errorf("list discoverable users: %w", err)
	}
	return toPublicUsers(rows), nil
}

func toPublicUsers(rows []publicUserRow) []*domain.PublicUser {
	users := make([]*domain.PublicUser, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toDomain())
	}
	return users
}
