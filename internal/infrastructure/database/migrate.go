package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is idempotent; it runs on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL DEFAULT '',
		age           INTEGER CHECK (age IS NULL OR age >= 18),
		gender        TEXT CHECK (gender IS NULL OR gender IN ('male', 'female', 'other')),
		photo_url     TEXT NOT NULL DEFAULT '',
		about         TEXT NOT NULL DEFAULT '',
		skills        TEXT[] NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users (created_at, id)`,
	`CREATE TABLE IF NOT EXISTS connection_requests (
		id           UUID PRIMARY KEY,
		from_user_id UUID NOT NULL REFERENCES users (id),
		to_user_id   UUID NOT NULL REFERENCES users (id),
		status       TEXT NOT NULL CHECK (status IN ('interested', 'ignored', 'accepted', 'rejected')),
		pair_key     TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT connection_requests_not_self CHECK (from_user_id <> to_user_id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_connection_requests_pair_key ON connection_requests (pair_key)`,
	`CREATE INDEX IF NOT EXISTS idx_connection_requests_from ON connection_requests (from_user_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_connection_requests_to ON connection_requests (to_user_id, status)`,
}

// Migrate creates the relational schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
