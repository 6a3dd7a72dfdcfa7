package postgres

import (
	"database/sql"
	"errors"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// uuidStrings feeds uuid slices to "= ANY($n)" through pq.Array.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func genderPtr(v sql.NullString) *domain.Gender {
	if !v.Valid {
		return nil
	}
	g := domain.Gender(v.String)
	return &g
}

func nullGender(g *domain.Gender) sql.NullString {
	if g == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*g), Valid: true}
}
