package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IssueToken signs an HS256 token for userID that expires after ttl.
func IssueToken(secret string, userID uuid.UUID, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies the signature and expiry and returns the subject and expiry.
func ParseToken(secret, tokenString string) (uuid.UUID, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrUnauthenticated
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, time.Time{}, domain.ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, time.Time{}, domain.ErrUnauthenticated
	}

	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, time.Time{}, domain.ErrUnauthenticated
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, time.Time{}, domain.ErrUnauthenticated
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return uuid.Nil, time.Time{}, domain.ErrUnauthenticated
	}

	return userID, exp.Time, nil
}

// hashToken is the key a revoked token is stored under.
func hashToken(token string) string {
	h := sha256.New()
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}
