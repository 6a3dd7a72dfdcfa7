package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/google/uuid"
)

type AuthUseCase struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtSecret   string
	tokenTTL    time.Duration
	log         *slog.Logger
	now         func() time.Time
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	log *slog.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		log:         log,
		now:         time.Now,
	}
}

// SignupRequest represents a new account
type SignupRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2,max=50"`
	LastName  string `json:"last_name" binding:"omitempty,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,strongpassword"`
}

// LoginRequest represents email/password credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a password change by a signed-in user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,strongpassword"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

func (uc *AuthUseCase) Signup(ctx context.Context, req *SignupRequest) (*domain.User, error) {
	firstName := strings.TrimSpace(req.FirstName)
	email := domain.NormalizeEmail(req.Email)
	if firstName == "" || email == "" {
		return nil, fmt.Errorf("%w: first name and email are required", domain.ErrInvalidInput)
	}
	if !domain.IsStrongPassword(req.Password) {
		return nil, fmt.Errorf("%w: password is not strong enough", domain.ErrInvalidInput)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     strings.TrimSpace(req.LastName),
		PhotoURL:     domain.DefaultPhotoURL,
		About:        domain.DefaultAbout,
		Skills:       []string{},
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.log.Info("user signed up", "user_id", user.ID)
	return user, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, domain.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := IssueToken(uc.jwtSecret, user.ID, uc.tokenTTL, uc.now())
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// ResolveToken maps a session token to the user it was issued for.
// Every failure is reported as domain.ErrUnauthenticated.
func (uc *AuthUseCase) ResolveToken(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, domain.ErrUnauthenticated
	}

	userID, _, err := ParseToken(uc.jwtSecret, token)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthenticated
	}

	revoked, err := uc.sessionRepo.IsRevoked(ctx, hashToken(token))
	if err != nil {
		uc.log.Error("failed to check token revocation", "error", err)
		return uuid.Nil, domain.ErrUnauthenticated
	}
	if revoked {
		return uuid.Nil, domain.ErrUnauthenticated
	}

	exists, err := uc.userRepo.Exists(ctx, userID)
	if err != nil || !exists {
		return uuid.Nil, domain.ErrUnauthenticated
	}

	return userID, nil
}

// Logout revokes the token for the rest of its lifetime. Invalid tokens are ignored.
func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_, expiresAt, err := ParseToken(uc.jwtSecret, token)
	if err != nil {
		return nil
	}
	return uc.sessionRepo.Revoke(ctx, hashToken(token), expiresAt.Sub(uc.now()))
}

func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := CheckPassword(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}
	if !domain.IsStrongPassword(req.NewPassword) {
		return fmt.Errorf("%w: password is not strong enough", domain.ErrInvalidInput)
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := uc.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	uc.log.Info("password changed", "user_id", userID)
	return nil
}
