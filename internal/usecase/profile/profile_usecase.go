package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/repository"
	"github.com/google/uuid"
)

const maxSkills = 20

type ProfileUseCase struct {
	userRepo repository.UserRepository
	log      *slog.Logger
}

func NewProfileUseCase(userRepo repository.UserRepository, log *slog.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		userRepo: userRepo,
		log:      log,
	}
}

// EditProfileRequest lists the only fields a user may change on their profile.
// Email and password are not editable here.
type EditProfileRequest struct {
	FirstName *string        `json:"first_name" binding:"omitempty,min=2,max=50"`
	LastName  *string        `json:"last_name" binding:"omitempty,max=50"`
	PhotoURL  *string        `json:"photo_url" binding:"omitempty,url"`
	About     *string        `json:"about" binding:"omitempty,max=500"`
	Age       *int           `json:"age" binding:"omitempty,min=18,max=120"`
	Gender    *domain.Gender `json:"gender" binding:"omitempty,oneof=male female other"`
	Skills    *[]string      `json:"skills" binding:"omitempty,max=20,dive,min=1,max=50"`
}

func (r *EditProfileRequest) empty() bool {
	return r.FirstName == nil && r.LastName == nil && r.PhotoURL == nil &&
		r.About == nil && r.Age == nil && r.Gender == nil && r.Skills == nil
}

// View returns the caller's own profile, email included.
func (uc *ProfileUseCase) View(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// GetPublic returns what any signed-in user may see about userID.
func (uc *ProfileUseCase) GetPublic(ctx context.Context, userID uuid.UUID) (*domain.PublicUser, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (uc *ProfileUseCase) Edit(ctx context.Context, userID uuid.UUID, req *EditProfileRequest) (*domain.User, error) {
	if req.empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		if name == "" {
			return nil, fmt.Errorf("%w: first name cannot be blank", domain.ErrInvalidInput)
		}
		user.FirstName = name
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.PhotoURL != nil {
		user.PhotoURL = strings.TrimSpace(*req.PhotoURL)
	}
	if req.About != nil {
		user.About = strings.TrimSpace(*req.About)
	}
	if req.Age != nil {
		if *req.Age < 18 {
			return nil, fmt.Errorf("%w: age must be at least 18", domain.ErrInvalidInput)
		}
		age := *req.Age
		user.Age = &age
	}
	if req.Gender != nil {
		if !req.Gender.Valid() {
			return nil, fmt.Errorf("%w: unknown gender %q", domain.ErrInvalidInput, *req.Gender)
		}
		gender := *req.Gender
		user.Gender = &gender
	}
	if req.Skills != nil {
		skills, err := normalizeSkills(*req.Skills)
		if err != nil {
			return nil, err
		}
		user.Skills = skills
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	uc.log.Info("profile updated", "user_id", userID)
	return user, nil
}

// normalizeSkills trims entries and drops blanks and case-insensitive duplicates.
func normalizeSkills(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	if len(out) > maxSkills {
		return nil, fmt.Errorf("%w: at most %d skills", domain.ErrInvalidInput, maxSkills)
	}
	return out, nil
}
