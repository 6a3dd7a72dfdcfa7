package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	DefaultPhotoURL = "https://as1.ftcdn.net/jpg/11/28/72/58/1000_F_1128725808_hckpy1JZOnVoTR0jMrHk8IMjctH69C3I.jpg"
	DefaultAbout    = "This is default about user"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Age          *int      `json:"age"`
	Gender       *Gender   `json:"gender"`
	PhotoURL     string    `json:"photo_url"`
	About        string    `json:"about"`
	Skills       []string  `json:"skills"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the projection other users are allowed to see.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       *int      `json:"age"`
	Gender    *Gender   `json:"gender"`
	PhotoURL  string    `json:"photo_url"`
	About     string    `json:"about"`
	Skills    []string  `json:"skills"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
		Gender:    u.Gender,
		PhotoURL:  u.PhotoURL,
		About:     u.About,
		Skills:    u.Skills,
	}
}

// NormalizeEmail lower-cases and trims an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsStrongPassword requires at least 8 characters with a lower-case letter,
// an upper-case letter, a digit and a symbol.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
