package domain

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Chat struct {
	ID           string      `json:"id"`
	PairKey      string      `json:"-"`
	Participants []uuid.UUID `json:"participants"`
	Messages     []Message   `json:"messages"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
