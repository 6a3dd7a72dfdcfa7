package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	StatusInterested RequestStatus = "interested"
	StatusIgnored    RequestStatus = "ignored"
	StatusAccepted   RequestStatus = "accepted"
	StatusRejected   RequestStatus = "rejected"
)

// IsSendStatus reports whether a request may be created with this status.
func (s RequestStatus) IsSendStatus() bool {
	return s == StatusInterested || s == StatusIgnored
}

// IsReviewStatus reports whether a recipient may move an interested request to this status.
func (s RequestStatus) IsReviewStatus() bool {
	return s == StatusAccepted || s == StatusRejected
}

type ConnectionRequest struct {
	ID         uuid.UUID     `json:"id"`
	FromUserID uuid.UUID     `json:"from_user_id"`
	ToUserID   uuid.UUID     `json:"to_user_id"`
	Status     RequestStatus `json:"status"`
	PairKey    string        `json:"-"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (r *ConnectionRequest) HasUser(userID uuid.UUID) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}

func (r *ConnectionRequest) GetOtherUserID(userID uuid.UUID) (uuid.UUID, bool) {
	if r.FromUserID == userID {
		return r.ToUserID, true
	}
	if r.ToUserID == userID {
		return r.FromUserID, true
	}
	return uuid.Nil, false
}

// PairKey returns the order-independent key of two users: both ids sorted and joined by "_".
// It doubles as the chat room name.
func PairKey(a, b uuid.UUID) string {
	ids := []string{a.String(), b.String()}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}
