package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, PairKey(a, b), PairKey(b, a))
	assert.NotEqual(t, PairKey(a, b), PairKey(a, uuid.New()))
}

func TestRequestStatusGates(t *testing.T) {
	assert.True(t, StatusInterested.IsSendStatus())
	assert.True(t, StatusIgnored.IsSendStatus())
	assert.False(t, StatusAccepted.IsSendStatus())
	assert.False(t, RequestStatus("maybe").IsSendStatus())

	assert.True(t, StatusAccepted.IsReviewStatus())
	assert.True(t, StatusRejected.IsReviewStatus())
	assert.False(t, StatusInterested.IsReviewStatus())
	assert.False(t, StatusIgnored.IsReviewStatus())
}

func TestGetOtherUserID(t *testing.T) {
	from, to := uuid.New(), uuid.New()
	req := &ConnectionRequest{FromUserID: from, ToUserID: to}

	other, ok := req.GetOtherUserID(from)
	assert.True(t, ok)
	assert.Equal(t, to, other)

	other, ok = req.GetOtherUserID(to)
	assert.True(t, ok)
	assert.Equal(t, from, other)

	_, ok = req.GetOtherUserID(uuid.New())
	assert.False(t, ok)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "dev@example.com", NormalizeEmail("  Dev@Example.COM "))
}

func TestIsStrongPassword(t *testing.T) {
	tests := map[string]bool{
		"":            false,
		"Ab1!":        false,
		"alllower1!":  false,
		"ALLUPPER1!":  false,
		"NoDigits!!":  false,
		"NoSymbol12":  false,
		"Str0ng!Pass": true,
		"Pässw0rd#":   true,
	}
	for password, want := range tests {
		assert.Equal(t, want, IsStrongPassword(password), password)
	}
}
