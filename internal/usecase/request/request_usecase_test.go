package request

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/repository/memory"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/notification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recordingEnqueuer) Enqueue(event notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

type fixture struct {
	uc       *RequestUseCase
	users    *memory.UserRepository
	requests *memory.ConnectionRequestRepository
	sent     *recordingEnqueuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memory.NewUserRepository()
	requests := memory.NewConnectionRequestRepository()
	sent := &recordingEnqueuer{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		uc:       NewRequestUseCase(requests, users, sent, log),
		users:    users,
		requests: requests,
		sent:     sent,
	}
}

func (f *fixture) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u := &domain.User{Email: name + "@example.com", FirstName: name}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func TestSend_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	tests := []struct {
		name    string
		from    uuid.UUID
		to      uuid.UUID
		status  domain.RequestStatus
		wantErr error
	}{
		{"accepted is not a send status", a, b, domain.StatusAccepted, domain.ErrInvalidStatus},
		{"rejected is not a send status", a, b, domain.StatusRejected, domain.ErrInvalidStatus},
		{"garbage status", a, b, "maybe", domain.ErrInvalidStatus},
		{"unknown target", a, uuid.New(), domain.StatusInterested, domain.ErrTargetNotFound},
		{"self request", a, a, domain.StatusInterested, domain.ErrSelfRequest},
		{"self ignore", a, a, domain.StatusIgnored, domain.ErrSelfRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Send(ctx, tt.from, tt.to, tt.status)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSend_DuplicateEitherDirection(t *testing.T) {
	ctx := context.Background()

	for _, status := range []domain.RequestStatus{domain.StatusInterested, domain.StatusIgnored} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			a := f.user(t, "a")
			b := f.user(t, "b")

			req, err := f.uc.Send(ctx, a, b, status)
			require.NoError(t, err)
			assert.Equal(t, a, req.FromUserID)
			assert.Equal(t, b, req.ToUserID)
			assert.Equal(t, status, req.Status)
			assert.NotEqual(t, uuid.Nil, req.ID)
			assert.False(t, req.CreatedAt.IsZero())

			_, err = f.uc.Send(ctx, a, b, domain.StatusInterested)
			assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
			_, err = f.uc.Send(ctx, b, a, domain.StatusInterested)
			assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
			_, err = f.uc.Send(ctx, b, a, domain.StatusIgnored)
			assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
		})
	}
}

func TestSend_ConcurrentOppositeDirections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := a, b
			if i%2 == 1 {
				from, to = b, a
			}
			_, errs[i] = f.uc.Send(ctx, from, to, domain.StatusInterested)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	}
	assert.Equal(t, 1, succeeded)
}

func TestSend_NotifiesOnlyInterested(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")

	_, err := f.uc.Send(ctx, a, b, domain.StatusInterested)
	require.NoError(t, err)
	_, err = f.uc.Send(ctx, a, c, domain.StatusIgnored)
	require.NoError(t, err)

	require.Len(t, f.sent.events, 1)
	ev := f.sent.events[0]
	assert.Equal(t, notification.KindRequestSent, ev.Kind)
	assert.Equal(t, b, ev.To.ID)
	require.Len(t, ev.From, 1)
	assert.Equal(t, a, ev.From[0].ID)
}

func TestReview_AcceptAndReject(t *testing.T) {
	ctx := context.Background()

	t.Run("accepted connects both sides", func(t *testing.T) {
		f := newFixture(t)
		a := f.user(t, "a")
		b := f.user(t, "b")

		req, err := f.uc.Send(ctx, a, b, domain.StatusInterested)
		require.NoError(t, err)

		reviewed, err := f.uc.Review(ctx, b, req.ID, domain.StatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, req.ID, reviewed.ID)
		assert.Equal(t, domain.StatusAccepted, reviewed.Status)

		assert.Equal(t, []uuid.UUID{b}, ids(t, f, a))
		assert.Equal(t, []uuid.UUID{a}, ids(t, f, b))

		connected, err := f.uc.IsConnected(ctx, b, a)
		require.NoError(t, err)
		assert.True(t, connected)

		require.Len(t, f.sent.events, 2)
		accepted := f.sent.events[1]
		assert.Equal(t, notification.KindRequestAccepted, accepted.Kind)
		assert.Equal(t, a, accepted.To.ID)
		assert.Equal(t, b, accepted.From[0].ID)
	})

	t.Run("rejected connects nobody", func(t *testing.T) {
		f := newFixture(t)
		a := f.user(t, "a")
		b := f.user(t, "b")

		req, err := f.uc.Send(ctx, a, b, domain.StatusInterested)
		require.NoError(t, err)

		reviewed, err := f.uc.Review(ctx, b, req.ID, domain.StatusRejected)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, reviewed.Status)

		assert.Empty(t, ids(t, f, a))
		assert.Empty(t, ids(t, f, b))
		assert.Len(t, f.sent.events, 1)
	})
}

func TestReview_NotFoundCases(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")

	pending, err := f.uc.Send(ctx, a, b, domain.StatusInterested)
	require.NoError(t, err)
	ignored, err := f.uc.Send(ctx, a, c, domain.StatusIgnored)
	require.NoError(t, err)

	_, err = f.uc.Review(ctx, b, pending.ID, domain.StatusInterested)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.uc.Review(ctx, b, uuid.New(), domain.StatusAccepted)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound, "nonexistent")

	_, err = f.uc.Review(ctx, a, pending.ID, domain.StatusAccepted)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound, "sender cannot review")

	_, err = f.uc.Review(ctx, c, pending.ID, domain.StatusAccepted)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound, "outsider cannot review")

	_, err = f.uc.Review(ctx, c, ignored.ID, domain.StatusAccepted)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound, "ignored is terminal")

	_, err = f.uc.Review(ctx, b, pending.ID, domain.StatusRejected)
	require.NoError(t, err)

	for _, decision := range []domain.RequestStatus{domain.StatusAccepted, domain.StatusRejected} {
		_, err = f.uc.Review(ctx, b, pending.ID, decision)
		assert.ErrorIs(t, err, domain.ErrRequestNotFound, "second review with %s", decision)
	}

	stored, err := f.requests.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, stored.Status)
}

func TestReview_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	req, err := f.uc.Send(ctx, a, b, domain.StatusInterested)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decision := domain.StatusAccepted
			if i%2 == 1 {
				decision = domain.StatusRejected
			}
			_, errs[i] = f.uc.Review(ctx, b, req.ID, decision)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
	}
	assert.Equal(t, 1, succeeded)
}

func TestExclusionSet_AnyStatusEitherDirection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")
	d := f.user(t, "d")
	e := f.user(t, "e")

	_, err := f.uc.Send(ctx, a, b, domain.StatusInterested)
	require.NoError(t, err)
	_, err = f.uc.Send(ctx, c, a, domain.StatusIgnored)
	require.NoError(t, err)
	req, err := f.uc.Send(ctx, d, a, domain.StatusInterested)
	require.NoError(t, err)
	_, err = f.uc.Review(ctx, a, req.ID, domain.StatusRejected)
	require.NoError(t, err)

	set, err := f.uc.ExclusionSet(ctx, a)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{b, c, d}, set)
	assert.NotContains(t, set, e)

	set, err = f.uc.ExclusionSet(ctx, e)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestConnectionsOf_SkipsDanglingUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")

	for _, other := range []uuid.UUID{b, c} {
		req, err := f.uc.Send(ctx, other, a, domain.StatusInterested)
		require.NoError(t, err)
		_, err = f.uc.Review(ctx, a, req.ID, domain.StatusAccepted)
		require.NoError(t, err)
	}

	f.users.Delete(c)

	conns, err := f.uc.ConnectionsOf(ctx, a)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, b, conns[0].ID)
}

func TestListReceived(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")
	d := f.user(t, "d")

	_, err := f.uc.Send(ctx, b, a, domain.StatusInterested)
	require.NoError(t, err)
	_, err = f.uc.Send(ctx, c, a, domain.StatusIgnored)
	require.NoError(t, err)
	reviewed, err := f.uc.Send(ctx, d, a, domain.StatusInterested)
	require.NoError(t, err)
	_, err = f.uc.Review(ctx, a, reviewed.ID, domain.StatusAccepted)
	require.NoError(t, err)

	received, err := f.uc.ListReceived(ctx, a)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, b, received[0].From.ID)
	assert.Equal(t, domain.StatusInterested, received[0].Status)

	received, err = f.uc.ListReceived(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, received)
}

func ids(t *testing.T, f *fixture, userID uuid.UUID) []uuid.UUID {
	t.Helper()
	conns, err := f.uc.ConnectionsOf(context.Background(), userID)
	require.NoError(t, err)
	out := make([]uuid.UUID, 0, len(conns))
	for _, c := range conns {
		out = append(out, c.ID)
	}
	return out
}

func TestIsConnected(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		status   domain.RequestStatus
		decision domain.RequestStatus
		want     bool
	}{
		{"no request", "", "", false},
		{"pending", domain.StatusInterested, "", false},
		{"ignored", domain.StatusIgnored, "", false},
		{"rejected", domain.StatusInterested, domain.StatusRejected, false},
		{"accepted", domain.StatusInterested, domain.StatusAccepted, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.user(t, "a")
			b := f.user(t, "b")

			if tt.status != "" {
				req, err := f.uc.Send(ctx, a, b, tt.status)
				require.NoError(t, err)
				if tt.decision != "" {
					_, err = f.uc.Review(ctx, b, req.ID, tt.decision)
					require.NoError(t, err)
				}
			}

			for _, pair := range [][2]uuid.UUID{{a, b}, {b, a}} {
				connected, err := f.uc.IsConnected(ctx, pair[0], pair[1])
				require.NoError(t, err)
				assert.Equal(t, tt.want, connected)
			}
		})
	}
}

func TestListReceived_EqualTimestampsAreOrdered(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	f.requests.SetClock(func() time.Time { return at })

	target := f.user(t, "target")
	for _, name := range []string{"s1", "s2", "s3", "s4", "s5"} {
		_, err := f.uc.Send(ctx, f.user(t, name), target, domain.StatusInterested)
		require.NoError(t, err)
	}

	first, err := f.uc.ListReceived(ctx, target)
	require.NoError(t, err)
	require.Len(t, first, 5)
	assert.True(t, sort.SliceIsSorted(first, func(i, j int) bool {
		return first[i].ID.String() < first[j].ID.String()
	}))

	for i := 0; i < 20; i++ {
		again, err := f.uc.ListReceived(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
