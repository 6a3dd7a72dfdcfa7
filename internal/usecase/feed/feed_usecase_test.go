package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/gdugdh24/devmatch-backend/internal/domain"
	"github.com/gdugdh24/devmatch-backend/internal/repository/memory"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/notification"
	"github.com/gdugdh24/devmatch-backend/internal/usecase/request"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopEnqueuer struct{}

func (noopEnqueuer) Enqueue(notification.Event) {}

type env struct {
	users    *memory.UserRepository
	requests *request.RequestUseCase
	feed     *FeedUseCase
}

func newEnv() *env {
	users := memory.NewUserRepository()
	requests := request.NewRequestUseCase(
		memory.NewConnectionRequestRepository(),
		users,
		noopEnqueuer{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return &env{
		users:    users,
		requests: requests,
		feed:     NewFeedUseCase(users, requests, DefaultPageSize, MaxPageSize),
	}
}

func (e *env) createUsers(t *testing.T, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		u := &domain.User{Email: fmt.Sprintf("user%d-%s@example.com", i, uuid.NewString()), FirstName: fmt.Sprintf("user%d", i)}
		require.NoError(t, e.users.Create(context.Background(), u))
		ids = append(ids, u.ID)
	}
	return ids
}

func feedIDs(t *testing.T, e *env, viewer uuid.UUID, page, size int) []uuid.UUID {
	t.Helper()
	users, err := e.feed.Feed(context.Background(), viewer, page, size)
	require.NoError(t, err)
	out := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestFeed_NeverIncludesViewer(t *testing.T) {
	e := newEnv()
	ids := e.createUsers(t, 3)

	got := feedIDs(t, e, ids[0], 1, 10)
	assert.Equal(t, []uuid.UUID{ids[1], ids[2]}, got)
}

func TestFeed_ExcludesAnyRelationship(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	ids := e.createUsers(t, 6)
	a, b, c, d, f, free := ids[0], ids[1], ids[2], ids[3], ids[4], ids[5]

	_, err := e.requests.Send(ctx, a, b, domain.StatusInterested)
	require.NoError(t, err)
	_, err = e.requests.Send(ctx, c, a, domain.StatusIgnored)
	require.NoError(t, err)
	accepted, err := e.requests.Send(ctx, d, a, domain.StatusInterested)
	require.NoError(t, err)
	_, err = e.requests.Review(ctx, a, accepted.ID, domain.StatusAccepted)
	require.NoError(t, err)
	rejected, err := e.requests.Send(ctx, a, f, domain.StatusInterested)
	require.NoError(t, err)
	_, err = e.requests.Review(ctx, f, rejected.ID, domain.StatusRejected)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{free}, feedIDs(t, e, a, 1, 50))

	// symmetric: a never shows up for anyone it is related to
	for _, other := range []uuid.UUID{b, c, d, f} {
		assert.NotContains(t, feedIDs(t, e, other, 1, 50), a)
	}
	assert.Contains(t, feedIDs(t, e, free, 1, 50), a)
}

func TestFeed_PaginationIsDisjointAndOrdered(t *testing.T) {
	e := newEnv()
	ids := e.createUsers(t, 6)
	viewer := ids[0]

	first := feedIDs(t, e, viewer, 1, 2)
	second := feedIDs(t, e, viewer, 2, 2)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	for _, id := range first {
		assert.NotContains(t, second, id)
	}
	assert.Equal(t, ids[1:5], append(first, second...))
}

func TestFeed_Exhausted(t *testing.T) {
	e := newEnv()
	ids := e.createUsers(t, 3)

	got, err := e.feed.Feed(context.Background(), ids[0], 5, 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFeed_Clamping(t *testing.T) {
	e := newEnv()
	ids := e.createUsers(t, 61)
	viewer := ids[0]

	tests := []struct {
		name     string
		page     int
		size     int
		wantLen  int
		wantHead uuid.UUID
	}{
		{"zero page becomes first page", 0, 5, 5, ids[1]},
		{"negative page becomes first page", -3, 5, 5, ids[1]},
		{"zero size uses default", 1, 0, DefaultPageSize, ids[1]},
		{"negative size uses default", 1, -1, DefaultPageSize, ids[1]},
		{"oversized page is capped", 1, 500, MaxPageSize, ids[1]},
		{"second capped page", 2, 500, 10, ids[51]},
		{"page past the last user", 7, 10, 0, uuid.Nil},
		{"offset would overflow int", math.MaxInt / 5, 10, 0, uuid.Nil},
		{"largest page", math.MaxInt, MaxPageSize, 0, uuid.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feedIDs(t, e, viewer, tt.page, tt.size)
			require.Len(t, got, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.wantHead, got[0])
			}
		})
	}
}

func TestFeed_Scenario(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	ids := e.createUsers(t, 3)
	a, b, c := ids[0], ids[1], ids[2]

	req, err := e.requests.Send(ctx, a, b, domain.StatusInterested)
	require.NoError(t, err)

	_, err = e.requests.Send(ctx, b, a, domain.StatusInterested)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	reviewed, err := e.requests.Review(ctx, b, req.ID, domain.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAccepted, reviewed.Status)

	got := feedIDs(t, e, a, 1, 10)
	assert.NotContains(t, got, b)
	assert.Contains(t, got, c)

	conns, err := e.requests.ConnectionsOf(ctx, a)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, b, conns[0].ID)
}

func TestFeed_ProjectsPublicFields(t *testing.T) {
	e := newEnv()
	ids := e.createUsers(t, 2)

	users, err := e.feed.Feed(context.Background(), ids[0], 1, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.IsType(t, &domain.PublicUser{}, users[0])
}
