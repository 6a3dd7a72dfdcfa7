package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
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

type recordingPublisher struct {
	mu     sync.Mutex
	events []*MessageEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, room string, event *MessageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type chatEnv struct {
	uc        *ChatUseCase
	chats     *memory.ChatRepository
	requests  *request.RequestUseCase
	publisher *recordingPublisher
	a, b, c   uuid.UUID
}

func newChatEnv(t *testing.T) *chatEnv {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := memory.NewUserRepository()
	requests := request.NewRequestUseCase(memory.NewConnectionRequestRepository(), users, noopEnqueuer{}, log)
	chats := memory.NewChatRepository()
	publisher := &recordingPublisher{}

	mk := func(name string) uuid.UUID {
		u := &domain.User{Email: name + "@example.com", FirstName: strings.ToUpper(name), LastName: "Dev"}
		require.NoError(t, users.Create(ctx, u))
		return u.ID
	}
	env := &chatEnv{
		uc:        NewChatUseCase(chats, users, requests, publisher, log),
		chats:     chats,
		requests:  requests,
		publisher: publisher,
		a:         mk("a"),
		b:         mk("b"),
		c:         mk("c"),
	}

	req, err := requests.Send(ctx, env.a, env.b, domain.StatusInterested)
	require.NoError(t, err)
	_, err = requests.Review(ctx, env.b, req.ID, domain.StatusAccepted)
	require.NoError(t, err)
	_, err = requests.Send(ctx, env.a, env.c, domain.StatusInterested)
	require.NoError(t, err)

	return env
}

func TestOpen_OnlyBetweenConnections(t *testing.T) {
	ctx := context.Background()
	env := newChatEnv(t)

	chat, err := env.uc.Open(ctx, env.a, env.b)
	require.NoError(t, err)
	assert.Equal(t, domain.PairKey(env.a, env.b), chat.PairKey)
	assert.Empty(t, chat.Messages)

	again, err := env.uc.Open(ctx, env.b, env.a)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, again.ID)

	_, err = env.uc.Open(ctx, env.a, env.c)
	assert.ErrorIs(t, err, domain.ErrChatNotAllowed, "pending request is not a connection")

	_, err = env.uc.Open(ctx, env.a, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = env.uc.Open(ctx, env.a, env.a)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestJoin_ReturnsPairRoom(t *testing.T) {
	env := newChatEnv(t)

	room, err := env.uc.Join(context.Background(), env.b, env.a)
	require.NoError(t, err)
	assert.Equal(t, domain.PairKey(env.a, env.b), room)

	_, err = env.uc.Join(context.Background(), env.c, env.a)
	assert.ErrorIs(t, err, domain.ErrChatNotAllowed)
}

func TestSendMessage_PersistsThenPublishes(t *testing.T) {
	ctx := context.Background()
	env := newChatEnv(t)

	event, err := env.uc.SendMessage(ctx, env.a, env.b, "  hello there ")
	require.NoError(t, err)
	assert.Equal(t, "hello there", event.Text)
	assert.Equal(t, "A", event.FirstName)
	assert.Equal(t, domain.PairKey(env.a, env.b), event.Room)

	_, err = env.uc.SendMessage(ctx, env.b, env.a, "hi!")
	require.NoError(t, err)

	chat, err := env.uc.Open(ctx, env.a, env.b)
	require.NoError(t, err)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, env.a, chat.Messages[0].SenderID)
	assert.Equal(t, env.b, chat.Messages[1].SenderID)

	require.Len(t, env.publisher.events, 2)
	assert.Equal(t, "hi!", env.publisher.events[1].Text)
}

func TestSendMessage_PublishFailureIsNotReturned(t *testing.T) {
	ctx := context.Background()
	env := newChatEnv(t)
	env.publisher.err = errors.New("redis down")

	_, err := env.uc.SendMessage(ctx, env.a, env.b, "still saved")
	require.NoError(t, err)

	chat, err := env.uc.Open(ctx, env.a, env.b)
	require.NoError(t, err)
	assert.Len(t, chat.Messages, 1)
}

func TestSendMessage_Rejections(t *testing.T) {
	ctx := context.Background()
	env := newChatEnv(t)

	_, err := env.uc.SendMessage(ctx, env.a, env.b, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.uc.SendMessage(ctx, env.a, env.b, strings.Repeat("x", maxMessageLength+1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.uc.SendMessage(ctx, env.a, env.c, "hey")
	assert.ErrorIs(t, err, domain.ErrChatNotAllowed)

	assert.Empty(t, env.publisher.events)
}
