package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

const chatChannel = "devmatch:chat"

// Broker carries room payloads between hub instances.
type Broker interface {
	Publish(ctx context.Context, room string, payload []byte) error
	// Subscribe blocks, handing every published payload to deliver, until ctx is done.
	Subscribe(ctx context.Context, deliver func(room string, payload []byte)) error
}

// LocalBroker delivers in-process. It is used when Redis is not configured,
// which limits chat fan-out to a single instance.
type LocalBroker struct {
	mu      sync.RWMutex
	deliver func(room string, payload []byte)
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{}
}

func (b *LocalBroker) Publish(ctx context.Context, room string, payload []byte) error {
	b.mu.RLock()
	deliver := b.deliver
	b.mu.RUnlock()

	if deliver != nil {
		deliver(room, payload)
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, deliver func(room string, payload []byte)) error {
	b.mu.Lock()
	b.deliver = deliver
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	b.deliver = nil
	b.mu.Unlock()
	return nil
}

type brokerMessage struct {
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

// RedisBroker fans room payloads out to every instance through one pub/sub channel.
type RedisBroker struct {
	client *goredis.Client
	log    *slog.Logger
}

func NewRedisBroker(client *goredis.Client, log *slog.Logger) *RedisBroker {
	return &RedisBroker{client: client, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, room string, payload []byte) error {
	data, err := json.Marshal(brokerMessage{Room: room, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode broker message: %w", err)
	}
	if err := b.client.Publish(ctx, chatChannel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", chatChannel, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, deliver func(room string, payload []byte)) error {
	pubsub := b.client.Subscribe(ctx, chatChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", chatChannel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var m brokerMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				b.log.Warn("discarding malformed broker message", "error", err)
				continue
			}
			deliver(m.Room, m.Payload)
		}
	}
}
