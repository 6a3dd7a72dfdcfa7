package database

import (
	"context"
	"fmt"

	"github.com/gdugdh24/devmatch-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient returns nil, nil when Redis is not configured.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	addr := cfg.GetAddr()
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		ClientName: "devmatch",
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
