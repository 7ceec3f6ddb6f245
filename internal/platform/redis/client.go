// Package redis implements store.SessionStore on Redis using go-redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the connectivity check in NewClient.
const pingTimeout = 2 * time.Second

// NewClient builds a Redis client from cfg and verifies it can reach the server.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
