package redis

import (
	"context"
	"fmt"
	"time"

	"lineflow/pkg/config"

	"github.com/go-redis/redis/v8"
)

// pingTimeout bounds the startup connectivity probe.
const pingTimeout = 5 * time.Second

// RedisClient wraps the shared connection used by the distributed locks.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects and verifies the connection before returning.
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	return &RedisClient{client: client}, nil
}

// GetClient retrieves the underlying Redis client
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}
