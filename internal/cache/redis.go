// Package cache provides a Redis-backed store for enhancement results.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client holding compressed, encoded responses.
type Cache struct {
	client *redis.Client
}

// New creates a new Cache instance connected to the specified Redis address
// If addr is empty, defaults to localhost:6379
func New(ctx context.Context, addr string) (*Cache, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &Cache{client: client}, nil
}

// Get returns the stored payload for key, or nil with no error on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, ErrNoClient
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	data, err := decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt entry %s: %w", key, err)
	}
	return data, nil
}

// Set stores data under key with the specified TTL. A zero TTL keeps the
// entry until Redis evicts it.
func (c *Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrNoClient
	}

	if err := c.client.Set(ctx, key, compress(data), ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}
