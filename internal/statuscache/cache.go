// Package statuscache caches the materialized document workflow status in
// Redis for list views. The stored column stays authoritative; a stale cache
// entry is tolerated until the next refresh.
package statuscache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lingua/api/internal/workflow"
)

type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func New(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client, ttl), nil
}

// NewWithClient creates a cache from an existing Redis client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{
		client: client,
		prefix: "wfstatus:",
		ttl:    ttl,
	}
}

func (c *Cache) key(documentID string) string {
	return c.prefix + documentID
}

// Get returns the cached stage for a document, if present.
func (c *Cache) Get(ctx context.Context, documentID string) (workflow.Status, bool) {
	value, err := c.client.Get(ctx, c.key(documentID)).Result()
	if err != nil {
		return "", false
	}
	return workflow.Status(value), true
}

// Set stores the stage with the configured TTL.
func (c *Cache) Set(ctx context.Context, documentID string, status workflow.Status) error {
	if err := c.client.Set(ctx, c.key(documentID), string(status), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache workflow status: %w", err)
	}
	return nil
}

// Invalidate drops the cached stage; safe to call for uncached documents.
func (c *Cache) Invalidate(ctx context.Context, documentID string) error {
	if err := c.client.Del(ctx, c.key(documentID)).Err(); err != nil {
		return fmt.Errorf("invalidate workflow status: %w", err)
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
