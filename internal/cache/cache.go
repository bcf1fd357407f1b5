package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/logger"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache stores rendered session views in Redis. Writes are best effort: a
// failed SET only costs a database read on the next poll.
type Cache struct {
	client *redis.Client
}

// compile-time check: *Cache must satisfy port.Cache
var _ port.Cache = (*Cache)(nil)

func NewCache(addr, password string) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	return &Cache{client: rdb}
}

func (c *Cache) GetSessionView(ctx context.Context, id uuid.UUID) ([]byte, error) {
	logger.Debugf(ctx, "getting entry in cache for session #%s...", id)

	val, err := c.client.Get(ctx, getCacheKey(id.String(), false)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (c *Cache) GetEtagSessionView(ctx context.Context, id uuid.UUID) (string, error) {
	val, err := c.client.Get(ctx, getCacheKey(id.String(), true)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

func (c *Cache) SetSessionView(ctx context.Context, id uuid.UUID, data []byte, ttl time.Duration) {
	logger.Debugf(ctx, "creating entry in cache for session #%s, valid for %s...", id, ttl)

	if err := c.client.Set(ctx, getCacheKey(id.String(), false), data, ttl).Err(); err != nil {
		logger.Warnf(ctx, "⚠️  redis set failed for session #%s: %v", id, err)
	}
}

func (c *Cache) SetEtagSessionView(ctx context.Context, id uuid.UUID, etag string, ttl time.Duration) {
	if err := c.client.Set(ctx, getCacheKey(id.String(), true), etag, ttl).Err(); err != nil {
		logger.Warnf(ctx, "⚠️  redis set failed for etag of session #%s: %v", id, err)
	}
}

func (c *Cache) DeleteSessionView(ctx context.Context, id uuid.UUID) error {
	logger.Debugf(ctx, "deleting entry in cache for session #%s...", id)

	if err := c.client.Del(ctx, getCacheKey(id.String(), false)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (c *Cache) DeleteEtagSessionView(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, getCacheKey(id.String(), true)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func getCacheKey(id string, etag bool) string {
	if etag {
		return "etag:session:" + id
	}
	return "session:" + id
}
