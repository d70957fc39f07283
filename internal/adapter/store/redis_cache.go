package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mindgate-core/internal/domain/entity"
)

// RedisCache is the remote tier, shared across a user's devices. Entries are
// stored as JSON with Redis handling expiry; the entry's own ExpiresAt is
// still checked on read because another writer may have stored a longer TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, now: time.Now}
}

func (c *RedisCache) Name() string { return "redis" }

func (c *RedisCache) Get(ctx context.Context, key string) (*entity.CacheEntry, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var entry entity.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	if entry.Expired(c.now()) {
		c.client.Del(ctx, c.prefix+key)
		return nil, nil
	}
	return &entry, nil
}

func (c *RedisCache) Set(ctx context.Context, entry *entity.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	ttl := entry.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		// Already expired; make sure no stale copy survives.
		return c.client.Del(ctx, c.prefix+entry.Key).Err()
	}
	return c.client.Set(ctx, c.prefix+entry.Key, raw, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
