package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter tracks per-user token spend in day-bucketed keys so the budget
// resets at UTC midnight without any sweeper.
type RedisLimiter struct {
	client *redis.Client
	limit  int // max tokens per user per day
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, now: time.Now}
}

func (r *RedisLimiter) key(userID string) string {
	return "usage:" + userID + ":" + r.now().UTC().Format("2006-01-02")
}

func (r *RedisLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	val, err := r.client.Get(ctx, r.key(userID)).Result()
	if err == redis.Nil {
		return true, nil // no usage today
	}
	if err != nil {
		return false, err
	}
	usage, err := strconv.Atoi(val)
	if err != nil {
		return true, nil
	}
	return usage < r.limit, nil
}

func (r *RedisLimiter) Spend(ctx context.Context, userID string, tokens int) error {
	key := r.key(userID)
	if err := r.client.IncrBy(ctx, key, int64(tokens)).Err(); err != nil {
		return err
	}
	// Bucket keys would otherwise accumulate forever.
	return r.client.Expire(ctx, key, 48*time.Hour).Err()
}
