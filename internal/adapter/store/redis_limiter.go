package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const usageWindow = 24 * time.Hour

// RedisLimiter tracks per-user token usage in a rolling daily key.
type RedisLimiter struct {
	client *redis.Client
	limit  int // Max tokens per day; 0 means unlimited
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limit:  limit,
		now:    time.Now,
	}
}

func (r *RedisLimiter) CheckLimit(ctx context.Context, userID string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}
	val, err := r.client.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil // No usage yet
	}
	if err != nil {
		return false, err
	}
	usage, err := strconv.Atoi(val)
	if err != nil {
		return false, err
	}
	return usage < r.limit, nil
}

func (r *RedisLimiter) Increment(ctx context.Context, userID string, tokens int) error {
	if tokens <= 0 {
		return nil
	}
	key := r.key(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.IncrBy(ctx, key, int64(tokens))
		pipe.Expire(ctx, key, usageWindow)
		return nil
	})
	return err
}

func (r *RedisLimiter) key(userID string) string {
	return "usage:" + userID + ":" + r.now().UTC().Format("2006-01-02")
}
