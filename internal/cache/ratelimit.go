package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter enforces a true rolling window: each attempt is a
// ZSET member scored by its timestamp, entries older than the window
// are trimmed before counting.
type RedisRateLimiter struct {
	client   *redis.Client
	attempts int
	window   time.Duration
}

func NewRedisRateLimiter(client *redis.Client, attempts int, window time.Duration) *RedisRateLimiter {
	if attempts <= 0 {
		attempts = 5
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &RedisRateLimiter{client: client, attempts: attempts, window: window}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	redisKey := "ratelimit:" + key
	cutoff := now.Add(-l.window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", cutoff.UnixNano()))
	count := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit window: %w", err)
	}

	if count.Val() >= int64(l.attempts) {
		return false, nil
	}

	pipe = l.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit record: %w", err)
	}
	return true, nil
}
