package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSetupCache stores pending two-factor enrollment secrets keyed by
// subject. Overwriting an existing key invalidates the previous pending
// secret, which is exactly the re-entrant BeginSetup semantics.
type RedisSetupCache struct {
	client *redis.Client
}

func NewRedisSetupCache(client *redis.Client) *RedisSetupCache {
	return &RedisSetupCache{client: client}
}

func setupKey(subjectID string) string {
	return "2fa:pending:" + subjectID
}

func (c *RedisSetupCache) PutPending(ctx context.Context, subjectID string, secret string, ttl time.Duration) error {
	return c.client.Set(ctx, setupKey(subjectID), secret, ttl).Err()
}

func (c *RedisSetupCache) GetPending(ctx context.Context, subjectID string) (string, error) {
	secret, err := c.client.Get(ctx, setupKey(subjectID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return secret, err
}

func (c *RedisSetupCache) DeletePending(ctx context.Context, subjectID string) error {
	return c.client.Del(ctx, setupKey(subjectID)).Err()
}

// MemorySetupCache backs tests and redis-less deployments.
type MemorySetupCache struct {
	mu      sync.Mutex
	secrets map[string]pendingSecret
}

type pendingSecret struct {
	secret    string
	expiresAt time.Time
}

func NewMemorySetupCache() *MemorySetupCache {
	return &MemorySetupCache{secrets: make(map[string]pendingSecret)}
}

func (c *MemorySetupCache) PutPending(_ context.Context, subjectID string, secret string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secrets[subjectID] = pendingSecret{secret: secret, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *MemorySetupCache) GetPending(_ context.Context, subjectID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending, ok := c.secrets[subjectID]
	if !ok || time.Now().After(pending.expiresAt) {
		return "", nil
	}
	return pending.secret, nil
}

func (c *MemorySetupCache) DeletePending(_ context.Context, subjectID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.secrets, subjectID)
	return nil
}
