package services

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sellerpulse/recon-api/utils"
)

// TokenCache stores revoked token IDs until their natural expiry. Entries are
// written with a TTL so the revocation list never outlives the tokens it
// covers.
type TokenCache interface {
	SetRevoked(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RedisTokenCache backs the revocation list with Redis, so revocations are
// visible to every instance behind the load balancer.
type RedisTokenCache struct {
	client *redis.Client
	prefix string
}

func NewRedisTokenCache(client *redis.Client, prefix string) *RedisTokenCache {
	if prefix == "" {
		prefix = "recon:revoked:"
	}
	return &RedisTokenCache{client: client, prefix: prefix}
}

func (c *RedisTokenCache) SetRevoked(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.prefix+tokenID, "1", ttl).Err()
}

func (c *RedisTokenCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryTokenCache is the single-instance fallback used when no Redis address
// is configured, and by tests.
type MemoryTokenCache struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{entries: make(map[string]time.Time)}
}

func (c *MemoryTokenCache) SetRevoked(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tokenID] = utils.UTCNow().Add(ttl)
	return nil
}

func (c *MemoryTokenCache) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	c.mu.RLock()
	deadline, ok := c.entries[tokenID]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if utils.UTCNow().After(deadline) {
		c.mu.Lock()
		delete(c.entries, tokenID)
		c.mu.Unlock()
		return false, nil
	}
	return true, nil
}
