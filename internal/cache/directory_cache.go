package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/agent-console/internal/domain"
)

const directoryKey = "console:directory:users"

// DirectoryCache is a read-through cache for the upstream user directory.
// Cache failures are logged and degrade to a miss; the directory service then
// fetches directly.
type DirectoryCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewDirectoryCache builds the cache. A nil client disables caching.
func NewDirectoryCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *DirectoryCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &DirectoryCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached directory, or ok=false on miss or cache failure.
func (c *DirectoryCache) Get(ctx context.Context) ([]domain.BaseUser, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, directoryKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("directory cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var users []domain.BaseUser
	if err := json.Unmarshal(raw, &users); err != nil {
		c.logger.Warn("directory cache payload corrupt; dropping", zap.Error(err))
		_ = c.client.Del(ctx, directoryKey).Err()
		return nil, false
	}
	return users, true
}

// Set stores the directory with the configured TTL.
func (c *DirectoryCache) Set(ctx context.Context, users []domain.BaseUser) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, directoryKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("directory cache write failed", zap.Error(err))
	}
}
