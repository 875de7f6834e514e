package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UnreadCache caches per-employee unread notification counts in Redis.
// A nil client disables caching.
type UnreadCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewUnreadCache creates a cache; rdb may be nil
func NewUnreadCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *UnreadCache {
	return &UnreadCache{redis: rdb, ttl: ttl, logger: logger}
}

func unreadKey(employeeID uuid.UUID) string {
	return fmt.Sprintf("unread:%s", employeeID.String())
}

// Get returns the cached count and whether it was present
func (c *UnreadCache) Get(ctx context.Context, employeeID uuid.UUID) (int64, bool) {
	if c == nil || c.redis == nil {
		return 0, false
	}
	n, err := c.redis.Get(ctx, unreadKey(employeeID)).Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *UnreadCache) Set(ctx context.Context, employeeID uuid.UUID, count int64) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, unreadKey(employeeID), count, c.ttl).Err(); err != nil {
		c.logger.Debug("failed to cache unread count", zap.Error(err))
	}
}

// Invalidate drops cached counts for the given employees
func (c *UnreadCache) Invalidate(ctx context.Context, employeeIDs ...uuid.UUID) {
	if c == nil || c.redis == nil || len(employeeIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		keys = append(keys, unreadKey(id))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("failed to invalidate unread counts", zap.Error(err))
	}
}
