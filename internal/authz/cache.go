package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedSets is a Redis read-through in front of a SetSource. Every
// authorized request reads the permission-set store, so the hot path is
// served from cache; the upsert endpoint invalidates.
type CachedSets struct {
	source SetSource
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSets wraps source with Redis caching. A nil client disables
// caching and passes reads straight through.
func NewCachedSets(source SetSource, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedSets {
	return &CachedSets{source: source, client: client, ttl: ttl, logger: logger}
}

// SetsForUser returns the cached permission sets, falling back to the source
// on miss or cache failure.
func (c *CachedSets) SetsForUser(ctx context.Context, userID int64) ([]PermissionSet, error) {
	if c.client == nil {
		return c.source.SetsForUser(ctx, userID)
	}

	key := c.key(userID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var sets []PermissionSet
		if err := json.Unmarshal(payload, &sets); err == nil {
			return sets, nil
		}
		// Unreadable cache entries are dropped and reloaded.
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) && c.logger != nil {
		c.logger.Warn("permission cache read failed", slog.Any("error", err))
	}

	sets, err := c.source.SetsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(sets); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil && c.logger != nil {
			c.logger.Warn("permission cache write failed", slog.Any("error", err))
		}
	}
	return sets, nil
}

// Invalidate drops the cached sets of a user after an upsert.
func (c *CachedSets) Invalidate(ctx context.Context, userID int64) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) && c.logger != nil {
		c.logger.Warn("permission cache invalidate failed", slog.Any("error", err))
	}
}

func (c *CachedSets) key(userID int64) string {
	return fmt.Sprintf("authz:sets:%d", userID)
}
