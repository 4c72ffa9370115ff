package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourname/fitcoach/internal"
)

const completionTTL = 10 * time.Minute

// RedisCache holds completion records per (user, plan) with a short TTL.
// Cache failures are logged and treated as misses; the store stays
// authoritative.
type RedisCache struct {
	client *redis.Client
	logger internal.Logger
}

func NewRedis(ctx context.Context, addr, password string, logger internal.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisCache{client: client, logger: logger}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func completionKey(userID, planID string) string {
	return fmt.Sprintf("completions:%s:%s", userID, planID)
}

func (c *RedisCache) GetCompletions(ctx context.Context, userID, planID string) ([]internal.CompletionRecord, bool) {
	data, err := c.client.Get(ctx, completionKey(userID, planID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnf("redis get failed: %v", err)
		}
		return nil, false
	}
	var records []internal.CompletionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.Warnf("redis cache entry corrupt, dropping: %v", err)
		c.Invalidate(ctx, userID, planID)
		return nil, false
	}
	return records, true
}

func (c *RedisCache) SetCompletions(ctx context.Context, userID, planID string, records []internal.CompletionRecord) {
	data, err := json.Marshal(records)
	if err != nil {
		c.logger.Warnf("failed to marshal completions for cache: %v", err)
		return
	}
	if err := c.client.Set(ctx, completionKey(userID, planID), data, completionTTL).Err(); err != nil {
		c.logger.Warnf("redis set failed: %v", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, userID, planID string) {
	if err := c.client.Del(ctx, completionKey(userID, planID)).Err(); err != nil {
		c.logger.Warnf("redis del failed: %v", err)
	}
}

// NopCache is used when no redis address is configured. Every read is a miss.
type NopCache struct{}

func NewNop() *NopCache { return &NopCache{} }

func (*NopCache) GetCompletions(context.Context, string, string) ([]internal.CompletionRecord, bool) {
	return nil, false
}

func (*NopCache) SetCompletions(context.Context, string, string, []internal.CompletionRecord) {}

func (*NopCache) Invalidate(context.Context, string, string) {}
