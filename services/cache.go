package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"probation_app_go/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a small JSON cache over Redis. A Cache without a client is a
// no-op, so callers never branch on whether Redis is configured.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache wraps client. A nil client disables caching.
func NewCache(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// ConnectCache dials REDIS_URL and pings it. Without a URL, or when Redis is
// unreachable, it returns a disabled cache.
func ConnectCache(ctx context.Context, cfg *config.Config) *Cache {
	if cfg.RedisURL == "" {
		return NewCache(nil, "", 0)
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zap.L().Warn("invalid REDIS_URL, dashboard cache disabled", zap.Error(err))
		return NewCache(nil, "", 0)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		zap.L().Warn("redis ping failed, dashboard cache disabled", zap.Error(err))
		_ = client.Close()
		return NewCache(nil, "", 0)
	}
	zap.L().Info("redis cache ready", zap.String("addr", opts.Addr), zap.Duration("ttl", cfg.DashboardCacheTTL))
	return NewCache(client, "probation:", cfg.DashboardCacheTTL)
}

// Enabled reports whether values are actually stored
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get decodes the value at key into dst. It reports false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores v at key for the cache TTL
func (c *Cache) Set(ctx context.Context, key string, v interface{}) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err()
}

// Delete drops key
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Close releases the Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
