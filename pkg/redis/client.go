package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/canopy-network/powerx/pkg/power"
	"github.com/canopy-network/powerx/pkg/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultCacheTTL bounds how long a shared snapshot list lives.
	DefaultCacheTTL = 10 * time.Minute

	keyPrefix = "powerx"
)

// Client wraps the Redis client as a shared snapshot cache tier between API replicas.
// Every operation is best-effort: errors are logged and reported as misses.
type Client struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

var _ power.SharedTier = (*Client)(nil)

// NewClient creates a new Redis client using environment variables for configuration.
// Environment variables:
//   - REDIS_HOST: Redis host (default: "localhost")
//   - REDIS_PORT: Redis port (default: "6379")
//   - REDIS_PASSWORD: Redis password (default: "")
//   - REDIS_DB: Redis database number (default: "0")
//   - REDIS_CACHE_TTL: lifetime of cached snapshot lists (default: 10m)
func NewClient(ctx context.Context, logger *zap.Logger) (*Client, error) {
	host := utils.Env("REDIS_HOST", "localhost")
	port := utils.Env("REDIS_PORT", "6379")
	password := utils.Env("REDIS_PASSWORD", "")
	db := utils.EnvInt("REDIS_DB", 0)
	ttl := utils.EnvDuration("REDIS_CACHE_TTL", DefaultCacheTTL)

	addr := fmt.Sprintf("%s:%s", host, port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		// Connection pool
		PoolSize:     10,
		MinIdleConns: 2,

		// Timeouts
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Info("Connected to Redis",
		zap.String("addr", addr),
		zap.Int("db", db),
		zap.Duration("ttl", ttl))

	return NewWithClient(rdb, logger, ttl), nil
}

// NewWithClient wraps an existing go-redis client.
func NewWithClient(rdb *redis.Client, logger *zap.Logger, ttl time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Client{client: rdb, logger: logger.Named("redis"), ttl: ttl}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Health checks if Redis is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the snapshot list stored under the cache name and key.
func (c *Client) Get(ctx context.Context, name string, key power.CacheKey) ([]power.Snapshot, bool) {
	k := cacheKey(name, key)
	raw, err := c.client.Get(ctx, k).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read shared cache entry", zap.String("key", k), zap.Error(err))
		}
		return nil, false
	}

	var out []power.Snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		c.logger.Warn("Dropping undecodable shared cache entry", zap.String("key", k), zap.Error(err))
		return nil, false
	}
	if out == nil {
		out = []power.Snapshot{}
	}
	return out, true
}

// Set stores the snapshot list under the cache name and key with the configured TTL.
func (c *Client) Set(ctx context.Context, name string, key power.CacheKey, value []power.Snapshot) {
	k := cacheKey(name, key)
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode shared cache entry", zap.String("key", k), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, k, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write shared cache entry", zap.String("key", k), zap.Error(err))
	}
}

func cacheKey(name string, key power.CacheKey) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, name, key.String())
}
