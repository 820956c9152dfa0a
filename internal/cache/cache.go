// Package cache handles Redis caching operations.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gotodo/gotodo/internal/config"
	"github.com/gotodo/gotodo/internal/metrics"
	"github.com/gotodo/gotodo/internal/models"
)

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the interface for caching operations.
type Cache interface {
	// Get retrieves a value from the cache.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in the cache.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping checks if the cache is healthy.
	Ping(ctx context.Context) error

	// Close closes the cache connection.
	Close() error
}

// RedisCache implements Cache using Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client and verifies connectivity.
func NewRedisCache(ctx context.Context, cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("cache get failed: %w", err)
	}
	return val, nil
}

// Set stores a value in the cache with a TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

// Delete removes a value from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	return nil
}

// Exists checks if a key exists in the cache.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists check failed: %w", err)
	}
	return n > 0, nil
}

// Ping checks if the cache is healthy.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the cache connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client for advanced operations.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// TagCacher defines the tag list caching operations.
// This interface enables easy mocking in tests.
type TagCacher interface {
	GetAll(ctx context.Context) ([]models.Tag, error)
	SetAll(ctx context.Context, tags []models.Tag) error
	Invalidate(ctx context.Context) error
	Ping(ctx context.Context) error
}

var _ TagCacher = (*TagCache)(nil)

// TagCache caches the full tag list under a single key. Tags are read on
// every task form and change rarely, so the whole list is the unit.
type TagCache struct {
	cache Cache
	key   string
	ttl   time.Duration
}

// NewTagCache creates a tag list cache.
func NewTagCache(cache Cache, keyPrefix string, ttl time.Duration) *TagCache {
	if keyPrefix == "" {
		keyPrefix = "gotodo:"
	}
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &TagCache{
		cache: cache,
		key:   keyPrefix + "tags:all",
		ttl:   ttl,
	}
}

// GetAll returns the cached tag list or ErrCacheMiss.
func (c *TagCache) GetAll(ctx context.Context) ([]models.Tag, error) {
	data, err := c.cache.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			metrics.RecordCacheMiss()
		}
		return nil, err
	}

	var tags []models.Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		_ = c.cache.Delete(ctx, c.key)
		return nil, fmt.Errorf("failed to unmarshal cached tags: %w", err)
	}

	metrics.RecordCacheHit()
	return tags, nil
}

// SetAll replaces the cached list.
func (c *TagCache) SetAll(ctx context.Context, tags []models.Tag) error {
	if tags == nil {
		tags = []models.Tag{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	return c.cache.Set(ctx, c.key, data, c.ttl)
}

// Invalidate drops the cached list.
func (c *TagCache) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, c.key)
}

// Ping checks if the cache is healthy.
func (c *TagCache) Ping(ctx context.Context) error {
	return c.cache.Ping(ctx)
}
