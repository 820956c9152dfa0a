package storage

import (
	"context"
	"errors"
	"time"

	"github.com/gotodo/gotodo/internal/cache"
)

// RedisStorage keeps items in Redis so several clients on different hosts
// can share one session.
type RedisStorage struct {
	cache  cache.Cache
	prefix string
	ttl    time.Duration
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage wraps c. Keys are namespaced with prefix; a zero ttl keeps
// items until they are removed.
func NewRedisStorage(c cache.Cache, prefix string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{cache: c, prefix: prefix, ttl: ttl}
}

func (r *RedisStorage) key(key string) string {
	return r.prefix + key
}

// GetItem returns the value stored under key.
func (r *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	data, err := r.cache.Get(ctx, r.key(key))
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// SetItem stores value under key.
func (r *RedisStorage) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return r.cache.Set(ctx, r.key(key), []byte(value), r.ttl)
}

// RemoveItem deletes key.
func (r *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return r.cache.Delete(ctx, r.key(key))
}
