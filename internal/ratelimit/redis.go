package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a sliding window limiter shared by every process using the
// same Redis. Each identifier is a sorted set of request timestamps.
type RedisLimiter struct {
	client *redis.Client
	config Config
	prefix string
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a Redis-backed limiter. Keys are prefix+identifier.
func NewRedisLimiter(client *redis.Client, cfg Config, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "gotodo:ratelimit:"
	}
	return &RedisLimiter{
		client: client,
		config: cfg.withDefaults(),
		prefix: prefix,
		now:    time.Now,
	}
}

// Allow records the request and rolls it back if the window was already full.
func (l *RedisLimiter) Allow(ctx context.Context, identifier string) (*Result, error) {
	key := l.prefix + identifier
	now := l.now()
	cutoff := now.Add(-l.config.Window).UnixMicro()
	member := strconv.FormatInt(now.UnixMicro(), 10) + "-" + uuid.NewString()

	var card *redis.IntCmd
	var oldest *redis.ZSliceCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMicro()), Member: member})
		card = pipe.ZCard(ctx, key)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.PExpire(ctx, key, l.config.Window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(card.Val())
	first := now
	if zs := oldest.Val(); len(zs) > 0 {
		first = time.UnixMicro(int64(zs[0].Score))
	}

	if count > l.config.Requests {
		if err := l.client.ZRem(ctx, key, member).Err(); err != nil {
			return nil, fmt.Errorf("rate limit rollback failed: %w", err)
		}
		return denied(l.config, now, first), nil
	}

	return &Result{
		Allowed:    true,
		Remaining:  l.config.Requests - count,
		ResetAfter: first.Add(l.config.Window).Sub(now),
		Limit:      l.config.Requests,
	}, nil
}

// Reset clears the rate limit state for an identifier.
func (l *RedisLimiter) Reset(ctx context.Context, identifier string) error {
	return l.client.Del(ctx, l.prefix+identifier).Err()
}

// Close is a no-op; the client is owned by the caller.
func (l *RedisLimiter) Close() error {
	return nil
}
