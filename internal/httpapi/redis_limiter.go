// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const (
	redisKeyPrefix    = "accounts:ratelimit:"
	redisLimitTimeout = 250 * time.Millisecond
	redisPingTimeout  = 2 * time.Second
)

// RedisLimiter shares request counts between instances through Redis.
// It fails open: when Redis is unreachable the request is allowed and the
// error is logged.
type RedisLimiter struct {
	client  *redis.Client
	logger  *slog.Logger
	timeout time.Duration
}

// NewRedisLimiter connects to the Redis server at rawURL
// (redis://[user:pass@]host:port/db) and pings it.
func NewRedisLimiter(ctx context.Context, rawURL string, logger *slog.Logger) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, oops.Code("RATE_LIMITER_CONFIG_INVALID").Wrapf(err, "parse redis url")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, oops.Code("RATE_LIMITER_UNAVAILABLE").With("addr", opts.Addr).Wrapf(err, "ping redis")
	}
	return newRedisLimiter(client, logger), nil
}

func newRedisLimiter(client *redis.Client, logger *slog.Logger) *RedisLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLimiter{client: client, logger: logger, timeout: redisLimitTimeout}
}

// Allow implements Limiter. INCR and PTTL run in one pipeline; a key left
// without an expiry gets one here.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if window <= 0 {
		window = defaultRateWindow
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	redisKey := redisKeyPrefix + key
	var incr *redis.IntCmd
	var pttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		l.logger.WarnContext(ctx, "rate limiter unavailable, allowing request", "key", key, "error", err)
		return Decision{Allowed: true}
	}

	ttl := pttl.Val()
	if ttl < 0 {
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			l.logger.WarnContext(ctx, "rate limiter expire failed", "key", key, "error", err)
		}
		ttl = window
	}

	count := int(incr.Val())
	return Decision{
		Allowed: count <= limit,
		Count:   count,
		Reset:   time.Now().Add(ttl),
	}
}

// Close closes the Redis client.
func (l *RedisLimiter) Close() error {
	if err := l.client.Close(); err != nil {
		return oops.With("operation", "close redis").Wrap(err)
	}
	return nil
}
