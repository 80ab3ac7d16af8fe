// Package ratelimit implements a Redis-backed token bucket shared by every
// API instance. Allow is the non-blocking per-client check used by the HTTP
// middleware; Acquire blocks until the shared bucket for outbound identity
// calls has a token.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

var ErrRateLimitTimeout = errors.New("rate limit wait timeout")

const defaultPrefix = "hitmeup:ratelimit:"

// tokenBucketLua refills by elapsed milliseconds, then takes one token.
// Returns {allowed, wait_ms, tokens}.
const tokenBucketLua = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

if rate <= 0 or burst <= 0 then
  return {1, 0, burst}
end

local data = redis.call("HMGET", key, "tokens", "ts")
local tokens = tonumber(data[1]) or burst
local ts = tonumber(data[2]) or now

local elapsed = math.max(0, now - ts)
tokens = math.min(burst, tokens + (elapsed * rate) / 1000.0)

local wait_ms = 0
local allowed = 0
if tokens >= requested then
  tokens = tokens - requested
  allowed = 1
else
  wait_ms = math.ceil((requested - tokens) * 1000.0 / rate)
end

redis.call("HSET", key, "tokens", tokens, "ts", now)
redis.call("PEXPIRE", key, math.ceil((burst / rate) * 2000.0))

return {allowed, wait_ms, tostring(tokens)}
`

// Limiter is a token bucket keyed under prefix. rate is tokens per second.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	rate   float64
	burst  float64
	logger *slog.Logger
	script *redis.Script
}

// New builds a limiter. A non-positive rate or burst disables limiting.
func New(rdb *redis.Client, logger *slog.Logger, prefix string, rate, burst float64) *Limiter {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		rdb:    rdb,
		prefix: prefix,
		rate:   rate,
		burst:  burst,
		logger: logger,
		script: redis.NewScript(tokenBucketLua),
	}
}

func (l *Limiter) disabled() bool {
	return l == nil || l.rdb == nil || l.rate <= 0 || l.burst <= 0
}

// Allow takes one token from the bucket of key without waiting. When the
// bucket is empty it reports how long until the next token.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l.disabled() {
		return true, 0, nil
	}
	allowed, waitMs, err := l.take(ctx, l.prefix+key)
	if err != nil {
		return false, 0, err
	}
	return allowed, time.Duration(waitMs) * time.Millisecond, nil
}

// Acquire waits for a token from the shared bucket until ctx ends.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.disabled() {
		return nil
	}

	const jitterMax = 10 * time.Millisecond
	key := l.prefix + "shared"
	start := time.Now()
	for {
		allowed, waitMs, err := l.take(ctx, key)
		if err != nil {
			return err
		}
		if allowed {
			metrics.RateLimitWaitDuration.Observe(time.Since(start).Seconds())
			return nil
		}

		wait := time.Duration(waitMs) * time.Millisecond
		if wait <= 0 {
			wait = 50 * time.Millisecond
		}
		wait += time.Duration(rand.Int63n(int64(jitterMax)))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			metrics.RateLimitWaitDuration.Observe(time.Since(start).Seconds())
			metrics.RateLimitTimeoutTotal.Inc()
			l.logger.Warn("rate limit wait aborted", slog.String("key", key), slog.Duration("waited", time.Since(start)))
			return ErrRateLimitTimeout
		case <-timer.C:
		}
	}
}

func (l *Limiter) take(ctx context.Context, key string) (bool, int64, error) {
	now := time.Now().UnixMilli()
	res, err := l.script.Run(ctx, l.rdb, []string{key}, l.rate, l.burst, now, 1).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit eval: %w", err)
	}
	values, ok := res.([]interface{})
	if !ok || len(values) < 2 {
		return false, 0, fmt.Errorf("ratelimit invalid result %v", res)
	}
	return toInt64(values[0]) == 1, toInt64(values[1]), nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
