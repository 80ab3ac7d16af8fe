package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLimiter_AcquireReducesTokens(t *testing.T) {
	rdb := newMiniRedis(t)

	limiter := New(rdb, nil, "test:acquire:", 10, 2)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	tokensStr, err := rdb.HGet(context.Background(), "test:acquire:shared", "tokens").Result()
	if err != nil {
		t.Fatalf("hget tokens: %v", err)
	}
	tokens, err := strconv.ParseFloat(tokensStr, 64)
	if err != nil {
		t.Fatalf("parse tokens: %v", err)
	}
	if tokens > 1.1 {
		t.Fatalf("expected tokens to decrease, got %.2f", tokens)
	}
}

func TestLimiter_AcquireBlocksUntilToken(t *testing.T) {
	rdb := newMiniRedis(t)

	limiter := New(rdb, nil, "test:block:", 10, 1)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("warm acquire: %v", err)
	}

	start := time.Now()
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("blocked acquire: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Fatalf("expected blocking, elapsed=%v", elapsed)
	}
}

func TestLimiter_AcquireContextTimeout(t *testing.T) {
	rdb := newMiniRedis(t)

	limiter := New(rdb, nil, "test:timeout:", 1, 1)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("warm acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Acquire(ctx); !errors.Is(err, ErrRateLimitTimeout) {
		t.Fatalf("expected ErrRateLimitTimeout, got %v", err)
	}
}

func TestLimiter_AllowIsPerKey(t *testing.T) {
	rdb := newMiniRedis(t)
	ctx := context.Background()

	limiter := New(rdb, nil, "test:allow:", 1, 2)
	for i := 0; i < 2; i++ {
		ok, _, err := limiter.Allow(ctx, "10.0.0.1")
		if err != nil || !ok {
			t.Fatalf("request %d should pass: ok=%v err=%v", i, ok, err)
		}
	}
	ok, wait, err := limiter.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatalf("third request should be rejected")
	}
	if wait <= 0 {
		t.Fatalf("expected a retry hint, got %v", wait)
	}

	ok, _, err = limiter.Allow(ctx, "10.0.0.2")
	if err != nil || !ok {
		t.Fatalf("other client has its own bucket: ok=%v err=%v", ok, err)
	}
}

func TestLimiter_DisabledAlwaysAllows(t *testing.T) {
	limiter := New(nil, nil, "", 0, 0)
	ok, _, err := limiter.Allow(context.Background(), "anyone")
	if err != nil || !ok {
		t.Fatalf("disabled limiter should allow: ok=%v err=%v", ok, err)
	}
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("disabled acquire: %v", err)
	}
}

func TestLimiter_ConcurrentAcquire(t *testing.T) {
	rdb := newMiniRedis(t)

	limiter := New(rdb, nil, "test:concurrent:", 5, 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	success := 0

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(ctx); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != 5 {
		t.Fatalf("expected 5 successes within the window, got %d", success)
	}
}

func newMiniRedis(t *testing.T) *redis.Client {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}
