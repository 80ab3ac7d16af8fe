package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newClaimer(t *testing.T, ttl time.Duration) (*Claimer, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		if err := rdb.Close(); err != nil {
			t.Fatalf("close redis: %v", err)
		}
	})
	return NewClaimer(rdb, ttl), s
}

func TestClaimer_SecondClaimLoses(t *testing.T) {
	c, _ := newClaimer(t, time.Minute)
	ctx := context.Background()

	ok, err := c.Claim(ctx, "phone", "+15551234567")
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if !ok {
		t.Fatalf("expected first claim to win")
	}

	ok, err = c.Claim(ctx, "phone", "+15551234567")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if ok {
		t.Fatalf("expected second claim to lose")
	}

	ok, _ = c.Claim(ctx, "phone", "+15557654321")
	if !ok {
		t.Fatalf("a different number is independent")
	}
}

func TestClaimer_ReleaseAndExpiry(t *testing.T) {
	c, s := newClaimer(t, time.Minute)
	ctx := context.Background()

	_, _ = c.Claim(ctx, "phone", "+15551234567")
	if err := c.Release(ctx, "phone", "+15551234567"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := c.Claim(ctx, "phone", "+15551234567"); !ok {
		t.Fatalf("expected claim after release")
	}

	s.FastForward(2 * time.Minute)
	if ok, _ := c.Claim(ctx, "phone", "+15551234567"); !ok {
		t.Fatalf("expected claim after ttl")
	}
}

func TestClaimer_NilAlwaysWins(t *testing.T) {
	var c *Claimer
	ok, err := c.Claim(context.Background(), "phone", "+15551234567")
	if err != nil || !ok {
		t.Fatalf("nil claimer should pass: ok=%v err=%v", ok, err)
	}
}
