// Package dedup guards against concurrent duplicate registrations. A claim
// is a short-lived Redis key set with SETNX; the first caller wins.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "hitmeup:claim:"

type Claimer struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewClaimer(rdb *redis.Client, ttl time.Duration) *Claimer {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Claimer{rdb: rdb, ttl: ttl}
}

// Claim reports whether the caller now holds value within scope. A nil
// claimer or empty value always succeeds.
func (c *Claimer) Claim(ctx context.Context, scope, value string) (bool, error) {
	if c == nil || c.rdb == nil || value == "" {
		return true, nil
	}
	ok, err := c.rdb.SetNX(ctx, key(scope, value), "1", c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim setnx: %w", err)
	}
	return ok, nil
}

// Release drops a claim early.
func (c *Claimer) Release(ctx context.Context, scope, value string) error {
	if c == nil || c.rdb == nil || value == "" {
		return nil
	}
	if err := c.rdb.Del(ctx, key(scope, value)).Err(); err != nil {
		return fmt.Errorf("claim del: %w", err)
	}
	return nil
}

// key hashes the value so phone numbers do not sit in Redis in clear text.
func key(scope, value string) string {
	sum := sha256.Sum256([]byte(value))
	return keyPrefix + scope + ":" + hex.EncodeToString(sum[:])
}
