// Package kv abstracts the key-value store backing the response cache and
// the rate limiter. The store is a performance optimization, never a
// correctness dependency: callers treat errors and an absent store as
// "no cache, no limit".
package kv

import (
	"context"
	"time"
)

// Store is the narrow contract the cache and rate limiter need. Incr must
// be atomic across concurrent callers.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
