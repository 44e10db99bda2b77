// Package ratelimit bounds queries per identity with a rolling one-hour
// window backed by an atomic counter in the shared store.
package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/seanblong/podsearch/internal/kv"
)

const (
	// MaxPerWindow is the query quota per identity per window.
	MaxPerWindow = 10
	// Window is the rolling quota window, armed on the first increment.
	Window = time.Hour
)

// Verdict is the outcome of a quota check.
type Verdict struct {
	Allowed   bool
	Remaining int
}

// Limiter counts requests per identity. A nil store means no limiting:
// availability over strictness.
type Limiter struct {
	store kv.Store
}

func New(store kv.Store) *Limiter {
	return &Limiter{store: store}
}

// Check increments the identity's counter and reports whether the request is
// within quota. Every call increments, including calls that end up rejected;
// rejected requests still consume quota. Store failures fail open.
func (l *Limiter) Check(ctx context.Context, identity string) Verdict {
	if l.store == nil {
		return Verdict{Allowed: true, Remaining: MaxPerWindow}
	}

	key := "ratelimit:" + identity
	n, err := l.store.Incr(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("identity", identity).Msg("rate limit store unavailable, failing open")
		return Verdict{Allowed: true, Remaining: MaxPerWindow}
	}

	// First hit in the window arms the TTL.
	if n == 1 {
		if err := l.store.Expire(ctx, key, Window); err != nil {
			log.Warn().Err(err).Str("identity", identity).Msg("failed to arm rate limit window")
		}
	}

	remaining := MaxPerWindow - int(n)
	if remaining < 0 {
		remaining = 0
	}
	return Verdict{Allowed: n <= MaxPerWindow, Remaining: remaining}
}
