// Package ratelimit implements a fixed-window per-client request counter
// on top of the shared cache store.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"linkgate/internal/cache"
)

// Result is the outcome of a rate-limit check.
type Result struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// Limiter counts requests per client in fixed windows. The counter keeps
// incrementing past the limit: a client hammering through a burst still
// costs one atomic increment per request, and Remaining stays 0 until
// the window expires.
type Limiter struct {
	cache       cache.Cache
	window      time.Duration
	maxRequests int64
}

// NewLimiter creates a fixed-window limiter.
func NewLimiter(c cache.Cache, window time.Duration, maxRequests int64) *Limiter {
	return &Limiter{
		cache:       c,
		window:      window,
		maxRequests: maxRequests,
	}
}

// MaxRequests returns the per-window request limit.
func (l *Limiter) MaxRequests() int64 {
	return l.maxRequests
}

func rateLimitKey(clientID string) string {
	return fmt.Sprintf("rate_limit:%s", clientID)
}

// Check records one request for the client and reports whether it is
// within the window limit.
//
// Fail-open policy: if the backing store is unreachable the request is
// allowed with conservative values. Rate limiting is defense in depth;
// a store outage must never take down redirects.
func (l *Limiter) Check(ctx context.Context, clientID string) Result {
	key := rateLimitKey(clientID)

	count, err := l.cache.Incr(ctx, key)
	if err != nil {
		log.Printf("Warning: rate limit store unreachable, failing open: %v", err)
		return l.failOpen()
	}

	// First request in the window starts the clock
	if count == 1 {
		if err := l.cache.Expire(ctx, key, l.window); err != nil {
			log.Printf("Warning: failed to set rate limit window TTL: %v", err)
		}
	}

	remaining := l.maxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	ttl, err := l.cache.TTL(ctx, key)
	if err != nil || ttl < 0 {
		ttl = l.window
	}

	return Result{
		Allowed:   count <= l.maxRequests,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}
}

func (l *Limiter) failOpen() Result {
	return Result{
		Allowed:   true,
		Remaining: l.maxRequests,
		ResetAt:   time.Now().Add(l.window),
	}
}
