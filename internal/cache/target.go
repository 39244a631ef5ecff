package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// DefaultTargetTTL is how long a slug's resolved target stays cached.
const DefaultTargetTTL = time.Hour

func targetKey(slug string) string {
	return fmt.Sprintf("slug:%s:target", slug)
}

func hitsKey(slug string) string {
	return fmt.Sprintf("slug:%s:hits", slug)
}

// TargetCache is the cache-aside layer for slug -> target URL resolution
// plus the per-slug shadow hit counter. All methods degrade: a backend
// failure is reported to the caller, never turned into a wrong answer.
type TargetCache struct {
	cache Cache
	ttl   time.Duration
}

// NewTargetCache creates a TargetCache on top of a shared Cache.
// A non-positive ttl falls back to DefaultTargetTTL.
func NewTargetCache(c Cache, ttl time.Duration) *TargetCache {
	if ttl <= 0 {
		ttl = DefaultTargetTTL
	}
	return &TargetCache{cache: c, ttl: ttl}
}

// GetTarget returns the cached target URL for a slug.
// A miss returns ErrCacheMiss; callers fall back to the store record.
func (t *TargetCache) GetTarget(ctx context.Context, slug string) (string, error) {
	return t.cache.Get(ctx, targetKey(slug))
}

// SetTarget caches the target URL for a slug with the configured TTL.
func (t *TargetCache) SetTarget(ctx context.Context, slug, targetURL string) error {
	return t.cache.Set(ctx, targetKey(slug), targetURL, t.ttl)
}

// Invalidate removes both the target entry and the hit-counter entry for
// a slug. Called by the external update/delete flows through the
// invalidation hook.
func (t *TargetCache) Invalidate(ctx context.Context, slug string) error {
	return t.cache.Delete(ctx, targetKey(slug), hitsKey(slug))
}

// IncrementHit atomically increments the shadow hit counter for a slug
// and refreshes its TTL. The TTL is rolling: a link that keeps getting
// clicked keeps its counter alive until the sync job drains it.
func (t *TargetCache) IncrementHit(ctx context.Context, slug string) (int64, error) {
	count, err := t.cache.Incr(ctx, hitsKey(slug))
	if err != nil {
		return 0, err
	}
	if err := t.cache.Expire(ctx, hitsKey(slug), t.ttl); err != nil {
		// The count is already durable in the counter; a failed TTL
		// refresh just means it expires on the previous schedule
		return count, err
	}
	return count, nil
}

// HitCount returns the shadow hit counter for a slug, 0 if absent.
// Used by the reconciliation job, not the redirect path.
func (t *TargetCache) HitCount(ctx context.Context, slug string) (int64, error) {
	val, err := t.cache.Get(ctx, hitsKey(slug))
	if err == ErrCacheMiss {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// DeductHits subtracts n from the shadow hit counter after that amount
// has been folded into the authoritative store. It decrements rather
// than deleting so increments that land between the read and the store
// write are kept for the next sync cycle.
func (t *TargetCache) DeductHits(ctx context.Context, slug string, n int64) error {
	_, err := t.cache.DecrBy(ctx, hitsKey(slug), n)
	return err
}
