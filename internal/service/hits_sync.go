package service

import (
	"context"
	"log"
	"time"

	"linkgate/internal/cache"
	"linkgate/internal/repository"
)

// HitSyncer periodically folds the cache's shadow hit counters into the
// authoritative store. The shadow counter only has to survive its TTL
// window; this job is what makes the hits durable.
type HitSyncer struct {
	repo     repository.LinkRepository
	targets  *cache.TargetCache
	interval time.Duration
}

// NewHitSyncer creates a reconciliation job with the given interval.
func NewHitSyncer(repo repository.LinkRepository, targets *cache.TargetCache, interval time.Duration) *HitSyncer {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &HitSyncer{
		repo:     repo,
		targets:  targets,
		interval: interval,
	}
}

// Run reconciles on a ticker until the context is cancelled.
func (h *HitSyncer) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.SyncOnce(ctx); err != nil {
				log.Printf("Warning: hit sync pass failed: %v", err)
			}
		}
	}
}

// SyncOnce runs a single reconciliation pass over all active links.
// Per-slug failures are logged and skipped; the pass keeps going.
func (h *HitSyncer) SyncOnce(ctx context.Context) error {
	slugs, err := h.repo.ActiveSlugs(ctx)
	if err != nil {
		return err
	}

	for slug, id := range slugs {
		count, err := h.targets.HitCount(ctx, slug)
		if err != nil {
			log.Printf("Warning: failed to read cached hits for %s: %v", slug, err)
			continue
		}
		if count == 0 {
			continue
		}

		if err := h.repo.AddHits(ctx, id, count); err != nil {
			// Leave the shadow counter in place so the hits are
			// retried on the next pass
			log.Printf("Warning: failed to sync %d hits for %s: %v", count, slug, err)
			continue
		}

		// Deduct exactly what was written, not the whole counter:
		// clicks that arrive between HitCount and AddHits stay in
		// the shadow for the next pass
		if err := h.targets.DeductHits(ctx, slug, count); err != nil {
			log.Printf("Warning: failed to deduct synced hits for %s: %v", slug, err)
		}
	}

	return nil
}
