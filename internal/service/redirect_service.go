package service

import (
	"context"
	"errors"
	"log"
	"time"

	"linkgate/internal/analytics"
	"linkgate/internal/cache"
	"linkgate/internal/entities"
	"linkgate/internal/gate"
	"linkgate/internal/repository"
)

// RedirectService composes the link store, the gate evaluator, the
// target cache, and the visit logger into the redirect resolution path.
type RedirectService interface {
	// Resolve decides the fate of a redirect request for a slug.
	// On success it returns the target URL and schedules the detached
	// hit increment and visit log. Blocked states come back as the
	// service sentinel errors; repository.ErrLinkNotFound passes
	// through; anything else is an infrastructure fault.
	Resolve(ctx context.Context, slug string, grant *gate.Grant, meta analytics.RequestMetadata) (string, error)

	// Invalidate drops the cached target and shadow hit counter for a
	// slug. Hook for the external update/delete flows.
	Invalidate(ctx context.Context, slug string) error
}

type redirectService struct {
	repo    repository.LinkRepository
	targets *cache.TargetCache
	visits  *analytics.VisitLogger
}

// NewRedirectService creates the redirect orchestrator.
func NewRedirectService(repo repository.LinkRepository, targets *cache.TargetCache, visits *analytics.VisitLogger) RedirectService {
	return &redirectService{
		repo:    repo,
		targets: targets,
		visits:  visits,
	}
}

func (s *redirectService) Resolve(ctx context.Context, slug string, grant *gate.Grant, meta analytics.RequestMetadata) (string, error) {
	// The full record is needed for gating either way, so the cache
	// miss path below never costs a second store round-trip
	link, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	switch decision := gate.Evaluate(link, time.Now(), grant); decision {
	case gate.Inactive:
		return "", ErrLinkInactive
	case gate.Expired:
		return "", ErrLinkExpired
	case gate.Exhausted:
		return "", ErrLinkExhausted
	case gate.PasswordRequired:
		return "", ErrPasswordRequired
	case gate.Allow:
	}

	targetURL := s.resolveTarget(ctx, link)

	// Hit accounting and visit telemetry are detached from the
	// response: neither their latency nor their failure may delay or
	// fail the redirect, and a client disconnect must not skip them
	go s.recordVisit(link, meta)

	return targetURL, nil
}

// resolveTarget reads through the target cache, falling back to the
// already-fetched record when the cache misses or is unreachable.
func (s *redirectService) resolveTarget(ctx context.Context, link *entities.Link) string {
	cached, err := s.targets.GetTarget(ctx, link.Slug)
	if err == nil && cached != "" {
		return cached
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("Warning: target cache unavailable for %s: %v", link.Slug, err)
	}

	if err := s.targets.SetTarget(ctx, link.Slug, link.TargetURL); err != nil {
		log.Printf("Warning: failed to cache target for %s: %v", link.Slug, err)
	}
	return link.TargetURL
}

// recordVisit runs off the response path with its own context.
func (s *redirectService) recordVisit(link *entities.Link, meta analytics.RequestMetadata) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.targets.IncrementHit(ctx, link.Slug); err != nil {
		log.Printf("Warning: failed to increment cached hits for %s: %v", link.Slug, err)
		// Degraded path: count directly in the store so the click
		// is not lost while the cache is down
		if err := s.repo.IncrementHitCount(ctx, link.ID); err != nil {
			log.Printf("Warning: failed to increment stored hits for %s: %v", link.Slug, err)
		}
	}

	s.visits.LogVisit(link.ID, meta)
}

func (s *redirectService) Invalidate(ctx context.Context, slug string) error {
	return s.targets.Invalidate(ctx, slug)
}
