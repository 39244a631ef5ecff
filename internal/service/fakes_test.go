package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"linkgate/internal/cache"
	"linkgate/internal/entities"
	"linkgate/internal/repository"
)

// fakeRepo is an in-memory LinkRepository recording the write calls the
// redirect path makes.
type fakeRepo struct {
	mu         sync.Mutex
	links      map[string]*entities.Link
	findErr    error
	addHitsErr error

	visits     []*entities.Visit
	hitIncrIDs []int64
	addedHits  map[int64]int64

	// onAddHits, when set, runs during AddHits before the write lands.
	// Lets tests interleave cache activity with the store write.
	onAddHits func()
}

func newFakeRepo(links ...*entities.Link) *fakeRepo {
	r := &fakeRepo{
		links:     make(map[string]*entities.Link),
		addedHits: make(map[int64]int64),
	}
	for _, l := range links {
		r.links[l.Slug] = l
	}
	return r
}

func (r *fakeRepo) FindBySlug(_ context.Context, slug string) (*entities.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	link, ok := r.links[slug]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

func (r *fakeRepo) IncrementHitCount(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hitIncrIDs = append(r.hitIncrIDs, id)
	return nil
}

func (r *fakeRepo) AddHits(_ context.Context, id int64, n int64) error {
	if r.onAddHits != nil {
		r.onAddHits()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addHitsErr != nil {
		return r.addHitsErr
	}
	r.addedHits[id] += n
	return nil
}

func (r *fakeRepo) ActiveSlugs(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slugs := make(map[string]int64)
	for slug, link := range r.links {
		if link.IsActive {
			slugs[slug] = link.ID
		}
	}
	return slugs, nil
}

func (r *fakeRepo) CreateVisit(_ context.Context, visit *entities.Visit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = append(r.visits, visit)
	return nil
}

func (r *fakeRepo) visitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visits)
}

func (r *fakeRepo) storeIncrements() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.hitIncrIDs...)
}

func (r *fakeRepo) added(id int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addedHits[id]
}

func newMemCache(t *testing.T) *cache.MemoryCache {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(mc.Close)
	return mc
}

// downCache simulates an unreachable cache backend.
type downCache struct{}

var errCacheDown = errors.New("cache down")

func (downCache) Get(context.Context, string) (string, error) { return "", errCacheDown }
func (downCache) Set(context.Context, string, string, time.Duration) error {
	return errCacheDown
}
func (downCache) Delete(context.Context, ...string) error { return errCacheDown }
func (downCache) Incr(context.Context, string) (int64, error) { return 0, errCacheDown }
func (downCache) DecrBy(context.Context, string, int64) (int64, error) {
	return 0, errCacheDown
}
func (downCache) Expire(context.Context, string, time.Duration) error {
	return errCacheDown
}
func (downCache) TTL(context.Context, string) (time.Duration, error) {
	return 0, errCacheDown
}

var _ cache.Cache = downCache{}
