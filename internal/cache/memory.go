package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// entry is a value with an absolute expiration deadline.
// A zero deadline means the entry never expires.
type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache is an in-process Cache used when Redis is unreachable and
// in tests. It is a local performance shortcut only: in a horizontally
// scaled deployment each instance sees its own counters, so rate limits
// and hit shadows are per-instance until Redis comes back.
type MemoryCache struct {
	mu        sync.Mutex
	entries   map[string]entry
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	mc := &MemoryCache{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}

	// Sweep expired entries periodically to bound memory
	go mc.sweep()

	return mc
}

// Close stops the background sweeper.
func (m *MemoryCache) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
	})
}

func (m *MemoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
		}

		now := time.Now()
		m.mu.Lock()
		for k, e := range m.entries {
			if e.expired(now) {
				delete(m.entries, k)
			}
		}
		m.mu.Unlock()
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(time.Now()) {
		delete(m.entries, key)
		return "", ErrCacheMiss
	}
	return e.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: value}
	if expiration > 0 {
		e.expiresAt = time.Now().Add(expiration)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	return m.add(key, 1)
}

func (m *MemoryCache) DecrBy(_ context.Context, key string, n int64) (int64, error) {
	return m.add(key, -n)
}

// add adjusts a counter by delta, creating it at delta if absent,
// matching Redis INCR/DECRBY semantics (no expiration on creation, an
// existing TTL is preserved).
func (m *MemoryCache) add(key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	e, ok := m.entries[key]
	if !ok || e.expired(now) {
		m.entries[key] = entry{value: strconv.FormatInt(delta, 10)}
		return delta, nil
	}

	count, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, err
	}
	count += delta
	e.value = strconv.FormatInt(count, 10)
	m.entries[key] = e
	return count, nil
}

func (m *MemoryCache) Expire(_ context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil
	}
	e.expiresAt = time.Now().Add(expiration)
	m.entries[key] = e
	return nil
}

func (m *MemoryCache) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(time.Now()) {
		return -2 * time.Millisecond, nil // key does not exist, Redis PTTL convention
	}
	if e.expiresAt.IsZero() {
		return -1 * time.Millisecond, nil // no expiration set
	}
	return time.Until(e.expiresAt), nil
}
