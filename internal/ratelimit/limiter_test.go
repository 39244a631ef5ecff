package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkgate/internal/cache"
)

func newTestStore(t *testing.T) *cache.MemoryCache {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(mc.Close)
	return mc
}

func TestLimiterAllowsWithinWindow(t *testing.T) {
	l := NewLimiter(newTestStore(t), time.Minute, 5)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		result := l.Check(ctx, "1.2.3.4")
		assert.True(t, result.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 5-i, result.Remaining)
	}
}

func TestLimiterBlocksSixthRequest(t *testing.T) {
	l := NewLimiter(newTestStore(t), time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.True(t, l.Check(ctx, "1.2.3.4").Allowed)
	}

	result := l.Check(ctx, "1.2.3.4")
	assert.False(t, result.Allowed)
	assert.Equal(t, int64(0), result.Remaining)

	// Over-limit requests keep counting against the window, so
	// Remaining stays 0 for the rest of the burst
	result = l.Check(ctx, "1.2.3.4")
	assert.False(t, result.Allowed)
	assert.Equal(t, int64(0), result.Remaining)
}

func TestLimiterIsolatesClients(t *testing.T) {
	l := NewLimiter(newTestStore(t), time.Minute, 1)
	ctx := context.Background()

	require.True(t, l.Check(ctx, "1.2.3.4").Allowed)
	require.False(t, l.Check(ctx, "1.2.3.4").Allowed)

	assert.True(t, l.Check(ctx, "5.6.7.8").Allowed)
}

func TestLimiterWindowResets(t *testing.T) {
	l := NewLimiter(newTestStore(t), 40*time.Millisecond, 1)
	ctx := context.Background()

	require.True(t, l.Check(ctx, "1.2.3.4").Allowed)
	require.False(t, l.Check(ctx, "1.2.3.4").Allowed)

	time.Sleep(60 * time.Millisecond)

	result := l.Check(ctx, "1.2.3.4")
	assert.True(t, result.Allowed)
	assert.Equal(t, int64(0), result.Remaining)
}

func TestLimiterResetAtWithinWindow(t *testing.T) {
	l := NewLimiter(newTestStore(t), time.Minute, 5)

	before := time.Now()
	result := l.Check(context.Background(), "1.2.3.4")

	assert.False(t, result.ResetAt.Before(before))
	assert.True(t, result.ResetAt.Before(before.Add(2*time.Minute)))
}

// failingCache simulates an unreachable backing store.
type failingCache struct{}

var errDown = errors.New("store down")

func (failingCache) Get(context.Context, string) (string, error) { return "", errDown }
func (failingCache) Set(context.Context, string, string, time.Duration) error {
	return errDown
}
func (failingCache) Delete(context.Context, ...string) error { return errDown }
func (failingCache) Incr(context.Context, string) (int64, error) { return 0, errDown }
func (failingCache) DecrBy(context.Context, string, int64) (int64, error) {
	return 0, errDown
}
func (failingCache) Expire(context.Context, string, time.Duration) error {
	return errDown
}
func (failingCache) TTL(context.Context, string) (time.Duration, error) {
	return 0, errDown
}

func TestLimiterFailsOpen(t *testing.T) {
	l := NewLimiter(failingCache{}, time.Minute, 5)

	result := l.Check(context.Background(), "1.2.3.4")
	assert.True(t, result.Allowed)
	assert.Equal(t, int64(5), result.Remaining)
	assert.False(t, result.ResetAt.IsZero())
}
