package bucket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestInMemoryBucketStoreSlidingWindow(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := NewInMemoryBucketStore(WithMemoryClock(clock.now))

	for i := range 3 {
		res, err := store.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
		clock.advance(10 * time.Second)
	}

	res, err := store.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30, res.RetryAfter, "oldest request leaves the window 30s from now")

	clock.advance(30 * time.Second)
	res, err = store.Allow(ctx, "k", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "first request slid out of the window")
}

func TestInMemoryBucketStoreKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryBucketStore()

	res, err := store.Allow(ctx, "a", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = store.Allow(ctx, "b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = store.Allow(ctx, "a", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestInMemoryBucketStoreResetAndSweep(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := NewInMemoryBucketStore(WithMemoryClock(clock.now))

	_, err := store.Allow(ctx, "a", 1, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Reset(ctx, "a"))
	res, err := store.Allow(ctx, "a", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	_, err = store.Allow(ctx, "b", 5, time.Minute)
	require.NoError(t, err)
	clock.advance(2 * time.Minute)
	assert.Equal(t, 2, store.Sweep())
}
