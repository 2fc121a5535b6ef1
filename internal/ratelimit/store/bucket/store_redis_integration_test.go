//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency/internal/ratelimit/store/bucket"
	"agency/pkg/testutil/containers"
)

func TestRedisBucketStore(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	store := bucket.NewRedisBucketStore(rc.Client)
	ctx := context.Background()
	key := "rl:test:" + uuid.NewString()

	for i := range 2 {
		res, err := store.Allow(ctx, key, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 1-i, res.Remaining)
	}

	res, err := store.Allow(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)

	ttl, err := rc.Client.PTTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl, "bucket expires on its own")

	require.NoError(t, store.Reset(ctx, key))
	res, err = store.Allow(ctx, key, 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
