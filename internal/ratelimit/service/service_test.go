package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency/internal/ratelimit/metrics"
	"agency/internal/ratelimit/models"
	"agency/internal/ratelimit/store/bucket"
	dErrors "agency/pkg/domain-errors"
)

type brokenStore struct{}

func (brokenStore) Allow(context.Context, string, int, time.Duration) (*models.RateLimitResult, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Reset(context.Context, string) error { return nil }

func TestCheckIPEnforcesClassLimit(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := New(bucket.NewInMemoryBucketStore(),
		WithMetrics(m),
		WithLimit(models.ClassVisitorCreate, models.Limit{Requests: 2, Window: time.Minute}),
	)
	ctx := context.Background()

	for range 2 {
		res, err := svc.CheckIP(ctx, "203.0.113.7", models.ClassVisitorCreate)
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
	res, err := svc.CheckIP(ctx, "203.0.113.7", models.ClassVisitorCreate)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	res, err = svc.CheckIP(ctx, "203.0.113.7", models.ClassRead)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "classes have separate budgets")

	assert.InDelta(t, 2, testutil.ToFloat64(m.Checks.WithLabelValues("visitor_create", "allowed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Checks.WithLabelValues("visitor_create", "limited")), 0)
}

func TestCheckVisitorSeparatesVisitorsBehindOneIP(t *testing.T) {
	svc := New(bucket.NewInMemoryBucketStore(),
		WithLimit(models.ClassConsentWrite, models.Limit{Requests: 1, Window: time.Minute}),
	)
	ctx := context.Background()

	res, err := svc.CheckVisitor(ctx, "visitor-a", "198.51.100.1", models.ClassConsentWrite)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = svc.CheckVisitor(ctx, "visitor-b", "198.51.100.1", models.ClassConsentWrite)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = svc.CheckVisitor(ctx, "visitor-a", "192.0.2.9", models.ClassConsentWrite)
	require.NoError(t, err)
	assert.False(t, res.Allowed, "budget follows the visitor, not the IP")

	res, err = svc.CheckVisitor(ctx, "", "198.51.100.1", models.ClassConsentWrite)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "anonymous requests fall back to the IP bucket")
}

func TestCheckErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown class", func(t *testing.T) {
		_, err := New(bucket.NewInMemoryBucketStore()).CheckIP(ctx, "ip", models.EndpointClass("admin"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("store failure", func(t *testing.T) {
		m := metrics.New(prometheus.NewRegistry())
		_, err := New(brokenStore{}, WithMetrics(m)).CheckIP(ctx, "ip", models.ClassEvents)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.InDelta(t, 1, testutil.ToFloat64(m.StoreErrors), 0)
	})
}
