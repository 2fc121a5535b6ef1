// Package bucket holds sliding window counters keyed by identity and
// endpoint class.
package bucket

import (
	"context"
	"time"

	"agency/internal/ratelimit/models"
)

// Store manages sliding window rate limit counters.
type Store interface {
	// Allow checks if a single request is allowed and consumes one slot if so.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)

	// Reset clears the rate limit counter for a key.
	Reset(ctx context.Context, key string) error
}

func retryAfter(resetAt, now time.Time) int {
	secs := int(resetAt.Sub(now).Round(time.Second) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
