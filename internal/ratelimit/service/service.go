// Package service decides whether a request fits its identity's budget.
package service

import (
	"context"
	"log/slog"

	"agency/internal/ratelimit/metrics"
	"agency/internal/ratelimit/models"
	"agency/internal/ratelimit/store/bucket"
	dErrors "agency/pkg/domain-errors"
)

type Service struct {
	buckets bucket.Store
	limits  map[models.EndpointClass]models.Limit
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLimit overrides the budget for one class.
func WithLimit(class models.EndpointClass, limit models.Limit) Option {
	return func(s *Service) {
		s.limits[class] = limit
	}
}

func New(buckets bucket.Store, opts ...Option) *Service {
	s := &Service{
		buckets: buckets,
		limits:  models.DefaultLimits(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIP counts the request against the client IP.
func (s *Service) CheckIP(ctx context.Context, ip string, class models.EndpointClass) (*models.RateLimitResult, error) {
	return s.check(ctx, models.KeyPrefixIP, ip, class)
}

// CheckVisitor counts the request against the visitor when one is known and
// against the IP otherwise, so tokens cannot be rotated to dodge the budget
// while visitors behind one NAT do not share it.
func (s *Service) CheckVisitor(ctx context.Context, visitorID, ip string, class models.EndpointClass) (*models.RateLimitResult, error) {
	if visitorID == "" {
		return s.CheckIP(ctx, ip, class)
	}
	return s.check(ctx, models.KeyPrefixVisitor, visitorID, class)
}

func (s *Service) check(ctx context.Context, prefix models.KeyPrefix, identifier string, class models.EndpointClass) (*models.RateLimitResult, error) {
	limit, ok := s.limits[class]
	if !ok || !class.IsValid() {
		return nil, dErrors.New(dErrors.CodeInternal, "no rate limit configured for "+string(class))
	}
	if identifier == "" {
		identifier = "unknown"
	}

	result, err := s.buckets.Allow(ctx, models.Key(prefix, identifier, class), limit.Requests, limit.Window)
	if err != nil {
		s.metrics.IncrementStoreErrors()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check rate limit")
	}
	s.metrics.IncrementCheck(string(class), result.Allowed)
	if !result.Allowed {
		s.logger.InfoContext(ctx, "rate limit exceeded",
			"endpoint_class", class,
			"limit_type", prefix,
			"retry_after", result.RetryAfter,
		)
	}
	return result, nil
}
