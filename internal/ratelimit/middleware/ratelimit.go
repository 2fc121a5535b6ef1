package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"agency/internal/ratelimit/models"
	"agency/pkg/platform/httputil"
	request "agency/pkg/platform/middleware/request"
	"agency/pkg/requestcontext"
)

type RateLimiter interface {
	CheckIP(ctx context.Context, ip string, class models.EndpointClass) (*models.RateLimitResult, error)
	CheckVisitor(ctx context.Context, visitorID, ip string, class models.EndpointClass) (*models.RateLimitResult, error)
}

type Middleware struct {
	limiter  RateLimiter
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit budgets requests per client IP.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	return m.limit(func(*http.Request) models.EndpointClass { return class }, false)
}

// RateLimitVisitor budgets requests per visitor, falling back to the client
// IP for anonymous requests. Mount it after the visitor auth middleware.
func (m *Middleware) RateLimitVisitor(class models.EndpointClass) func(http.Handler) http.Handler {
	return m.limit(func(*http.Request) models.EndpointClass { return class }, true)
}

// RateLimitClassified is RateLimitVisitor with the class chosen per request,
// for handlers that register their own routes.
func (m *Middleware) RateLimitClassified(classify func(*http.Request) models.EndpointClass) func(http.Handler) http.Handler {
	return m.limit(classify, true)
}

func (m *Middleware) limit(classify func(*http.Request) models.EndpointClass, byVisitor bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			class := classify(r)
			ip := requestcontext.ClientIP(ctx)
			var (
				result *models.RateLimitResult
				err    error
			)
			if byVisitor {
				result, err = m.limiter.CheckVisitor(ctx, requestcontext.VisitorID(ctx), ip, class)
			} else {
				result, err = m.limiter.CheckIP(ctx, ip, class)
			}
			if err != nil {
				// Fail open: a broken limiter must not take the site down.
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"request_id", request.GetRequestID(ctx),
					"endpoint_class", class,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:            "rate_limit_exceeded",
		ErrorDescription: "Too many requests. Please try again later.",
		RetryAfter:       result.RetryAfter,
	})
}
