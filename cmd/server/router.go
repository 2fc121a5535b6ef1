package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agency/internal/catalog/adapters"
	cataloghandler "agency/internal/catalog/handler"
	consenthandler "agency/internal/consent/handler"
	jwttoken "agency/internal/jwt_token"
	"agency/internal/platform/config"
	"agency/internal/platform/metrics"
	ratelimitmw "agency/internal/ratelimit/middleware"
	"agency/internal/ratelimit/models"
	"agency/pkg/platform/httputil"
	authmw "agency/pkg/platform/middleware/auth"
	"agency/pkg/platform/middleware/metadata"
	request "agency/pkg/platform/middleware/request"
	"agency/pkg/platform/middleware/requesttime"
	"agency/pkg/platform/telemetry"
)

type routerDeps struct {
	cfg     config.Server
	logger  *slog.Logger
	metrics *metrics.Metrics
	catalog cataloghandler.Source
	consent consenthandler.Service
	tokens  *jwttoken.JWTService
	events  telemetry.Sink
	limiter *ratelimitmw.Middleware
}

// classify maps requests to rate limit classes for handlers that register
// their own routes.
func classify(r *http.Request) models.EndpointClass {
	switch {
	case r.Method == http.MethodGet:
		return models.ClassRead
	case r.URL.Path == "/v1/visitors":
		return models.ClassVisitorCreate
	case r.URL.Path == "/v1/events":
		return models.ClassEvents
	default:
		return models.ClassConsentWrite
	}
}

func newRouter(d routerDeps) chi.Router {
	validator := jwttoken.NewJWTServiceAdapter(d.tokens)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(d.logger))
	r.Use(request.Logger(d.logger))
	r.Use(request.Latency(d.metrics))
	r.Use(metadata.ClientMetadata(d.cfg.TrustedProxies...))
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", d.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(d.cfg.RequestTimeout))
		r.Use(request.ContentTypeJSON)
		r.Use(authmw.OptionalVisitor(validator))
		r.Use(d.limiter.RateLimitClassified(classify))

		cataloghandler.New(d.catalog, d.events, d.logger, cataloghandler.Config{
			JSONLD: adapters.JSONLDOptions{
				BaseURL:      d.cfg.Catalog.BaseURL,
				ProviderName: d.cfg.Catalog.ProviderName,
			},
			FeatureLimit: d.cfg.Catalog.FeatureLimit,
			AdminToken:   d.cfg.AdminToken,
		}).Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(d.cfg.RequestTimeout))
		r.Use(request.ContentTypeJSON)
		r.Use(authmw.OptionalVisitor(validator))
		r.Use(d.limiter.RateLimitClassified(classify))

		consenthandler.New(d.consent, d.tokens, validator, d.logger, consenthandler.Config{
			TokenTTL:     d.cfg.VisitorTokenTTL,
			SecureCookie: d.cfg.SecureCookie,
		}).Register(r)
	})

	return r
}
