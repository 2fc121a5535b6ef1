package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"agency/internal/catalog"
	"agency/internal/catalog/adapters"
	dErrors "agency/pkg/domain-errors"
	"agency/pkg/platform/httputil"
	"agency/pkg/platform/middleware/admin"
	request "agency/pkg/platform/middleware/request"
	pstrings "agency/pkg/platform/strings"
	"agency/pkg/platform/telemetry"
	"agency/pkg/requestcontext"
)

// Source provides the live catalog.
type Source interface {
	Current() *catalog.Catalog
	Reload(ctx context.Context) (catalog.ValidationReport, error)
}

// Config holds presentation settings for catalog responses.
type Config struct {
	JSONLD       adapters.JSONLDOptions
	FeatureLimit int
	AdminToken   string
}

// Handler serves package view-models, JSON-LD and interaction events.
type Handler struct {
	logger   *slog.Logger
	source   Source
	sink     telemetry.Sink
	cfg      Config
	validate *validator.Validate
}

// New creates a new catalog Handler.
func New(source Source, sink telemetry.Sink, logger *slog.Logger, cfg Config) *Handler {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	if cfg.FeatureLimit == 0 {
		cfg.FeatureLimit = adapters.DefaultFeatureLimit
	}
	return &Handler{
		logger:   logger,
		source:   source,
		sink:     sink,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register registers the catalog routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/packages", h.handleGrid)
	r.Get("/v1/packages/jsonld", h.handleListJSONLD)
	r.Get("/v1/packages/{slug}", h.handleDetail)
	r.Get("/v1/packages/{slug}/jsonld", h.handleJSONLD)
	r.Get("/v1/addons", h.handleAddOns)
	r.Post("/v1/events", h.handleEvent)

	r.With(admin.RequireAdminToken(h.cfg.AdminToken, h.logger)).
		Post("/admin/catalog/reload", h.handleReload)
}

func (h *Handler) handleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	cards := adapters.ToPackageGrid(h.source.Current().Bundles, adapters.GridOptions{
		CardOptions:   adapters.CardOptions{FeatureLimit: h.cfg.FeatureLimit},
		FeaturedSlugs: pstrings.SplitCSV(q.Get("featured")),
		Service:       q.Get("service"),
		Limit:         limit,
	})
	httputil.WriteJSON(w, http.StatusOK, GridResponse{Packages: cards})
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	c := h.source.Current()
	b, ok := h.bundle(w, r, c)
	if !ok {
		return
	}
	h.track(r.Context(), telemetry.EventPackageViewed, map[string]string{"slug": b.Slug, "source": "detail"})
	httputil.WriteJSON(w, http.StatusOK, adapters.ToPackageDetail(b, c.AddOnsFor(b)))
}

func (h *Handler) handleJSONLD(w http.ResponseWriter, r *http.Request) {
	b, ok := h.bundle(w, r, h.source.Current())
	if !ok {
		return
	}
	h.writeJSONLD(w, r, adapters.ToServiceJSONLD(b, h.cfg.JSONLD))
}

func (h *Handler) handleListJSONLD(w http.ResponseWriter, r *http.Request) {
	bundles := adapters.SortBundles(h.source.Current().Bundles, pstrings.SplitCSV(r.URL.Query().Get("featured")))
	h.writeJSONLD(w, r, adapters.ToItemListJSONLD(bundles, h.cfg.JSONLD))
}

func (h *Handler) handleAddOns(w http.ResponseWriter, _ *http.Request) {
	addOns := h.source.Current().AddOns
	cards := make([]adapters.AddOnCard, 0, len(addOns))
	for _, a := range addOns {
		cards = append(cards, adapters.ToAddOnCard(a))
	}
	httputil.WriteJSON(w, http.StatusOK, AddOnsResponse{AddOns: cards})
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req EventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	sanitize(&req)
	if err := h.validate.Struct(req); err != nil {
		h.logger.WarnContext(ctx, "invalid event request",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "invalid event"))
		return
	}
	c := h.source.Current()
	if req.Name == telemetry.EventAddOnViewed {
		if _, ok := c.AddOnByID(req.Slug); !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "add-on "+req.Slug+" not found"))
			return
		}
	} else if _, ok := c.BundleBySlug(req.Slug); !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "package "+req.Slug+" not found"))
		return
	}

	props := map[string]string{"slug": req.Slug}
	if req.CTA != "" {
		props["cta"] = req.CTA
	}
	if req.Source != "" {
		props["source"] = req.Source
	}
	h.track(ctx, req.Name, props)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.source.Reload(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "catalog reload rejected",
			"request_id", request.GetRequestID(ctx),
			"errors", len(report.Errors),
			"error", err,
		)
		errs := report.Errors
		if len(errs) == 0 {
			errs = []catalog.Issue{{Message: err.Error()}}
		}
		httputil.WriteJSON(w, httputil.StatusFor(dErrors.CodeOf(err)), ReloadResponse{
			Reloaded: false,
			Errors:   errs,
			Warnings: report.Warnings,
		})
		return
	}
	c := h.source.Current()
	h.logger.InfoContext(ctx, "catalog reloaded",
		"request_id", request.GetRequestID(ctx),
		"bundles", len(c.Bundles),
		"add_ons", len(c.AddOns),
		"warnings", len(report.Warnings),
	)
	httputil.WriteJSON(w, http.StatusOK, ReloadResponse{
		Reloaded: true,
		Bundles:  len(c.Bundles),
		AddOns:   len(c.AddOns),
		Errors:   report.Errors,
		Warnings: report.Warnings,
	})
}

func (h *Handler) bundle(w http.ResponseWriter, r *http.Request, c *catalog.Catalog) (catalog.Bundle, bool) {
	slug := chi.URLParam(r, "slug")
	b, ok := c.BundleBySlug(slug)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "package "+slug+" not found"))
		return catalog.Bundle{}, false
	}
	return b, true
}

func (h *Handler) writeJSONLD(w http.ResponseWriter, r *http.Request, v any) {
	body, err := adapters.MarshalJSONLD(v)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode json-ld",
			"request_id", request.GetRequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode json-ld"))
		return
	}
	w.Header().Set("Content-Type", "application/ld+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) track(ctx context.Context, name string, props map[string]string) {
	h.sink.Track(ctx, telemetry.Event{
		Name:       name,
		VisitorID:  requestcontext.VisitorID(ctx),
		RequestID:  request.GetRequestID(ctx),
		Properties: props,
		Timestamp:  requestcontext.Now(ctx),
	})
}
