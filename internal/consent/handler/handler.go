package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	consentModel "agency/internal/consent/models"
	"agency/internal/consent/service"
	dErrors "agency/pkg/domain-errors"
	"agency/pkg/platform/httputil"
	authmw "agency/pkg/platform/middleware/auth"
	request "agency/pkg/platform/middleware/request"
	"agency/pkg/requestcontext"
)

// Service defines the interface for consent operations.
type Service interface {
	RegisterVisitor(ctx context.Context, visitorID string) (*service.State, error)
	State(ctx context.Context, visitorID string) (*service.State, error)
	Accept(ctx context.Context, visitorID, consentID string) (*service.State, error)
	Decline(ctx context.Context, visitorID, consentID string) (*service.State, error)
	Withdraw(ctx context.Context, visitorID, consentID string) (*service.State, error)
	AcceptAllOptional(ctx context.Context, visitorID string) (*service.State, error)
	DeclineAllOptional(ctx context.Context, visitorID string) (*service.State, error)
	WithdrawAll(ctx context.Context, visitorID string) (*service.State, error)
	History(ctx context.Context, visitorID string) ([]consentModel.Record, error)
	Preferences(ctx context.Context, visitorID string) (consentModel.Preferences, error)
	Reset(ctx context.Context, visitorID string) error
}

// TokenIssuer mints visitor tokens.
type TokenIssuer interface {
	IssueVisitorToken(visitorID uuid.UUID, expiresIn time.Duration) (string, time.Time, error)
}

// Config holds visitor token settings.
type Config struct {
	TokenTTL     time.Duration
	SecureCookie bool
}

// Handler handles visitor and consent endpoints.
type Handler struct {
	logger    *slog.Logger
	consent   Service
	tokens    TokenIssuer
	validator authmw.JWTValidator
	cfg       Config
}

// New creates a new consent Handler.
func New(
	consent Service,
	tokens TokenIssuer,
	validator authmw.JWTValidator,
	logger *slog.Logger,
	cfg Config) *Handler {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 180 * 24 * time.Hour
	}
	return &Handler{
		logger:    logger,
		consent:   consent,
		tokens:    tokens,
		validator: validator,
		cfg:       cfg,
	}
}

// Register registers the visitor and consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/visitors", h.handleCreateVisitor)

	r.Route("/v1/consents", func(cr chi.Router) {
		cr.Use(authmw.RequireVisitor(h.validator, h.logger))
		cr.Get("/", h.handleGetState)
		cr.Delete("/", h.handleReset)
		cr.Get("/history", h.handleHistory)
		cr.Get("/preferences", h.handlePreferences)
		cr.Post("/accept-optional", h.bulk(h.consent.AcceptAllOptional))
		cr.Post("/decline-optional", h.bulk(h.consent.DeclineAllOptional))
		cr.Post("/withdraw-all", h.bulk(h.consent.WithdrawAll))
		cr.Post("/{id}/accept", h.single(h.consent.Accept))
		cr.Post("/{id}/decline", h.single(h.consent.Decline))
		cr.Post("/{id}/withdraw", h.single(h.consent.Withdraw))
	})
}

// handleCreateVisitor issues a visitor token and seeds the default items.
func (h *Handler) handleCreateVisitor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	visitorID := uuid.New()
	token, expiresAt, err := h.tokens.IssueVisitorToken(visitorID, h.cfg.TokenTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue visitor token",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue visitor token"))
		return
	}

	state, err := h.consent.RegisterVisitor(ctx, visitorID.String())
	if err != nil {
		h.writeServiceError(ctx, w, "register visitor", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authmw.VisitorTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusCreated, CreateVisitorResponse{
		VisitorID: visitorID.String(),
		Token:     token,
		ExpiresAt: expiresAt,
		Consents:  state,
	})
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	visitorID, ok := h.requireVisitorID(w, r)
	if !ok {
		return
	}
	state, err := h.consent.State(r.Context(), visitorID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "get consent state", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	visitorID, ok := h.requireVisitorID(w, r)
	if !ok {
		return
	}
	history, err := h.consent.History(r.Context(), visitorID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "get consent history", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{History: history})
}

func (h *Handler) handlePreferences(w http.ResponseWriter, r *http.Request) {
	visitorID, ok := h.requireVisitorID(w, r)
	if !ok {
		return
	}
	prefs, err := h.consent.Preferences(r.Context(), visitorID)
	if err != nil {
		h.writeServiceError(r.Context(), w, "get consent preferences", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PreferencesResponse{Preferences: prefs})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	visitorID, ok := h.requireVisitorID(w, r)
	if !ok {
		return
	}
	if err := h.consent.Reset(r.Context(), visitorID); err != nil {
		h.writeServiceError(r.Context(), w, "reset consent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type singleFunc func(ctx context.Context, visitorID, consentID string) (*service.State, error)

func (h *Handler) single(apply singleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitorID, ok := h.requireVisitorID(w, r)
		if !ok {
			return
		}
		consentID := strings.TrimSpace(chi.URLParam(r, "id"))
		if consentID == "" || len(consentID) > maxConsentIDLen {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid consent id"))
			return
		}
		state, err := apply(r.Context(), visitorID, consentID)
		if err != nil {
			h.writeServiceError(r.Context(), w, "update consent", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, state)
	}
}

type bulkFunc func(ctx context.Context, visitorID string) (*service.State, error)

func (h *Handler) bulk(apply bulkFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visitorID, ok := h.requireVisitorID(w, r)
		if !ok {
			return
		}
		state, err := apply(r.Context(), visitorID)
		if err != nil {
			h.writeServiceError(r.Context(), w, "bulk update consent", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, state)
	}
}

const maxConsentIDLen = 64

func (h *Handler) requireVisitorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()
	visitorID := requestcontext.VisitorID(ctx)
	if visitorID == "" {
		// RequireVisitor guarantees this; reaching here means a wiring bug
		h.logger.ErrorContext(ctx, "visitorID missing from context despite auth middleware",
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return visitorID, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, op+" failed",
		"request_id", request.GetRequestID(ctx),
		"visitor_id", requestcontext.VisitorID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
