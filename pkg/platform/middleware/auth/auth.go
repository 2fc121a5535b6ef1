package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"agency/pkg/platform/httputil"
	request "agency/pkg/platform/middleware/request"
	"agency/pkg/requestcontext"
)

// VisitorTokenCookie is read when no Authorization header is present, so
// browsers can carry the visitor token without script access.
const VisitorTokenCookie = "agency_visitor"

// JWTValidator defines the interface for validating visitor tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*VisitorClaims, error)
}

// VisitorClaims represents the claims we expect from the JWT validator
type VisitorClaims struct {
	VisitorID string
	JTI       string
}

func writeUnauthorized(w http.ResponseWriter, desc string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
		Error:            "unauthorized",
		ErrorDescription: desc,
	})
}

// tokenFrom prefers a bearer header and falls back to the visitor cookie.
func tokenFrom(r *http.Request) (string, bool) {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && after != "" {
		return after, true
	}
	if c, err := r.Cookie(VisitorTokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// RequireVisitor rejects requests without a valid visitor token and stores
// the visitor ID in the request context.
func RequireVisitor(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := tokenFrom(r)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing visitor token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithVisitorID(ctx, claims.VisitorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalVisitor attaches the visitor ID when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalVisitor(validator JWTValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := tokenFrom(r); ok {
				if claims, err := validator.ValidateToken(token); err == nil {
					r = r.WithContext(requestcontext.WithVisitorID(r.Context(), claims.VisitorID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
