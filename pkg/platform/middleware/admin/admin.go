package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"agency/pkg/platform/httputil"
	request "agency/pkg/platform/middleware/request"
)

// HeaderAdminToken carries the operator token for catalog maintenance routes.
const HeaderAdminToken = "X-Admin-Token"

// RequireAdminToken guards operator routes. An empty expected token disables
// the routes entirely.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAdminToken)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "admin token required",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
