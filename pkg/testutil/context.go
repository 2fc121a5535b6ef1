package testutil

import (
	"net/http"

	"agency/pkg/requestcontext"
)

// WithVisitor adds a visitor ID to the request context.
// This simulates what the visitor auth middleware does for authenticated requests.
// Empty IDs are ignored.
func WithVisitor(req *http.Request, visitorID string) *http.Request {
	if visitorID == "" {
		return req
	}
	return req.WithContext(requestcontext.WithVisitorID(req.Context(), visitorID))
}

// WithBearer sets the Authorization header to a visitor token.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
