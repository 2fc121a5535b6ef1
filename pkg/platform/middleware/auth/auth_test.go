package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"agency/pkg/requestcontext"
)

type stubValidator map[string]string

func (s stubValidator) ValidateToken(token string) (*VisitorClaims, error) {
	if id, ok := s[token]; ok {
		return &VisitorClaims{VisitorID: id, JTI: "jti-" + id}, nil
	}
	return nil, errors.New("bad token")
}

func TestRequireVisitor(t *testing.T) {
	validator := stubValidator{"good": "visitor-1"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var seen string
	h := RequireVisitor(validator, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.VisitorID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name      string
		prepare   func(*http.Request)
		wantCode  int
		wantSeen  string
		wantError string
	}{
		{
			name:     "bearer token",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") },
			wantCode: http.StatusNoContent,
			wantSeen: "visitor-1",
		},
		{
			name:     "cookie token",
			prepare:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: VisitorTokenCookie, Value: "good"}) },
			wantCode: http.StatusNoContent,
			wantSeen: "visitor-1",
		},
		{
			name:      "missing token",
			prepare:   func(*http.Request) {},
			wantCode:  http.StatusUnauthorized,
			wantError: "Missing visitor token",
		},
		{
			name:      "invalid token",
			prepare:   func(r *http.Request) { r.Header.Set("Authorization", "Bearer forged") },
			wantCode:  http.StatusUnauthorized,
			wantError: "Invalid or expired token",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/consents", nil)
			tt.prepare(req)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantSeen, seen)
			if tt.wantError != "" {
				assert.Contains(t, rr.Body.String(), tt.wantError)
			}
		})
	}
}

func TestOptionalVisitor(t *testing.T) {
	var seen string
	h := OptionalVisitor(stubValidator{"good": "visitor-1"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.VisitorID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/events", nil)
	req.Header.Set("Authorization", "Bearer forged")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, seen)

	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "visitor-1", seen)
}
