package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"agency/internal/consent/handler/mocks"
	consentModel "agency/internal/consent/models"
	"agency/internal/consent/service"
	dErrors "agency/pkg/domain-errors"
	authmw "agency/pkg/platform/middleware/auth"
)

//go:generate mockgen -source=handler.go -destination=mocks/consent-mocks.go -package=mocks Service,TokenIssuer

// =============================================================================
// Consent Handler Test Suite
// =============================================================================
// Justification for unit tests: handlers own routing, visitor extraction and
// error-to-status mapping. Consent rules are covered by service tests.

const (
	validToken = "valid-token"
	visitorID  = "8d3c1f0e-0000-4000-8000-000000000001"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*authmw.VisitorClaims, error) {
	if token == validToken {
		return &authmw.VisitorClaims{VisitorID: visitorID}, nil
	}
	return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
}

type ConsentHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	tokens  *mocks.MockTokenIssuer
	router  chi.Router
}

func TestConsentHandlerSuite(t *testing.T) {
	suite.Run(t, new(ConsentHandlerSuite))
}

func (s *ConsentHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.tokens = mocks.NewMockTokenIssuer(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(s.service, s.tokens, stubValidator{}, logger, Config{TokenTTL: time.Hour})
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *ConsentHandlerSuite) do(method, path string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authed {
		req.Header.Set("Authorization", "Bearer "+validToken)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sampleState() *service.State {
	return &service.State{
		VisitorID: visitorID,
		Items:     consentModel.DefaultItems(),
		Validation: consentModel.ValidationResult{
			MissingRequired: []string{"terms-of-service"},
		},
		Preferences: consentModel.Preferences{"analytics": true},
	}
}

func (s *ConsentHandlerSuite) TestCreateVisitor() {
	expiresAt := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	var issued uuid.UUID
	s.tokens.EXPECT().IssueVisitorToken(gomock.Any(), time.Hour).
		DoAndReturn(func(id uuid.UUID, _ time.Duration) (string, time.Time, error) {
			issued = id
			return "signed", expiresAt, nil
		})
	s.service.EXPECT().RegisterVisitor(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id string) (*service.State, error) {
			s.Equal(issued.String(), id, "state is seeded for the visitor in the token")
			return sampleState(), nil
		})

	rec := s.do(http.MethodPost, "/v1/visitors", false)

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var resp CreateVisitorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("signed", resp.Token)
	s.Equal(issued.String(), resp.VisitorID)
	s.True(expiresAt.Equal(resp.ExpiresAt))
	s.Len(resp.Consents.Items, len(consentModel.DefaultItems()))

	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(authmw.VisitorTokenCookie, cookies[0].Name)
	s.True(cookies[0].HttpOnly)
}

func (s *ConsentHandlerSuite) TestCreateVisitorTokenFailure() {
	s.tokens.EXPECT().IssueVisitorToken(gomock.Any(), gomock.Any()).
		Return("", time.Time{}, errors.New("key unavailable"))

	rec := s.do(http.MethodPost, "/v1/visitors", false)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.JSONEq(`{"error":"internal_error"}`, rec.Body.String())
}

func (s *ConsentHandlerSuite) TestConsentRoutesRequireVisitor() {
	rec := s.do(http.MethodGet, "/v1/consents", false)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *ConsentHandlerSuite) TestGetState() {
	s.service.EXPECT().State(gomock.Any(), visitorID).Return(sampleState(), nil)

	rec := s.do(http.MethodGet, "/v1/consents", true)

	s.Require().Equal(http.StatusOK, rec.Code)
	var resp service.State
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal([]string{"terms-of-service"}, resp.Validation.MissingRequired)
	s.True(resp.Preferences["analytics"])
}

func (s *ConsentHandlerSuite) TestSingleTransitions() {
	s.service.EXPECT().Accept(gomock.Any(), visitorID, "analytics-cookies").Return(sampleState(), nil)
	s.service.EXPECT().Decline(gomock.Any(), visitorID, "marketing-emails").Return(sampleState(), nil)
	s.service.EXPECT().Withdraw(gomock.Any(), visitorID, "personalization").Return(sampleState(), nil)

	s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/consents/analytics-cookies/accept", true).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/consents/marketing-emails/decline", true).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/consents/personalization/withdraw", true).Code)
}

func (s *ConsentHandlerSuite) TestTransitionErrorsMapToStatus() {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown item", dErrors.New(dErrors.CodeNotFound, "consent x not found"), http.StatusNotFound},
		{"invalid transition", dErrors.New(dErrors.CodeConflict, "consent x is not accepted"), http.StatusConflict},
		{"required item", dErrors.New(dErrors.CodeInvalidConsent, "required consent terms cannot be declined"), http.StatusUnprocessableEntity},
		{"lock timeout", dErrors.New(dErrors.CodeTimeout, "consent update aborted"), http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.EXPECT().Decline(gomock.Any(), visitorID, "x").Return(nil, tt.err)

			rec := s.do(http.MethodPost, "/v1/consents/x/decline", true)

			s.Equal(tt.want, rec.Code, rec.Body.String())
		})
	}
}

func (s *ConsentHandlerSuite) TestBulkRoutes() {
	s.service.EXPECT().AcceptAllOptional(gomock.Any(), visitorID).Return(sampleState(), nil)
	s.service.EXPECT().DeclineAllOptional(gomock.Any(), visitorID).Return(sampleState(), nil)
	s.service.EXPECT().WithdrawAll(gomock.Any(), visitorID).Return(sampleState(), nil)

	s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/consents/accept-optional", true).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/consents/decline-optional", true).Code)
	s.Equal(http.StatusOK, s.do(http.MethodPost, "/v1/consents/withdraw-all", true).Code)
}

func (s *ConsentHandlerSuite) TestHistoryAndPreferences() {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.service.EXPECT().History(gomock.Any(), visitorID).Return([]consentModel.Record{{
		ID:             "rec-1",
		ConsentID:      "analytics-cookies",
		Status:         consentModel.StatusAccepted,
		PreviousStatus: consentModel.StatusPending,
		Timestamp:      ts,
	}}, nil)
	s.service.EXPECT().Preferences(gomock.Any(), visitorID).Return(consentModel.Preferences{"analytics": true, "marketing": false}, nil)

	rec := s.do(http.MethodGet, "/v1/consents/history", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	var history HistoryResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &history))
	s.Require().Len(history.History, 1)
	s.Equal("analytics-cookies", history.History[0].ConsentID)

	rec = s.do(http.MethodGet, "/v1/consents/preferences", true)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"preferences":{"analytics":true,"marketing":false}}`, rec.Body.String())
}

func (s *ConsentHandlerSuite) TestReset() {
	s.service.EXPECT().Reset(gomock.Any(), visitorID).Return(nil)

	rec := s.do(http.MethodDelete, "/v1/consents", true)

	s.Equal(http.StatusNoContent, rec.Code)
}
