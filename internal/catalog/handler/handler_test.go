package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"agency/internal/catalog"
	"agency/internal/catalog/adapters"
	"agency/internal/catalog/handler/mocks"
	dErrors "agency/pkg/domain-errors"
	"agency/pkg/platform/middleware/admin"
	"agency/pkg/platform/telemetry"
	"agency/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/catalog-mocks.go -package=mocks Source

// =============================================================================
// Catalog Handler Test Suite
// =============================================================================
// Justification for unit tests: query parsing, 404 mapping, the JSON-LD
// content type and event validation live only in the handler. View-model
// shapes are covered by adapter tests.

const adminToken = "ops-token"

type recordingSink struct {
	mu     sync.Mutex
	events []telemetry.Event
}

func (r *recordingSink) Track(_ context.Context, e telemetry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type CatalogHandlerSuite struct {
	suite.Suite
	catalog *catalog.Catalog
	source  *mocks.MockSource
	sink    *recordingSink
	router  chi.Router
}

func TestCatalogHandlerSuite(t *testing.T) {
	suite.Run(t, new(CatalogHandlerSuite))
}

func (s *CatalogHandlerSuite) SetupSuite() {
	c, err := catalog.Load(context.Background(), catalog.Embedded())
	s.Require().NoError(err)
	s.catalog = c
}

func (s *CatalogHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.source = mocks.NewMockSource(ctrl)
	s.source.EXPECT().Current().Return(s.catalog).AnyTimes()
	s.sink = &recordingSink{}

	h := New(s.source, s.sink, slog.New(slog.NewTextHandler(io.Discard, nil)), Config{
		JSONLD:     adapters.JSONLDOptions{BaseURL: "https://agency.example", ProviderName: "Example Agency"},
		AdminToken: adminToken,
	})
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *CatalogHandlerSuite) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (s *CatalogHandlerSuite) post(path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req = testutil.WithVisitor(req, "visitor-1")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *CatalogHandlerSuite) TestGrid() {
	s.Run("alphabetical without featured slugs", func() {
		rec := s.get("/v1/packages")
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp GridResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		slugs := make([]string, 0, len(resp.Packages))
		for _, c := range resp.Packages {
			slugs = append(slugs, c.Slug)
		}
		s.Equal([]string{"brand-identity", "paid-media-management", "seo-growth", "website-care-plan", "website-launch"}, slugs)
	})

	s.Run("featured first then limited", func() {
		rec := s.get("/v1/packages?featured=website-launch,%20seo-growth&limit=2")
		s.Require().Equal(http.StatusOK, rec.Code)

		var resp GridResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.Require().Len(resp.Packages, 2)
		s.Equal("website-launch", resp.Packages[0].Slug)
		s.Equal("seo-growth", resp.Packages[1].Slug)
	})

	s.Run("service filter", func() {
		var resp GridResponse
		s.Require().NoError(json.Unmarshal(s.get("/v1/packages?service=seo").Body.Bytes(), &resp))
		s.Require().Len(resp.Packages, 1)
		s.Equal("seo-growth", resp.Packages[0].Slug)
	})

	s.Run("bad limit", func() {
		s.Equal(http.StatusBadRequest, s.get("/v1/packages?limit=-1").Code)
		s.Equal(http.StatusBadRequest, s.get("/v1/packages?limit=ten").Code)
	})
}

func (s *CatalogHandlerSuite) TestDetail() {
	s.Run("known slug renders detail and tracks a view", func() {
		rec := s.get("/v1/packages/website-launch")
		s.Require().Equal(http.StatusOK, rec.Code)

		var detail adapters.PackageDetail
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &detail))
		s.Equal("website-launch", detail.Card.Slug)
		s.Len(detail.AddOns, 3)

		s.Require().Len(s.sink.events, 1)
		s.Equal(telemetry.EventPackageViewed, s.sink.events[0].Name)
		s.Equal("website-launch", s.sink.events[0].Properties["slug"])
	})

	s.Run("unknown slug is 404", func() {
		rec := s.get("/v1/packages/nope")
		s.Equal(http.StatusNotFound, rec.Code)
		s.Contains(rec.Body.String(), "package nope not found")
	})
}

func (s *CatalogHandlerSuite) TestJSONLD() {
	s.Run("service document", func() {
		rec := s.get("/v1/packages/seo-growth/jsonld")
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal("application/ld+json", rec.Header().Get("Content-Type"))

		var doc map[string]any
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &doc))
		s.Equal("Service", doc["@type"])
		s.Equal("https://agency.example/packages/seo-growth", doc["url"])
	})

	s.Run("item list honours featured order", func() {
		rec := s.get("/v1/packages/jsonld?featured=website-care-plan")
		s.Require().Equal(http.StatusOK, rec.Code)

		var doc adapters.ItemListJSONLD
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &doc))
		s.Require().NotEmpty(doc.ItemListElement)
		s.Equal(1, doc.ItemListElement[0].Position)
		s.Equal("https://agency.example/packages/website-care-plan", doc.ItemListElement[0].URL)
	})

	s.Run("unknown slug is 404", func() {
		s.Equal(http.StatusNotFound, s.get("/v1/packages/nope/jsonld").Code)
	})
}

func (s *CatalogHandlerSuite) TestAddOns() {
	rec := s.get("/v1/addons")
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp AddOnsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Len(resp.AddOns, len(s.catalog.AddOns))
}

func (s *CatalogHandlerSuite) TestEvents() {
	s.Run("cta click is accepted and tracked", func() {
		rec := s.post("/v1/events", `{"name":"package_cta_clicked","slug":" seo-growth ","cta":"Book a call"}`, nil)
		s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())

		s.Require().Len(s.sink.events, 1)
		e := s.sink.events[0]
		s.Equal(telemetry.EventPackageCTA, e.Name)
		s.Equal("visitor-1", e.VisitorID)
		s.Equal(map[string]string{"slug": "seo-growth", "cta": "Book a call"}, e.Properties)
	})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown event name", `{"name":"consent_accepted","slug":"seo-growth"}`, http.StatusBadRequest},
		{"cta click without cta", `{"name":"package_cta_clicked","slug":"seo-growth"}`, http.StatusBadRequest},
		{"unknown field", `{"name":"package_viewed","slug":"seo-growth","extra":1}`, http.StatusBadRequest},
		{"unknown package", `{"name":"package_viewed","slug":"ghost"}`, http.StatusNotFound},
		{"add-on view is accepted", `{"name":"addon_viewed","slug":"copywriting"}`, http.StatusAccepted},
		{"unknown add-on", `{"name":"addon_viewed","slug":"ghost"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, s.post("/v1/events", tt.body, nil).Code)
		})
	}
}

func (s *CatalogHandlerSuite) TestReload() {
	s.Run("requires the admin token", func() {
		rec := s.post("/admin/catalog/reload", "", nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("reports a rejected reload", func() {
		report := catalog.ValidationReport{Errors: []catalog.Issue{{Path: "bundles[1].slug", Message: "duplicate slug"}}}
		s.source.EXPECT().Reload(gomock.Any()).Return(report, dErrors.New(dErrors.CodeValidation, "catalog has 1 error(s)"))

		rec := s.post("/admin/catalog/reload", "", map[string]string{admin.HeaderAdminToken: adminToken})

		s.Equal(http.StatusBadRequest, rec.Code)
		var resp ReloadResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.False(resp.Reloaded)
		s.Equal(report.Errors, resp.Errors)
	})

	s.Run("explains a catalog that failed to load", func() {
		s.source.EXPECT().Reload(gomock.Any()).Return(catalog.ValidationReport{},
			dErrors.Wrap(errors.New(`field priceNotes not found`), dErrors.CodeValidation, "decode addons.yaml"))

		rec := s.post("/admin/catalog/reload", "", map[string]string{admin.HeaderAdminToken: adminToken})

		s.Equal(http.StatusBadRequest, rec.Code)
		var resp ReloadResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.False(resp.Reloaded)
		s.Require().Len(resp.Errors, 1)
		s.Contains(resp.Errors[0].Message, "priceNotes")
	})

	s.Run("reports a successful reload", func() {
		s.source.EXPECT().Reload(gomock.Any()).Return(catalog.ValidationReport{}, nil)

		rec := s.post("/admin/catalog/reload", "", map[string]string{admin.HeaderAdminToken: adminToken})

		s.Require().Equal(http.StatusOK, rec.Code)
		var resp ReloadResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
		s.True(resp.Reloaded)
		s.Equal(len(s.catalog.Bundles), resp.Bundles)
	})
}
