package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(ctx context.Context, path string) error
	POST(ctx context.Context, path string, body any) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	DecodeResponse(dst any) error
}

// RegisterSteps registers package catalog step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &catalogSteps{tc: tc}

	ctx.Step(`^I browse the package grid$`, steps.browseGrid)
	ctx.Step(`^I browse the package grid for service "([^"]*)"$`, steps.browseGridForService)
	ctx.Step(`^I view package "([^"]*)"$`, steps.viewPackage)
	ctx.Step(`^I report event "([^"]*)" for package "([^"]*)"$`, steps.reportEvent)

	ctx.Step(`^the grid should list (\d+) packages?$`, steps.gridShouldList)
	ctx.Step(`^the grid should list packages in order "([^"]*)"$`, steps.gridShouldListInOrder)
	ctx.Step(`^every listed package should belong to service "([^"]*)"$`, steps.everyPackageBelongsTo)
	ctx.Step(`^every listed package should have a price label$`, steps.everyPackageHasPriceLabel)
}

type packageCard struct {
	Slug       string `json:"slug"`
	Service    string `json:"service"`
	PriceLabel string `json:"priceLabel"`
}

type catalogSteps struct {
	tc TestContext
}

func (s *catalogSteps) browseGrid(ctx context.Context) error {
	return s.tc.GET(ctx, "/v1/packages")
}

func (s *catalogSteps) browseGridForService(ctx context.Context, service string) error {
	return s.tc.GET(ctx, "/v1/packages?service="+service)
}

func (s *catalogSteps) viewPackage(ctx context.Context, slug string) error {
	return s.tc.GET(ctx, "/v1/packages/"+slug)
}

func (s *catalogSteps) reportEvent(ctx context.Context, name, slug string) error {
	body := map[string]string{"name": name, "slug": slug}
	if name == "package_cta_clicked" {
		body["cta"] = "primary"
	}
	return s.tc.POST(ctx, "/v1/events", body)
}

func (s *catalogSteps) cards() ([]packageCard, error) {
	if s.tc.GetLastResponseStatus() != 200 {
		return nil, fmt.Errorf("grid returned %d: %s", s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	var resp struct {
		Packages []packageCard `json:"packages"`
	}
	if err := s.tc.DecodeResponse(&resp); err != nil {
		return nil, err
	}
	return resp.Packages, nil
}

func (s *catalogSteps) gridShouldList(_ context.Context, n int) error {
	cards, err := s.cards()
	if err != nil {
		return err
	}
	if len(cards) != n {
		return fmt.Errorf("expected %d packages, got %d", n, len(cards))
	}
	return nil
}

func (s *catalogSteps) gridShouldListInOrder(_ context.Context, order string) error {
	cards, err := s.cards()
	if err != nil {
		return err
	}
	got := make([]string, 0, len(cards))
	for _, c := range cards {
		got = append(got, c.Slug)
	}
	if want := strings.Split(order, ","); strings.Join(got, ",") != strings.Join(want, ",") {
		return fmt.Errorf("expected order %v, got %v", want, got)
	}
	return nil
}

func (s *catalogSteps) everyPackageBelongsTo(_ context.Context, service string) error {
	cards, err := s.cards()
	if err != nil {
		return err
	}
	for _, c := range cards {
		if c.Service != service {
			return fmt.Errorf("package %s belongs to %s, not %s", c.Slug, c.Service, service)
		}
	}
	return nil
}

func (s *catalogSteps) everyPackageHasPriceLabel(context.Context) error {
	cards, err := s.cards()
	if err != nil {
		return err
	}
	for _, c := range cards {
		if c.PriceLabel == "" {
			return fmt.Errorf("package %s has no price label", c.Slug)
		}
	}
	return nil
}
