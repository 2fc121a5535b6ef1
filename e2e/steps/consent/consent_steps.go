package consent

import (
	"context"
	"fmt"
	"slices"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(ctx context.Context, path string) error
	POST(ctx context.Context, path string, body any) error
	SetVisitorToken(token string)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	DecodeResponse(dst any) error
}

// RegisterSteps registers consent-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &consentSteps{tc: tc}

	ctx.Step(`^I register as a new visitor$`, steps.registerVisitor)
	ctx.Step(`^I accept consent "([^"]*)"$`, steps.accept)
	ctx.Step(`^I decline consent "([^"]*)"$`, steps.decline)
	ctx.Step(`^I withdraw consent "([^"]*)"$`, steps.withdraw)
	ctx.Step(`^I accept all optional consents$`, steps.acceptAllOptional)
	ctx.Step(`^I accept the required consents$`, steps.acceptRequired)

	ctx.Step(`^consent "([^"]*)" should have status "([^"]*)"$`, steps.consentShouldHaveStatus)
	ctx.Step(`^the consent state should be valid$`, steps.stateShouldBeValid)
	ctx.Step(`^"([^"]*)" should be reported as missing$`, steps.shouldBeMissing)
	ctx.Step(`^the preference "([^"]*)" should be (true|false)$`, steps.preferenceShouldBe)
	ctx.Step(`^the history should contain (\d+) records?$`, steps.historyShouldContain)
}

type item struct {
	ID       string `json:"id"`
	Required bool   `json:"required"`
	Status   string `json:"status"`
}

type state struct {
	VisitorID  string `json:"visitorId"`
	Items      []item `json:"items"`
	Validation struct {
		IsValid         bool     `json:"isValid"`
		MissingRequired []string `json:"missingRequired"`
	} `json:"validation"`
	Preferences map[string]bool `json:"preferences"`
}

type consentSteps struct {
	tc TestContext
}

func (s *consentSteps) registerVisitor(ctx context.Context) error {
	if err := s.tc.POST(ctx, "/v1/visitors", nil); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return fmt.Errorf("create visitor returned %d: %s", s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := s.tc.DecodeResponse(&resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("create visitor returned no token")
	}
	s.tc.SetVisitorToken(resp.Token)
	return nil
}

func (s *consentSteps) accept(ctx context.Context, id string) error {
	return s.tc.POST(ctx, "/v1/consents/"+id+"/accept", nil)
}

func (s *consentSteps) decline(ctx context.Context, id string) error {
	return s.tc.POST(ctx, "/v1/consents/"+id+"/decline", nil)
}

func (s *consentSteps) withdraw(ctx context.Context, id string) error {
	return s.tc.POST(ctx, "/v1/consents/"+id+"/withdraw", nil)
}

func (s *consentSteps) acceptAllOptional(ctx context.Context) error {
	return s.tc.POST(ctx, "/v1/consents/accept-optional", nil)
}

func (s *consentSteps) acceptRequired(ctx context.Context) error {
	current, err := s.currentState(ctx)
	if err != nil {
		return err
	}
	for _, it := range current.Items {
		if !it.Required || it.Status == "accepted" {
			continue
		}
		if err := s.accept(ctx, it.ID); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() != 200 {
			return fmt.Errorf("accept %s returned %d", it.ID, s.tc.GetLastResponseStatus())
		}
	}
	return nil
}

func (s *consentSteps) consentShouldHaveStatus(ctx context.Context, id, want string) error {
	current, err := s.currentState(ctx)
	if err != nil {
		return err
	}
	for _, it := range current.Items {
		if it.ID == id {
			if it.Status != want {
				return fmt.Errorf("consent %s: expected status %s, got %s", id, want, it.Status)
			}
			return nil
		}
	}
	return fmt.Errorf("consent %s not present in state", id)
}

func (s *consentSteps) stateShouldBeValid(ctx context.Context) error {
	current, err := s.currentState(ctx)
	if err != nil {
		return err
	}
	if !current.Validation.IsValid {
		return fmt.Errorf("expected valid consent state, missing %v", current.Validation.MissingRequired)
	}
	return nil
}

func (s *consentSteps) shouldBeMissing(ctx context.Context, id string) error {
	current, err := s.currentState(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(current.Validation.MissingRequired, id) {
		return fmt.Errorf("expected %s in missingRequired, got %v", id, current.Validation.MissingRequired)
	}
	return nil
}

func (s *consentSteps) preferenceShouldBe(ctx context.Context, category, want string) error {
	current, err := s.currentState(ctx)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(current.Preferences[category]); got != want {
		return fmt.Errorf("preference %s: expected %s, got %s", category, want, got)
	}
	return nil
}

func (s *consentSteps) historyShouldContain(ctx context.Context, n int) error {
	if err := s.tc.GET(ctx, "/v1/consents/history"); err != nil {
		return err
	}
	var resp struct {
		History []historyRecord `json:"history"`
	}
	if err := s.tc.DecodeResponse(&resp); err != nil {
		return err
	}
	if len(resp.History) != n {
		return fmt.Errorf("expected %d history records, got %d", n, len(resp.History))
	}
	return nil
}

type historyRecord struct {
	ConsentID string `json:"consentId"`
}

func (s *consentSteps) currentState(ctx context.Context) (*state, error) {
	if err := s.tc.GET(ctx, "/v1/consents"); err != nil {
		return nil, err
	}
	if s.tc.GetLastResponseStatus() != 200 {
		return nil, fmt.Errorf("get consents returned %d: %s", s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
	var st state
	if err := s.tc.DecodeResponse(&st); err != nil {
		return nil, err
	}
	return &st, nil
}
