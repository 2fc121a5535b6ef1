package ratelimit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(ctx context.Context, path string, body any) error
	GetLastResponseStatus() int
	GetLastResponseHeader(name string) string
}

// RegisterSteps registers rate-limiting step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I create visitors until the service refuses, at most (\d+) times$`, steps.createUntilRefused)
	ctx.Step(`^the service should have refused with 429$`, steps.shouldHaveRefused)
	ctx.Step(`^the refusal should carry a positive Retry-After$`, steps.retryAfterPositive)
}

type ratelimitSteps struct {
	tc       TestContext
	attempts int
}

func (s *ratelimitSteps) createUntilRefused(ctx context.Context, limit int) error {
	for s.attempts = 1; s.attempts <= limit; s.attempts++ {
		if err := s.tc.POST(ctx, "/v1/visitors", nil); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() == 429 {
			return nil
		}
	}
	return nil
}

func (s *ratelimitSteps) shouldHaveRefused(context.Context) error {
	if got := s.tc.GetLastResponseStatus(); got != 429 {
		return fmt.Errorf("expected 429 after %d attempts, last status %d", s.attempts, got)
	}
	return nil
}

func (s *ratelimitSteps) retryAfterPositive(context.Context) error {
	raw := s.tc.GetLastResponseHeader("Retry-After")
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return fmt.Errorf("expected positive Retry-After, got %q", raw)
	}
	return nil
}
