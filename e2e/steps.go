package e2e

import (
	"github.com/cucumber/godog"

	"agency/e2e/steps/catalog"
	"agency/e2e/steps/common"
	"agency/e2e/steps/consent"
	"agency/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *common.TestContext) {
	// Register common steps (background, generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	catalog.RegisterSteps(ctx, tc)
	consent.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
