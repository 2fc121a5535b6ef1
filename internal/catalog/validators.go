package catalog

import (
	"fmt"
	"strings"

	"agency/internal/pricing"
	dErrors "agency/pkg/domain-errors"
)

// ValidationReport splits findings into blocking errors and advisory warnings.
type ValidationReport struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// OK reports a report with no errors. Warnings do not count.
func (r ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

func (r *ValidationReport) errorf(path, format string, args ...any) {
	r.Errors = append(r.Errors, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationReport) warnf(path, format string, args ...any) {
	r.Warnings = append(r.Warnings, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

// Validate runs schema checks on every record plus the cross-record checks the
// schema cannot express: duplicate slugs and IDs, dangling add-on references,
// unnormalizable prices, and the includes/outcomes authoring rules.
func Validate(c *Catalog) ValidationReport {
	var report ValidationReport
	if c == nil {
		report.errorf("", "catalog is nil")
		return report
	}

	addOnIDs := make(map[string]struct{}, len(c.AddOns))
	for i, a := range c.AddOns {
		path := fmt.Sprintf("addOns[%s]", labelOr(a.ID, i))
		for _, issue := range SafeParseAddOn(a).Issues {
			report.errorf(join(path, issue.Path), "%s", issue.Message)
		}
		if _, dup := addOnIDs[a.ID]; dup && a.ID != "" {
			report.errorf(path, "duplicate add-on id %q", a.ID)
		}
		addOnIDs[a.ID] = struct{}{}
		if a.Price.IsSet() {
			if _, ok := a.Price.Normalize(); !ok {
				report.errorf(join(path, "price"), "price has no positive oneTime or monthly amount")
			}
		}
	}

	slugs := make(map[string]struct{}, len(c.Bundles))
	ids := make(map[string]struct{}, len(c.Bundles))
	for i, b := range c.Bundles {
		path := fmt.Sprintf("bundles[%s]", labelOr(b.Slug, i))
		for _, issue := range SafeParseBundle(b).Issues {
			report.errorf(join(path, issue.Path), "%s", issue.Message)
		}

		if b.Slug != "" {
			if _, dup := slugs[b.Slug]; dup {
				report.errorf(path, "duplicate slug %q", b.Slug)
			}
			slugs[b.Slug] = struct{}{}
		}
		if b.ID != "" {
			if _, dup := ids[b.ID]; dup {
				report.errorf(path, "duplicate id %q", b.ID)
			}
			ids[b.ID] = struct{}{}
		}

		for _, ref := range b.AddOnIDs {
			if _, ok := addOnIDs[ref]; !ok {
				report.errorf(join(path, "addOns"), "references unknown add-on %q", ref)
			}
		}

		validateBundlePrice(&report, path, b)

		hasGroups := len(b.Includes) > 0
		hasTable := b.IncludesTable != nil
		switch {
		case hasGroups && hasTable:
			report.warnf(path, "both includes and includesTable are authored; includes wins")
		case !hasGroups && !hasTable:
			report.warnf(path, "neither includes nor includesTable is authored")
		}
		if len(b.Outcomes) == 0 {
			report.warnf(join(path, "outcomes"), "should list at least one outcome")
		}
	}
	return report
}

func validateBundlePrice(report *ValidationReport, path string, b Bundle) {
	if b.Price.IsSet() {
		if _, ok := b.Price.Normalize(); !ok {
			report.errorf(join(path, "price"), "price has no positive oneTime or monthly amount")
		}
		return
	}
	if b.Pricing == nil {
		report.warnf(path, "no price or pricing tiers; cards render without a price")
		return
	}
	if _, ok := pricing.DerivePriceFromPricing(b.Pricing.Tiers, b.Pricing.Currency); !ok {
		report.warnf(join(path, "pricing"), "no tier yields a monthly or one-time price")
	}
}

// AssertValid fails with a single error listing every validation error. It is
// meant for CI and startup gating, not runtime recovery.
func AssertValid(c *Catalog) error {
	report := Validate(c)
	if report.OK() {
		return nil
	}
	lines := make([]string, 0, len(report.Errors))
	for _, issue := range report.Errors {
		lines = append(lines, "  - "+issue.String())
	}
	return dErrors.New(dErrors.CodeValidation,
		fmt.Sprintf("catalog has %d error(s):\n%s", len(report.Errors), strings.Join(lines, "\n")))
}

func labelOr(label string, index int) string {
	if label != "" {
		return label
	}
	return fmt.Sprintf("#%d", index)
}

func join(base, field string) string {
	if field == "" {
		return base
	}
	return base + "." + field
}
