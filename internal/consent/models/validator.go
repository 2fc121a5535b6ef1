package models

import (
	"fmt"
	"strings"
	"time"
)

// ValidateConsent lists every problem with a single item, expiry included.
// An empty result means the item is well formed and current.
func ValidateConsent(item Item, now time.Time) []string {
	errs := schemaErrors(item)
	if item.IsExpired(now) {
		errs = append(errs, fmt.Sprintf("consent expired at %s", item.ExpiresAt.UTC().Format(time.RFC3339)))
	}
	return errs
}

func schemaErrors(item Item) []string {
	var errs []string
	if strings.TrimSpace(item.ID) == "" {
		errs = append(errs, "id is required")
	}
	if strings.TrimSpace(item.Label) == "" {
		errs = append(errs, "label is required")
	}
	if item.Type != "" && !item.Type.IsValid() {
		errs = append(errs, fmt.Sprintf("unknown type %q", item.Type))
	}
	if !item.Status.IsValid() {
		errs = append(errs, fmt.Sprintf("unknown status %q", item.Status))
	}
	if item.Required && item.Status == StatusDeclined {
		errs = append(errs, "required consent cannot be declined")
	}
	return errs
}

// ValidateAllConsents classifies a visitor's items in one pass.
//
// IsValid holds when there are no item errors and every required item is
// accepted. Expired items are listed in ExpiredConsents but do not make the
// result invalid; they are flagged for renewal only. Duplicate IDs are errors,
// and each duplicate is reported.
func ValidateAllConsents(items []Item, now time.Time) ValidationResult {
	result := ValidationResult{
		MissingRequired: []string{},
		ExpiredConsents: []string{},
		InvalidStates:   []string{},
		Errors:          []ItemError{},
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			result.Errors = append(result.Errors, ItemError{ID: item.ID, Message: "duplicate consent id"})
		}
		seen[item.ID] = struct{}{}

		for _, msg := range schemaErrors(item) {
			result.Errors = append(result.Errors, ItemError{ID: item.ID, Message: msg})
		}
		if !item.Status.IsValid() || (item.Required && item.Status == StatusDeclined) {
			result.InvalidStates = append(result.InvalidStates, item.ID)
		}
		if item.Required && item.Status != StatusAccepted {
			result.MissingRequired = append(result.MissingRequired, item.ID)
		}
		if item.IsExpired(now) {
			result.ExpiredConsents = append(result.ExpiredConsents, item.ID)
		}
	}

	result.IsValid = len(result.Errors) == 0 && len(result.MissingRequired) == 0
	return result
}
