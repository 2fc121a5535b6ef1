package models

import (
	"time"

	dErrors "agency/pkg/domain-errors"
)

// MaxHistory caps the persisted history per visitor.
const MaxHistory = 100

// Accept records an explicit acceptance. Pending and declined items may be
// accepted; re-accepting an accepted item renews its expiry.
func Accept(item Item, now time.Time) (Item, error) {
	switch item.Status {
	case StatusPending, StatusDeclined, StatusAccepted:
	default:
		return item, dErrors.New(dErrors.CodeConflict, "consent "+item.ID+" cannot be accepted from "+string(item.Status))
	}
	item.Status = StatusAccepted
	item.UpdatedAt = timePtr(now)
	item.ExpiresAt = nil
	if item.ValidityDays > 0 {
		item.ExpiresAt = timePtr(now.AddDate(0, 0, item.ValidityDays))
	}
	return item, nil
}

// Decline records a refusal of a pending item.
func Decline(item Item, now time.Time) (Item, error) {
	if item.Required {
		return item, dErrors.New(dErrors.CodeInvalidConsent, "required consent "+item.ID+" cannot be declined")
	}
	if item.Status != StatusPending {
		return item, dErrors.New(dErrors.CodeConflict, "consent "+item.ID+" cannot be declined from "+string(item.Status))
	}
	return decline(item, now), nil
}

// Withdraw moves an accepted item to declined.
func Withdraw(item Item, now time.Time) (Item, error) {
	if item.Required {
		return item, dErrors.New(dErrors.CodeInvalidConsent, "required consent "+item.ID+" cannot be withdrawn")
	}
	if item.Status != StatusAccepted {
		return item, dErrors.New(dErrors.CodeConflict, "consent "+item.ID+" is not accepted")
	}
	return decline(item, now), nil
}

func decline(item Item, now time.Time) Item {
	item.Status = StatusDeclined
	item.UpdatedAt = timePtr(now)
	item.ExpiresAt = nil
	return item
}

// Change pairs an item's state before and after a bulk action.
type Change struct {
	Before Item
	After  Item
}

// AcceptAllOptional accepts every optional pending item. Required items are
// never touched. The input slice is not modified.
func AcceptAllOptional(items []Item, now time.Time) ([]Item, []Change) {
	return applyWhere(items, isOptionalPending, func(item Item) Item {
		accepted, _ := Accept(item, now)
		return accepted
	})
}

// DeclineAllOptional declines every optional pending item.
func DeclineAllOptional(items []Item, now time.Time) ([]Item, []Change) {
	return applyWhere(items, isOptionalPending, func(item Item) Item {
		return decline(item, now)
	})
}

// WithdrawAll declines every accepted optional item.
func WithdrawAll(items []Item, now time.Time) ([]Item, []Change) {
	return applyWhere(items, func(item Item) bool {
		return !item.Required && item.Status == StatusAccepted
	}, func(item Item) Item {
		return decline(item, now)
	})
}

func isOptionalPending(item Item) bool {
	return !item.Required && item.Status == StatusPending
}

func applyWhere(items []Item, match func(Item) bool, apply func(Item) Item) ([]Item, []Change) {
	out := make([]Item, len(items))
	var changes []Change
	for i, item := range items {
		out[i] = item
		if !match(item) {
			continue
		}
		out[i] = apply(item)
		changes = append(changes, Change{Before: item, After: out[i]})
	}
	return out, changes
}

// AppendHistory appends records and evicts the oldest beyond MaxHistory.
func AppendHistory(history []Record, records ...Record) []Record {
	out := make([]Record, 0, len(history)+len(records))
	out = append(out, history...)
	out = append(out, records...)
	if len(out) > MaxHistory {
		out = out[len(out)-MaxHistory:]
	}
	return out
}

// FindItem returns the index of the item with id, or -1.
func FindItem(items []Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// DerivePreferences reports, per policy type, whether any item of that type
// is accepted and unexpired.
func DerivePreferences(items []Item, now time.Time) Preferences {
	prefs := Preferences{}
	for _, item := range items {
		if item.PolicyType == "" {
			continue
		}
		prefs[item.PolicyType] = prefs[item.PolicyType] || item.IsActive(now)
	}
	return prefs
}

func timePtr(t time.Time) *time.Time {
	return &t
}
