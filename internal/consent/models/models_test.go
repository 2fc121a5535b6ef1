package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "agency/pkg/domain-errors"
	"agency/pkg/testutil"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func required(id string, status Status) Item {
	return Item{ID: id, Label: id, Type: ItemTypeRequired, Required: true, Status: status}
}

func optional(id string, status Status) Item {
	return Item{ID: id, Label: id, Type: ItemTypeOptional, Status: status}
}

func TestValidateConsent(t *testing.T) {
	testutil.Given(t, "a required item", func(t *testing.T) {
		testutil.Then(t, "declining it is always an error", func(t *testing.T) {
			errs := ValidateConsent(required("terms", StatusDeclined), now)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs, "required consent cannot be declined")
		})
		testutil.Then(t, "accepting it is fine", func(t *testing.T) {
			assert.Empty(t, ValidateConsent(required("terms", StatusAccepted), now))
		})
	})

	testutil.Given(t, "a malformed item", func(t *testing.T) {
		errs := ValidateConsent(Item{Status: "maybe", Type: "weird"}, now)
		assert.Len(t, errs, 4)
	})

	testutil.Given(t, "an accepted item past its expiry", func(t *testing.T) {
		expired := now.Add(-time.Hour)
		item := optional("analytics", StatusAccepted)
		item.ExpiresAt = &expired
		errs := ValidateConsent(item, now)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "expired")
	})
}

func TestValidateAllConsents(t *testing.T) {
	testutil.Given(t, "required items accepted and one optional item expired", func(t *testing.T) {
		expired := now.Add(-24 * time.Hour)
		analytics := optional("analytics", StatusAccepted)
		analytics.ExpiresAt = &expired
		items := []Item{required("privacy", StatusAccepted), required("terms", StatusAccepted), analytics}

		res := ValidateAllConsents(items, now)

		testutil.Then(t, "the state stays valid but lists the expired item", func(t *testing.T) {
			assert.True(t, res.IsValid)
			assert.Equal(t, []string{"analytics"}, res.ExpiredConsents)
			assert.Empty(t, res.Errors)
		})
	})

	testutil.Given(t, "a pending required item", func(t *testing.T) {
		res := ValidateAllConsents([]Item{required("privacy", StatusPending), optional("marketing", StatusDeclined)}, now)
		assert.False(t, res.IsValid)
		assert.Equal(t, []string{"privacy"}, res.MissingRequired)
		assert.Empty(t, res.InvalidStates)
	})

	testutil.Given(t, "a declined required item", func(t *testing.T) {
		res := ValidateAllConsents([]Item{required("privacy", StatusDeclined)}, now)
		assert.False(t, res.IsValid)
		assert.Equal(t, []string{"privacy"}, res.InvalidStates)
		assert.Equal(t, []string{"privacy"}, res.MissingRequired)
	})

	testutil.Given(t, "duplicate ids", func(t *testing.T) {
		items := []Item{optional("a", StatusPending), optional("a", StatusPending), optional("a", StatusPending)}
		res := ValidateAllConsents(items, now)

		testutil.Then(t, "every duplicate is reported", func(t *testing.T) {
			assert.False(t, res.IsValid)
			assert.Len(t, res.Errors, 2)
			for _, e := range res.Errors {
				assert.Equal(t, "a", e.ID)
			}
		})
	})

	testutil.Given(t, "no items", func(t *testing.T) {
		res := ValidateAllConsents(nil, now)
		assert.True(t, res.IsValid)
		assert.NotNil(t, res.MissingRequired)
	})
}

func TestTransitions(t *testing.T) {
	testutil.Given(t, "a pending optional item with a validity window", func(t *testing.T) {
		item := optional("marketing", StatusPending)
		item.ValidityDays = 30

		accepted, err := Accept(item, now)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, accepted.Status)
		require.NotNil(t, accepted.ExpiresAt)
		assert.Equal(t, now.AddDate(0, 0, 30), *accepted.ExpiresAt)
		assert.Equal(t, StatusPending, item.Status, "input is not modified")

		withdrawn, err := Withdraw(accepted, now)
		require.NoError(t, err)
		assert.Equal(t, StatusDeclined, withdrawn.Status)
		assert.Nil(t, withdrawn.ExpiresAt)

		reaccepted, err := Accept(withdrawn, now)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, reaccepted.Status)
	})

	testutil.Given(t, "a required item", func(t *testing.T) {
		_, err := Decline(required("terms", StatusPending), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConsent))

		_, err = Withdraw(required("terms", StatusAccepted), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidConsent))
	})

	testutil.Given(t, "an item in the wrong state", func(t *testing.T) {
		_, err := Decline(optional("x", StatusAccepted), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

		_, err = Withdraw(optional("x", StatusPending), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

		_, err = Accept(Item{ID: "notice", Status: StatusNotApplicable}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestBulkActions(t *testing.T) {
	testutil.Given(t, "one required pending and one optional pending item", func(t *testing.T) {
		items := []Item{required("privacy", StatusPending), optional("analytics", StatusPending)}

		updated, changes := AcceptAllOptional(items, now)

		testutil.Then(t, "only the optional item is accepted", func(t *testing.T) {
			assert.Equal(t, StatusPending, updated[0].Status)
			assert.Equal(t, StatusAccepted, updated[1].Status)
			require.Len(t, changes, 1)
			assert.Equal(t, "analytics", changes[0].After.ID)
			assert.Equal(t, StatusPending, items[1].Status)
		})
	})

	testutil.Given(t, "a mix of states", func(t *testing.T) {
		items := []Item{
			required("privacy", StatusAccepted),
			optional("analytics", StatusAccepted),
			optional("marketing", StatusPending),
			optional("personalization", StatusDeclined),
		}

		declined, changes := DeclineAllOptional(items, now)
		assert.Equal(t, StatusAccepted, declined[1].Status)
		assert.Equal(t, StatusDeclined, declined[2].Status)
		assert.Len(t, changes, 1)

		withdrawn, changes := WithdrawAll(items, now)
		assert.Equal(t, StatusAccepted, withdrawn[0].Status)
		assert.Equal(t, StatusDeclined, withdrawn[1].Status)
		assert.Equal(t, StatusPending, withdrawn[2].Status)
		assert.Len(t, changes, 1)
	})
}

func TestAppendHistory(t *testing.T) {
	testutil.Given(t, "105 records appended one at a time", func(t *testing.T) {
		var history []Record
		for i := range 105 {
			history = AppendHistory(history, Record{ID: fmt.Sprintf("r%d", i)})
		}

		testutil.Then(t, "the oldest five are evicted", func(t *testing.T) {
			require.Len(t, history, MaxHistory)
			assert.Equal(t, "r5", history[0].ID)
			assert.Equal(t, "r104", history[len(history)-1].ID)
		})
	})
}

func TestDerivePreferences(t *testing.T) {
	expired := now.Add(-time.Minute)
	stale := optional("old-analytics", StatusAccepted)
	stale.PolicyType = "analytics"
	stale.ExpiresAt = &expired
	fresh := optional("marketing", StatusAccepted)
	fresh.PolicyType = "marketing"
	pending := optional("personalization", StatusPending)
	pending.PolicyType = "personalization"

	prefs := DerivePreferences([]Item{stale, fresh, pending, optional("untyped", StatusAccepted)}, now)
	assert.Equal(t, Preferences{"analytics": false, "marketing": true, "personalization": false}, prefs)
}

func TestReconcile(t *testing.T) {
	catalog := DefaultItems()

	testutil.Given(t, "a stored decision on the current policy version", func(t *testing.T) {
		stored := []Item{{ID: "marketing-emails", Status: StatusAccepted, PolicyVersion: "2024-01"}}
		out := Reconcile(catalog, stored)
		i := FindItem(out, "marketing-emails")
		require.GreaterOrEqual(t, i, 0)
		assert.Equal(t, StatusAccepted, out[i].Status)
		assert.Equal(t, "Marketing emails", out[i].Label)
	})

	testutil.Given(t, "a stored decision on an old policy version", func(t *testing.T) {
		stored := []Item{{ID: "privacy-policy", Status: StatusAccepted, PolicyVersion: "2023-01"}}
		out := Reconcile(catalog, stored)
		assert.Equal(t, StatusPending, out[FindItem(out, "privacy-policy")].Status)
	})

	testutil.Given(t, "a stored item that left the catalog", func(t *testing.T) {
		out := Reconcile(catalog, []Item{{ID: "retired", Status: StatusAccepted}})
		assert.Equal(t, -1, FindItem(out, "retired"))
		assert.Len(t, out, len(catalog))
	})

	testutil.Then(t, "the default catalog validates apart from pending required items", func(t *testing.T) {
		res := ValidateAllConsents(catalog, now)
		assert.Empty(t, res.Errors)
		assert.Len(t, res.MissingRequired, 3)
	})
}
