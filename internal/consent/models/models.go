package models

import (
	"time"
)

// ItemType classifies how a consent item participates in validity.
type ItemType string

const (
	ItemTypeRequired      ItemType = "required"
	ItemTypeOptional      ItemType = "optional"
	ItemTypeInformational ItemType = "informational"
)

// IsValid reports whether the type is one of the known item types.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeRequired, ItemTypeOptional, ItemTypeInformational:
		return true
	}
	return false
}

// Status is the visitor's decision for a consent item.
type Status string

const (
	StatusPending       Status = "pending"
	StatusAccepted      Status = "accepted"
	StatusDeclined      Status = "declined"
	StatusNotApplicable Status = "not-applicable"
)

// IsValid reports whether the status is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusNotApplicable:
		return true
	}
	return false
}

// Item is a single opt-in/opt-out unit presented to a visitor.
//
// Invariants:
//   - Required items are never declined.
//   - An accepted item whose ExpiresAt is in the past is expired; it stays
//     accepted until the visitor re-accepts or withdraws.
type Item struct {
	ID            string     `json:"id"`
	Type          ItemType   `json:"type"`
	Label         string     `json:"label"`
	Description   string     `json:"description,omitempty"`
	Required      bool       `json:"required"`
	Status        Status     `json:"status"`
	PolicyType    string     `json:"policyType,omitempty"`
	PolicyVersion string     `json:"policyVersion,omitempty"`
	LegalBasis    string     `json:"legalBasis,omitempty"`
	ValidityDays  int        `json:"validityDays,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// IsExpired reports an accepted item whose expiry has passed.
func (i Item) IsExpired(now time.Time) bool {
	return i.Status == StatusAccepted && i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// IsActive reports an accepted, unexpired item.
func (i Item) IsActive(now time.Time) bool {
	return i.Status == StatusAccepted && !i.IsExpired(now)
}

// RecordMetadata describes where a decision came from. The client IP is
// stored only as a keyed hash.
type RecordMetadata struct {
	Source  string `json:"source,omitempty"`
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Mobile  bool   `json:"mobile,omitempty"`
	IPHash  string `json:"ipHash,omitempty"`
}

// Record is one entry in a visitor's consent history.
type Record struct {
	ID             string         `json:"id"`
	ConsentID      string         `json:"consentId"`
	Status         Status         `json:"status"`
	PreviousStatus Status         `json:"previousStatus,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	PolicyVersion  string         `json:"policyVersion,omitempty"`
	Metadata       RecordMetadata `json:"metadata"`
}

// ItemError is a validation error attributed to one item.
type ItemError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// ValidationResult summarizes a visitor's consent state.
type ValidationResult struct {
	IsValid         bool        `json:"isValid"`
	MissingRequired []string    `json:"missingRequired"`
	ExpiredConsents []string    `json:"expiredConsents"`
	InvalidStates   []string    `json:"invalidStates"`
	Errors          []ItemError `json:"errors"`
}

// Preferences maps a policy type to whether the visitor currently allows it.
type Preferences map[string]bool
