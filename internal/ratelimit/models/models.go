package models

import (
	"strings"
	"time"
)

// EndpointClass categorizes endpoints for differentiated rate limiting.
type EndpointClass string

const (
	// ClassRead: catalog, consent state and history reads
	ClassRead EndpointClass = "read"
	// ClassEvents: POST /v1/events interaction beacons
	ClassEvents EndpointClass = "events"
	// ClassVisitorCreate: POST /v1/visitors token issuance
	ClassVisitorCreate EndpointClass = "visitor_create"
	// ClassConsentWrite: consent transitions and resets
	ClassConsentWrite EndpointClass = "consent_write"
)

// IsValid checks if the endpoint class is one of the supported enum values.
func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassRead, ClassEvents, ClassVisitorCreate, ClassConsentWrite:
		return true
	}
	return false
}

// KeyPrefix distinguishes the identity a bucket counts.
type KeyPrefix string

const (
	KeyPrefixIP      KeyPrefix = "ip"
	KeyPrefixVisitor KeyPrefix = "visitor"
)

// Limit is a request budget over a sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// DefaultLimits are per-identity budgets. Reads are generous; token issuance
// is the tightest because every call mints a new identity.
func DefaultLimits() map[EndpointClass]Limit {
	return map[EndpointClass]Limit{
		ClassRead:          {Requests: 300, Window: time.Minute},
		ClassEvents:        {Requests: 120, Window: time.Minute},
		ClassVisitorCreate: {Requests: 10, Window: time.Minute},
		ClassConsentWrite:  {Requests: 60, Window: time.Minute},
	}
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// RateLimitExceededResponse is the API response when rate limit is exceeded.
type RateLimitExceededResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	RetryAfter       int    `json:"retry_after"`
}

// Key builds the bucket key for one identity on one endpoint class.
func Key(prefix KeyPrefix, identifier string, class EndpointClass) string {
	return "rl:" + string(prefix) + ":" + SanitizeKeySegment(identifier) + ":" + string(class)
}

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so an identifier containing ':' cannot collide with an adjacent bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
