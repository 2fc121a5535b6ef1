// Package telemetry carries best-effort interaction events (consent changes,
// package views, CTA clicks) from request handlers to an analytics backend.
//
// Producers depend on Sink and never see delivery errors. Backends implement
// Publisher and are driven asynchronously by dispatcher.Dispatcher.
package telemetry

import (
	"context"
	"time"
)

// Event names.
const (
	EventConsentAccepted  = "consent_accepted"
	EventConsentDeclined  = "consent_declined"
	EventConsentWithdrawn = "consent_withdrawn"
	EventConsentBulk      = "consent_bulk_updated"
	EventConsentReset     = "consent_reset"
	EventVisitorCreated   = "visitor_created"
	EventPackageViewed    = "package_viewed"
	EventPackageCTA       = "package_cta_clicked"
	EventAddOnViewed      = "addon_viewed"
)

// Event is a single analytics fact. Keep it transport-agnostic so publishers
// can fan out.
type Event struct {
	Name       string            `json:"name"`
	VisitorID  string            `json:"visitorId,omitempty"`
	RequestID  string            `json:"requestId,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Sink accepts events fire-and-forget.
type Sink interface {
	Track(ctx context.Context, event Event)
}

// Publisher delivers events to a backend synchronously.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Track(context.Context, Event) {}
