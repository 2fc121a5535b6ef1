// Package logpub writes telemetry events to a structured logger. It is the
// fallback backend when no broker is configured.
package logpub

import (
	"context"
	"log/slog"

	"agency/pkg/platform/telemetry"
)

type Publisher struct {
	logger *slog.Logger
	level  slog.Level
}

func New(logger *slog.Logger, level slog.Level) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{logger: logger, level: level}
}

func (p *Publisher) Publish(ctx context.Context, events ...telemetry.Event) error {
	for _, e := range events {
		attrs := []slog.Attr{
			slog.String("event", e.Name),
			slog.Time("timestamp", e.Timestamp),
		}
		if e.VisitorID != "" {
			attrs = append(attrs, slog.String("visitor_id", e.VisitorID))
		}
		if e.RequestID != "" {
			attrs = append(attrs, slog.String("request_id", e.RequestID))
		}
		if len(e.Properties) > 0 {
			props := make([]any, 0, len(e.Properties)*2)
			for k, v := range e.Properties {
				props = append(props, k, v)
			}
			attrs = append(attrs, slog.Group("properties", props...))
		}
		p.logger.LogAttrs(ctx, p.level, "telemetry", attrs...)
	}
	return nil
}
