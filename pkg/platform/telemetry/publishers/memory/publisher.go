package memory

import (
	"context"
	"sync"

	"agency/pkg/platform/telemetry"
)

// Publisher keeps published events in memory. Used in tests and local runs.
type Publisher struct {
	mu     sync.RWMutex
	events []telemetry.Event
	err    error
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Publish(_ context.Context, events ...telemetry.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

// FailWith makes subsequent Publish calls return err. Pass nil to recover.
func (p *Publisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Events returns a copy of everything published so far.
func (p *Publisher) Events() []telemetry.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]telemetry.Event{}, p.events...)
}

// ByName returns published events with the given name.
func (p *Publisher) ByName(name string) []telemetry.Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []telemetry.Event
	for _, e := range p.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (p *Publisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
