// Package dispatcher delivers telemetry events asynchronously. Track never
// blocks: when the buffer is full, the backend circuit is open, or the event
// is sampled out, the event is dropped and counted.
package dispatcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"agency/pkg/platform/telemetry"
)

const (
	defaultBufferSize     = 1024
	defaultPublishTimeout = 5 * time.Second
)

// Dispatcher is a telemetry.Sink backed by a buffered channel and one
// delivery goroutine.
type Dispatcher struct {
	publisher      telemetry.Publisher
	logger         *slog.Logger
	metrics        *Metrics
	breaker        *CircuitBreaker
	sampler        *Sampler
	now            func() time.Time
	bufferSize     int
	publishTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	inbox  chan telemetry.Event
	done   chan struct{}
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithBufferSize sets the channel capacity.
func WithBufferSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.bufferSize = n
		}
	}
}

// WithCircuitBreaker guards the publisher with cb.
func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(d *Dispatcher) {
		d.breaker = cb
	}
}

// WithSampler drops a fraction of events per name before buffering.
func WithSampler(s *Sampler) Option {
	return func(d *Dispatcher) {
		d.sampler = s
	}
}

// WithClock sets the clock used to stamp events lacking a timestamp.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithPublishTimeout bounds each publish call.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.publishTimeout = timeout
		}
	}
}

// New starts a Dispatcher. Call Close to drain and stop it.
func New(publisher telemetry.Publisher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		publisher:      publisher,
		logger:         slog.Default(),
		now:            time.Now,
		bufferSize:     defaultBufferSize,
		publishTimeout: defaultPublishTimeout,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.inbox = make(chan telemetry.Event, d.bufferSize)
	go d.run()
	return d
}

// Track enqueues event without blocking.
func (d *Dispatcher) Track(_ context.Context, event telemetry.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now()
	}
	if d.sampler != nil && !d.sampler.Keep(event.Name) {
		d.metrics.incDropped("sampled")
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.metrics.incDropped("closed")
		return
	}
	select {
	case d.inbox <- event:
	default:
		d.metrics.incDropped("buffer_full")
		d.logger.Warn("telemetry buffer full, dropping event", "event", event.Name)
	}
}

// Close stops accepting events, delivers what is buffered, and waits for the
// delivery goroutine to exit. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.inbox)
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.inbox {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event telemetry.Event) {
	if d.breaker != nil && !d.breaker.Allow() {
		d.metrics.incDropped("circuit_open")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.publishTimeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, event); err != nil {
		d.metrics.incFailure()
		d.logger.Warn("telemetry publish failed", "event", event.Name, "error", err)
		if d.breaker != nil && d.breaker.RecordFailure() {
			d.metrics.setCircuitOpen(true)
			d.logger.Warn("telemetry circuit opened")
		}
		return
	}
	if d.breaker != nil {
		if d.breaker.IsOpen() {
			d.metrics.setCircuitOpen(false)
		}
		d.breaker.RecordSuccess()
	}
	d.metrics.incPublished()
}
