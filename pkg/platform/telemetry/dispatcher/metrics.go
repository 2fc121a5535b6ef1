package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for event delivery.
type Metrics struct {
	Published      prometheus.Counter
	Dropped        *prometheus.CounterVec
	PublishFailure prometheus.Counter
	CircuitState   prometheus.Gauge
}

// NewMetrics registers delivery metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounter(prometheus.CounterOpts{
			Name: "agency_telemetry_published_total",
			Help: "Total number of telemetry events delivered to the backend",
		}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "agency_telemetry_dropped_total",
			Help: "Total number of telemetry events dropped before delivery",
		}, []string{"reason"}),
		PublishFailure: f.NewCounter(prometheus.CounterOpts{
			Name: "agency_telemetry_publish_failures_total",
			Help: "Total number of failed publish attempts",
		}),
		CircuitState: f.NewGauge(prometheus.GaugeOpts{
			Name: "agency_telemetry_circuit_open",
			Help: "Publisher circuit state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) incPublished() {
	if m != nil {
		m.Published.Inc()
	}
}

func (m *Metrics) incDropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) incFailure() {
	if m != nil {
		m.PublishFailure.Inc()
	}
}

func (m *Metrics) setCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitState.Set(1)
		return
	}
	m.CircuitState.Set(0)
}
