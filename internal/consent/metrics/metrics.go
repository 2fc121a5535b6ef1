package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the consent module.
// Tracks decisions by action, swallowed storage failures and operation latency.
type Metrics struct {
	Decisions         *prometheus.CounterVec
	StorageErrors     *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New registers consent metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "agency_consent_decisions_total",
			Help: "Total number of consent status changes by action",
		}, []string{"action"}),
		StorageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "agency_consent_storage_errors_total",
			Help: "Storage failures absorbed by the consent service",
		}, []string{"operation"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agency_consent_operation_duration_seconds",
			Help:    "Duration of consent service operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

// IncrementDecisions records n status changes for action.
func (m *Metrics) IncrementDecisions(action string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Decisions.WithLabelValues(action).Add(float64(n))
}

// IncrementStorageError records a storage failure that was logged and absorbed.
func (m *Metrics) IncrementStorageError(operation string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(operation).Inc()
}

// ObserveOperation records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
