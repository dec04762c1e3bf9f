package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records measurements as Prometheus metrics. It implements
// benchmark.Observer.
type Metrics struct {
	Registry *prometheus.Registry

	BatchDuration *prometheus.HistogramVec
	Calls         *prometheus.CounterVec
	Failures      *prometheus.CounterVec
}

// NewMetrics creates the metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.BatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timeit_batch_duration_seconds",
			Help:    "Duration of one timed batch of calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
		},
		[]string{"benchmark"},
	)

	m.Calls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeit_calls_total",
			Help: "Total number of measured calls",
		},
		[]string{"benchmark"},
	)

	m.Failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeit_failures_total",
			Help: "Total number of measurements aborted by an error",
		},
		[]string{"benchmark"},
	)

	m.Registry.MustRegister(m.BatchDuration, m.Calls, m.Failures)
	return m
}

// Observed records one histogram sample per batch.
func (m *Metrics) Observed(name string, number int, timings []time.Duration) {
	h := m.BatchDuration.WithLabelValues(name)
	for _, d := range timings {
		h.Observe(d.Seconds())
	}
	m.Calls.WithLabelValues(name).Add(float64(number * len(timings)))
}

// Failed counts an aborted measurement.
func (m *Metrics) Failed(name string, err error) {
	m.Failures.WithLabelValues(name).Inc()
}

// WriteTextfile writes the registry in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
