package runner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsFileName is the Prometheus text file written next to a report.
const MetricsFileName = "metrics.prom"

// Metrics collects per-benchmark solve counters in a private registry, so
// several benchmarks in one process never share series.
type Metrics struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solverbench_runs_total",
				Help: "Sub-runs executed, by outcome.",
			},
			[]string{"solver", "problem", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solverbench_run_duration_seconds",
				Help:    "Wall time of a single sub-run.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
			},
			[]string{"solver", "problem"},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) observe(solver, problem string, failed bool, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if failed {
		status = "failure"
	}
	m.runs.WithLabelValues(solver, problem, status).Inc()
	m.duration.WithLabelValues(solver, problem).Observe(d.Seconds())
}

// WriteTextfile writes the collected series in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
