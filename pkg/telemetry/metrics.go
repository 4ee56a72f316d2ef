// Package telemetry provides Prometheus metrics for the linter, exported
// by the watch command's metrics endpoint.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects lint-run counters on a private registry.
type Metrics struct {
	runsTotal        *prometheus.CounterVec
	repairPasses     prometheus.Histogram
	diagnosticsTotal *prometheus.CounterVec
	checkerFailures  prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reportlint",
				Name:      "runs_total",
				Help:      "Total number of lint runs by repair outcome",
			},
			[]string{"outcome"},
		),
		repairPasses: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "reportlint",
				Name:      "repair_passes",
				Help:      "Number of repair passes per run",
				Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
			},
		),
		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "reportlint",
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics by severity",
			},
			[]string{"severity"},
		),
		checkerFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "reportlint",
				Name:      "checker_failures_total",
				Help:      "Total number of failed checker invocations",
			},
		),
	}

	registry.MustRegister(m.runsTotal, m.repairPasses, m.diagnosticsTotal, m.checkerFailures)
	return m
}

// RecordRun records one completed lint run. All record methods are no-ops
// on a nil receiver so callers without metrics wired stay unconditional.
func (m *Metrics) RecordRun(outcome string, passes int) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.repairPasses.Observe(float64(passes))
}

// RecordDiagnostic counts one diagnostic by severity.
func (m *Metrics) RecordDiagnostic(severity string) {
	if m == nil {
		return
	}
	m.diagnosticsTotal.WithLabelValues(severity).Inc()
}

// RecordCheckerFailure counts a failed checker invocation.
func (m *Metrics) RecordCheckerFailure() {
	if m == nil {
		return
	}
	m.checkerFailures.Inc()
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
