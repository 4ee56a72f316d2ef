package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics()
	m.RecordRun("converged", 2)
	m.RecordDiagnostic("error")
	m.RecordDiagnostic("info")
	m.RecordCheckerFailure()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`reportlint_runs_total{outcome="converged"} 1`,
		`reportlint_diagnostics_total{severity="error"} 1`,
		`reportlint_diagnostics_total{severity="info"} 1`,
		"reportlint_checker_failures_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.RecordRun("clean", 0)
	m.RecordDiagnostic("info")
	m.RecordCheckerFailure()
}
