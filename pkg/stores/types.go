package stores

import "time"

// Run is one recorded lint run for a file.
type Run struct {
	// ID is the run's UUID.
	ID string `json:"id"`

	// File is the report-config path that was linted.
	File string `json:"file"`

	// Outcome is the repair engine's terminal state.
	Outcome string `json:"outcome"`

	// Passes is the number of repair passes applied.
	Passes int `json:"passes"`

	// Errors, Warnings and Infos count the final diagnostics by severity.
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`

	// StartedAt and CompletedAt bound the run.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// StoredDiagnostic is one diagnostic persisted with its run.
type StoredDiagnostic struct {
	// RunID is the owning run's UUID.
	RunID string `json:"run_id"`

	// Line and Column are 1-based display positions.
	Line   int `json:"line"`
	Column int `json:"column"`

	// Severity, Message and Rule mirror the diagnostic record.
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Rule     string `json:"rule"`
}
