// Package diag defines positioned, severity-tagged diagnostics shared by
// the repair engine, the schema validator and the template cross-checker,
// plus a parser for the external checker's parsable output format.
package diag

import (
	"fmt"
	"sort"
)

// Severity represents the severity level of a diagnostic.
type Severity string

const (
	// SeverityError is for findings that must be fixed.
	SeverityError Severity = "error"

	// SeverityWarning is for findings that should be reviewed.
	SeverityWarning Severity = "warning"

	// SeverityInfo is for informational findings.
	SeverityInfo Severity = "info"
)

// Diagnostic is a single positioned finding. Line and Column are 0-based
// internally; String renders them 1-based to match source text.
type Diagnostic struct {
	// File is the source file path.
	File string `json:"file"`

	// Line is the 0-based line index.
	Line int `json:"line"`

	// Column is the 0-based column index.
	Column int `json:"column"`

	// Severity is the diagnostic severity level.
	Severity Severity `json:"severity"`

	// Message is the human-readable finding.
	Message string `json:"message"`

	// Rule is the checker rule or validation category that produced it.
	Rule string `json:"rule"`
}

// String renders the diagnostic in the checker's own format with
// 1-based positions.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: [%s] %s (%s)",
		d.File, d.Line+1, d.Column+1, d.Severity, d.Message, d.Rule)
}

// SortByLineDesc sorts diagnostics by descending line number. The repair
// engine applies fixes back-to-front so that rewriting a later line never
// invalidates the index of an earlier fix in the same pass.
func SortByLineDesc(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Line > diags[j].Line
	})
}

// CountBySeverity returns the number of diagnostics per severity.
func CountBySeverity(diags []Diagnostic) map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, d := range diags {
		counts[d.Severity]++
	}
	return counts
}
