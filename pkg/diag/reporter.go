package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// severityOrder is the display order for grouped output.
var severityOrder = []Severity{SeverityError, SeverityWarning, SeverityInfo}

// Reporter renders a collected diagnostic set grouped by severity.
type Reporter struct {
	out     io.Writer
	noColor bool
}

// NewReporter creates a reporter writing to out.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// DisableColor turns off ANSI color in the rendered output.
func (r *Reporter) DisableColor() {
	r.noColor = true
}

// Report writes all diagnostics grouped by severity, errors first,
// followed by a one-line summary. It reports whether any error-level
// diagnostic was present.
func (r *Reporter) Report(diags []Diagnostic) bool {
	if len(diags) == 0 {
		fmt.Fprintln(r.out, "no issues found")
		return false
	}

	counts := CountBySeverity(diags)

	for _, sev := range severityOrder {
		if counts[sev] == 0 {
			continue
		}
		fmt.Fprintf(r.out, "%s:\n", r.paint(sev, string(sev)))
		for _, d := range diags {
			if d.Severity != sev {
				continue
			}
			fmt.Fprintf(r.out, "  %s:%d:%d: %s (%s)\n",
				d.File, d.Line+1, d.Column+1, d.Message, d.Rule)
		}
	}

	fmt.Fprintf(r.out, "%d error(s), %d warning(s), %d info\n",
		counts[SeverityError], counts[SeverityWarning], counts[SeverityInfo])

	return counts[SeverityError] > 0
}

// paint colors a severity heading unless color is disabled.
func (r *Reporter) paint(sev Severity, s string) string {
	if r.noColor {
		return s
	}
	switch sev {
	case SeverityError:
		return color.New(color.FgRed, color.Bold).Sprint(s)
	case SeverityWarning:
		return color.New(color.FgYellow).Sprint(s)
	default:
		return color.New(color.FgCyan).Sprint(s)
	}
}
