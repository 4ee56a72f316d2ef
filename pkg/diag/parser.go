package diag

import (
	"regexp"
	"strconv"
	"strings"
)

// checkerLineRe matches one diagnostic in the checker's parsable format:
// path:line:col: [level] message (rule)
var checkerLineRe = regexp.MustCompile(`^(.+?):(\d+):(\d+): \[(\w+)\] (.+?) \((\S+)\)$`)

// ParseCheckerOutput converts the external checker's raw stdout into
// diagnostics. Lines that do not match the parsable shape (summary lines,
// blank lines) are dropped. No ordering is assumed; callers sort
// explicitly when order matters. Positions are converted to 0-based.
func ParseCheckerOutput(output string) []Diagnostic {
	var diags []Diagnostic

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		m := checkerLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		lineNo, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		colNo, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}

		diags = append(diags, Diagnostic{
			File:     m[1],
			Line:     lineNo - 1,
			Column:   colNo - 1,
			Severity: Severity(m[4]),
			Message:  m[5],
			Rule:     m[6],
		})
	}

	return diags
}
