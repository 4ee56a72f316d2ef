// Package repair implements the iterative auto-repair engine and the
// per-rule line fixers it dispatches to. Fixers never reorder lines; they
// only rewrite leading whitespace or content of existing lines, or insert
// a single document-start marker.
package repair

import (
	"regexp"
	"strings"

	"github.com/reportlint/reportlint/pkg/diag"
)

// Fixer is a pure transform over the file's line buffer for one checker
// rule. Rules without a registered fixer are left untouched for manual
// review.
type Fixer interface {
	// Rule returns the checker rule name this fixer handles.
	Rule() string

	// Fix applies the repair for one diagnostic and returns the updated
	// buffer. Lines carry no terminators; the session joins them on write.
	Fix(lines []string, d diag.Diagnostic) []string
}

// DefaultFixers returns the fixer set for every supported rule.
// maxLineLength configures the line-length fixer; zero disables it.
func DefaultFixers(maxLineLength int) []Fixer {
	fixers := []Fixer{
		indentationFixer{},
		colonsFixer{},
		documentStartFixer{},
		trailingSpacesFixer{},
		syntaxFixer{},
	}
	if maxLineLength > 0 {
		fixers = append(fixers, lineLengthFixer{max: maxLineLength})
	}
	return fixers
}

var (
	expectedRe = regexp.MustCompile(`expected (\d+)`)
	foundRe    = regexp.MustCompile(`found (\d+)`)
	atLeastRe  = regexp.MustCompile(`at least (\d+)`)
	tokenRe    = regexp.MustCompile(`but found '([^']+)'`)
)

// indentOf returns the leading-space count of a line.
func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

// rehome rewrites a line's leading whitespace to the given column.
func rehome(line string, col int) string {
	return strings.Repeat(" ", col) + strings.TrimLeft(line, " \t")
}

// skippable reports whether a line is blank or a comment. The child-block
// scans step over these without treating them as a block boundary.
func skippable(line string) bool {
	s := strings.TrimSpace(line)
	return s == "" || strings.HasPrefix(s, "#")
}

// indentationFixer re-homes a wrongly indented line to the expected
// column and drags its child block along with it.
type indentationFixer struct{}

func (indentationFixer) Rule() string { return "indentation" }

func (indentationFixer) Fix(lines []string, d diag.Diagnostic) []string {
	i := d.Line
	if i < 0 || i >= len(lines) {
		return lines
	}

	if m := atLeastRe.FindStringSubmatch(d.Message); m != nil {
		lines[i] = rehome(lines[i], atoi(m[1]))
	}

	em := expectedRe.FindStringSubmatch(d.Message)
	fm := foundRe.FindStringSubmatch(d.Message)
	if em == nil || fm == nil {
		return lines
	}
	expected := atoi(em[1])
	found := atoi(fm[1])

	lines[i] = rehome(lines[i], expected)

	// Re-home the child block: everything below that is indented deeper
	// than the found depth, stopping at the first sibling or parent line.
	for j := i + 1; j < len(lines); j++ {
		if skippable(lines[j]) {
			continue
		}
		if indentOf(lines[j]) <= found {
			break
		}
		lines[j] = rehome(lines[j], expected)
	}

	return lines
}

// colonsFixer normalizes spacing after the colon at the reported column
// to exactly one space.
type colonsFixer struct{}

func (colonsFixer) Rule() string { return "colons" }

func (colonsFixer) Fix(lines []string, d diag.Diagnostic) []string {
	i := d.Line
	if i < 0 || i >= len(lines) {
		return lines
	}
	line := lines[i]

	// The checker points at or just past the colon; locate the nearest
	// colon at or before the reported column.
	col := d.Column
	if col >= len(line) {
		col = len(line) - 1
	}
	idx := -1
	if col >= 0 && line[col] == ':' {
		idx = col
	} else if col >= 0 {
		idx = strings.LastIndex(line[:col+1], ":")
	}
	if idx < 0 {
		return lines
	}

	rest := strings.TrimLeft(line[idx+1:], " ")
	if rest == "" {
		lines[i] = line[:idx+1]
	} else {
		lines[i] = line[:idx+1] + " " + rest
	}
	return lines
}

// documentStartFixer inserts the document-start marker at the top of the
// file when missing. This is the only fixer that inserts a line.
type documentStartFixer struct{}

func (documentStartFixer) Rule() string { return "document-start" }

func (documentStartFixer) Fix(lines []string, _ diag.Diagnostic) []string {
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "---") {
		return lines
	}
	return append([]string{"---"}, lines...)
}

// trailingSpacesFixer strips trailing whitespace and stray carriage
// returns from the line.
type trailingSpacesFixer struct{}

func (trailingSpacesFixer) Rule() string { return "trailing-spaces" }

func (trailingSpacesFixer) Fix(lines []string, d diag.Diagnostic) []string {
	i := d.Line
	if i < 0 || i >= len(lines) {
		return lines
	}
	lines[i] = strings.TrimRight(lines[i], " \t\r")
	return lines
}

// syntaxFixer handles an unexpected '-' or '?' token at a block boundary.
// When the previous non-blank line is a list item and the current line is
// not, the current line and its deeper descendants are re-homed under it;
// otherwise no safe structural inference is possible and the line is left
// flagged.
type syntaxFixer struct{}

func (syntaxFixer) Rule() string { return "syntax" }

func (syntaxFixer) Fix(lines []string, d diag.Diagnostic) []string {
	i := d.Line
	if i < 0 || i >= len(lines) {
		return lines
	}

	m := tokenRe.FindStringSubmatch(d.Message)
	if m == nil || !strings.Contains(d.Message, "<block end>") {
		return lines
	}
	if sym := m[1]; sym != "-" && sym != "?" {
		return lines
	}

	j := i - 1
	for j >= 0 && strings.TrimSpace(lines[j]) == "" {
		j--
	}
	if j < 0 {
		return lines
	}
	prevIndent := indentOf(lines[j])

	prevIsItem := strings.HasPrefix(strings.TrimLeft(lines[j], " "), "-")
	curIsItem := strings.HasPrefix(strings.TrimLeft(lines[i], " "), "-")
	if !prevIsItem || curIsItem {
		return lines
	}
	newIndent := prevIndent + 2

	lines[i] = rehome(lines[i], newIndent)

	for k := i + 1; k < len(lines); k++ {
		if skippable(lines[k]) {
			continue
		}
		if indentOf(lines[k]) <= prevIndent {
			break
		}
		lines[k] = rehome(lines[k], newIndent+2)
	}

	return lines
}

// lineLengthFixer truncates lines exceeding the configured budget.
type lineLengthFixer struct {
	max int
}

func (lineLengthFixer) Rule() string { return "line-length" }

func (f lineLengthFixer) Fix(lines []string, d diag.Diagnostic) []string {
	i := d.Line
	if i < 0 || i >= len(lines) {
		return lines
	}
	if runes := []rune(lines[i]); len(runes) > f.max {
		lines[i] = string(runes[:f.max])
	}
	return lines
}

// atoi converts a digits-only regex capture; the pattern guarantees the
// input is numeric.
func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
