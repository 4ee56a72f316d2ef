package repair

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reportlint/reportlint/pkg/lint"
)

// scriptedChecker replays a fixed sequence of checker outputs.
type scriptedChecker struct {
	outputs []string
	calls   int
}

func (c *scriptedChecker) Check(_ context.Context, _ string) (*lint.Result, error) {
	out := c.outputs[len(c.outputs)-1]
	if c.calls < len(c.outputs) {
		out = c.outputs[c.calls]
	}
	c.calls++
	return &lint.Result{Clean: out == "", Output: out}, nil
}

// miniChecker is a tiny real checker over file content: it reports a
// missing document-start marker and trailing spaces, in the parsable
// format the engine expects.
type miniChecker struct{}

func (miniChecker) Check(_ context.Context, path string) (*lint.Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")

	var out []string
	if len(lines) > 0 && !strings.HasPrefix(lines[0], "---") {
		out = append(out, fmt.Sprintf(`%s:1:1: [warning] missing document start "---" (document-start)`, path))
	}
	for i, line := range lines {
		if trimmed := strings.TrimRight(line, " \t"); trimmed != line {
			out = append(out, fmt.Sprintf("%s:%d:%d: [error] trailing spaces (trailing-spaces)", path, i+1, len(trimmed)+1))
		}
	}

	return &lint.Result{Clean: len(out) == 0, Output: strings.Join(out, "\n")}, nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRepairCleanFileIsUntouched(t *testing.T) {
	content := "---\ndag:\n  owner: alice\n"
	path := writeFile(t, content)

	engine := NewEngine(&scriptedChecker{outputs: []string{""}}, DefaultFixers(0), 0, zerolog.Nop())
	res, err := engine.Repair(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeClean {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeClean)
	}
	if res.Passes != 0 {
		t.Errorf("passes = %d, want 0", res.Passes)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != content {
		t.Error("clean file content changed")
	}
}

func TestRepairConvergesInOnePass(t *testing.T) {
	// Three independent single-line issues: missing marker plus two
	// trailing-space lines. All fixable in one pass.
	path := writeFile(t, "dag:\n  owner: alice   \n  retries: 3\t\n")

	engine := NewEngine(miniChecker{}, DefaultFixers(0), 0, zerolog.Nop())
	res, err := engine.Repair(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeConverged {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeConverged)
	}
	if res.Passes != 1 {
		t.Errorf("passes = %d, want 1", res.Passes)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("converged result carries diagnostics: %v", res.Diagnostics)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "---\ndag:\n  owner: alice\n  retries: 3\n"
	if string(after) != want {
		t.Errorf("repaired content = %q, want %q", after, want)
	}
}

func TestRepairIntraPassOrdering(t *testing.T) {
	// Trailing spaces on lines 5 and 10 plus a document-start insertion
	// in the same pass. The insertion shifts every line down by one; if
	// fixes were applied in ascending order the stale indices would leave
	// issues behind and force a second pass.
	var b strings.Builder
	for i := 1; i <= 12; i++ {
		if i == 5 || i == 10 {
			fmt.Fprintf(&b, "key%d: value   \n", i)
		} else {
			fmt.Fprintf(&b, "key%d: value\n", i)
		}
	}
	path := writeFile(t, b.String())

	engine := NewEngine(miniChecker{}, DefaultFixers(0), 0, zerolog.Nop())
	res, err := engine.Repair(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeConverged {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeConverged)
	}
	if res.Passes != 1 {
		t.Errorf("passes = %d, want 1", res.Passes)
	}
}

func TestRepairStallDetection(t *testing.T) {
	path := writeFile(t, "dag:\n  owner: alice\n")

	// The checker keeps reporting the same diagnostic for a rule no fixer
	// handles: output is byte-identical across passes, so the engine must
	// stop as stalled instead of looping to the bound.
	stuck := path + ":2:3: [error] duplicate key (key-duplicates)"
	checker := &scriptedChecker{outputs: []string{stuck, stuck}}

	engine := NewEngine(checker, DefaultFixers(0), 0, zerolog.Nop())
	res, err := engine.Repair(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeStalled {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeStalled)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected the last diagnostic set to be surfaced, got %v", res.Diagnostics)
	}
	if res.Diagnostics[0].Rule != "key-duplicates" {
		t.Errorf("unexpected diagnostic: %+v", res.Diagnostics[0])
	}
	if checker.calls > 3 {
		t.Errorf("engine kept looping after stall: %d checker calls", checker.calls)
	}
}

func TestRepairMaxPassesExceeded(t *testing.T) {
	path := writeFile(t, "dag:\n")

	// Oscillating output: consecutive passes never match, so stall
	// detection cannot fire and the pass bound must.
	a := path + ":1:1: [error] wrong indentation: expected 2 but found 0 (indentation)"
	b := path + ":1:1: [error] wrong indentation: expected 0 but found 2 (indentation)"
	checker := &scriptedChecker{outputs: []string{a, b, a, b, a, b, a, b}}

	engine := NewEngine(checker, nil, 3, zerolog.Nop())
	res, err := engine.Repair(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != OutcomeMaxPasses {
		t.Errorf("outcome = %s, want %s", res.Outcome, OutcomeMaxPasses)
	}
	if res.Passes != 3 {
		t.Errorf("passes = %d, want 3", res.Passes)
	}
	if len(res.Diagnostics) == 0 {
		t.Error("expected the remaining diagnostics to be surfaced")
	}
}

func TestRepairCancellation(t *testing.T) {
	path := writeFile(t, "dag:\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker := &scriptedChecker{outputs: []string{path + ":1:1: [error] trailing spaces (trailing-spaces)"}}
	engine := NewEngine(checker, DefaultFixers(0), 0, zerolog.Nop())

	_, err := engine.Repair(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The original snapshot must still be on disk.
	after, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(after) != "dag:\n" {
		t.Errorf("file was partially rewritten: %q", after)
	}
}
