package repair

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reportlint/reportlint/pkg/diag"
	"github.com/reportlint/reportlint/pkg/lint"
)

// DefaultMaxPasses bounds the repair loop.
const DefaultMaxPasses = 20

// Outcome is the terminal state of a repair session.
type Outcome string

const (
	// OutcomeClean means the file was already clean; zero passes ran and
	// the content is byte-identical.
	OutcomeClean Outcome = "clean"

	// OutcomeConverged means repair reached a fixed point with no
	// remaining diagnostics.
	OutcomeConverged Outcome = "converged"

	// OutcomeStalled means two consecutive passes produced byte-identical
	// checker output while diagnostics remained; no fixer made forward
	// progress.
	OutcomeStalled Outcome = "stalled"

	// OutcomeMaxPasses means the pass bound was reached without
	// convergence; the best-effort file is left on disk.
	OutcomeMaxPasses Outcome = "max-passes-exceeded"
)

// Result reports how a repair session ended. Unclean outcomes carry the
// last diagnostic set; the engine never silently discards unresolved
// issues.
type Result struct {
	// Outcome is the terminal state.
	Outcome Outcome

	// Passes is the number of fix passes applied.
	Passes int

	// Diagnostics is the final diagnostic set for unclean outcomes.
	Diagnostics []diag.Diagnostic
}

// Engine drives the external checker to convergence by applying
// rule-specific fixers across bounded, strictly sequential passes.
type Engine struct {
	checker   lint.Checker
	fixers    map[string]Fixer
	maxPasses int
	logger    zerolog.Logger
}

// NewEngine creates a repair engine using the given checker and fixer
// set. maxPasses <= 0 selects DefaultMaxPasses.
func NewEngine(checker lint.Checker, fixers []Fixer, maxPasses int, logger zerolog.Logger) *Engine {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	byRule := make(map[string]Fixer, len(fixers))
	for _, f := range fixers {
		byRule[f.Rule()] = f
	}
	return &Engine{
		checker:   checker,
		fixers:    byRule,
		maxPasses: maxPasses,
		logger:    logger.With().Str("component", "repair").Logger(),
	}
}

// Repair lints path and applies fixers until the checker reports no
// diagnostics, a stall is detected, or the pass bound is reached. The
// file on disk is rewritten after every pass, so cancellation between
// passes always leaves the last fully written snapshot in place.
func (e *Engine) Repair(ctx context.Context, path string) (*Result, error) {
	res, err := e.checker.Check(ctx, path)
	if err != nil {
		return nil, err
	}
	if res.Clean {
		e.logger.Debug().Str("file", path).Msg("file already clean, nothing to repair")
		return &Result{Outcome: OutcomeClean}, nil
	}

	session := newSession(path)
	output := res.Output

	for pass := 1; pass <= e.maxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("repair aborted: %w", err)
		}

		diags := diag.ParseCheckerOutput(output)

		// Descending line order: a fixer rewriting a later line never
		// invalidates the index an earlier fix in the same pass needs.
		diag.SortByLineDesc(diags)

		if err := session.load(); err != nil {
			return nil, err
		}
		applied := 0
		for _, d := range diags {
			fixer, ok := e.fixers[d.Rule]
			if !ok {
				continue
			}
			session.lines = fixer.Fix(session.lines, d)
			applied++
		}
		if err := session.flush(); err != nil {
			return nil, err
		}

		e.logger.Debug().
			Str("file", path).
			Int("pass", pass).
			Int("diagnostics", len(diags)).
			Int("applied", applied).
			Msg("repair pass complete")

		res, err = e.checker.Check(ctx, path)
		if err != nil {
			return nil, err
		}
		if res.Clean {
			return &Result{Outcome: OutcomeConverged, Passes: pass}, nil
		}
		if res.Output == output {
			e.logger.Warn().Str("file", path).Int("pass", pass).
				Msg("repair stalled, remaining issues need manual review")
			return &Result{
				Outcome:     OutcomeStalled,
				Passes:      pass,
				Diagnostics: diag.ParseCheckerOutput(res.Output),
			}, nil
		}
		output = res.Output
	}

	e.logger.Warn().Str("file", path).Int("max_passes", e.maxPasses).
		Msg("pass bound reached without convergence")
	return &Result{
		Outcome:     OutcomeMaxPasses,
		Passes:      e.maxPasses,
		Diagnostics: diag.ParseCheckerOutput(output),
	}, nil
}

// session owns the mutable line buffer for one file across passes. Its
// lifetime is a single Repair call; the file is exclusively owned by the
// session for that duration.
type session struct {
	path  string
	lines []string
}

func newSession(path string) *session {
	return &session{path: path}
}

// load reads the current on-disk snapshot into the line buffer.
func (s *session) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	s.lines = strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	return nil
}

// flush rewrites the full buffer to disk with a trailing newline.
func (s *session) flush() error {
	content := strings.Join(s.lines, "\n") + "\n"
	if err := os.WriteFile(s.path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}
