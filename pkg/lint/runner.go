// Package lint invokes the external style checker and exposes its result
// at the process boundary. The checker is a black box producing parsable
// diagnostic text on stdout; everything else about it is out of scope.
package lint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrToolUnavailable indicates the external checker could not be invoked
// or exited with a code outside its documented contract (0 clean,
// 1 findings). It is fatal: no repair or validation proceeds.
var ErrToolUnavailable = errors.New("style checker unavailable")

// Result is the outcome of one checker invocation.
type Result struct {
	// Clean is true when the checker exited 0.
	Clean bool

	// Output is the checker's trimmed stdout in parsable format.
	Output string
}

// Checker runs the external style checker against one file. The repair
// engine depends on this interface so tests can script checker behavior.
type Checker interface {
	Check(ctx context.Context, path string) (*Result, error)
}

// Runner invokes the checker binary as a child process.
type Runner struct {
	// Binary is the checker executable name or path.
	Binary string

	// RuleConfig is the checker rule-configuration file path. Empty means
	// the checker's own defaults.
	RuleConfig string

	// Timeout bounds a single invocation.
	Timeout time.Duration

	logger zerolog.Logger
}

// NewRunner creates a runner for the given checker binary.
func NewRunner(binary, ruleConfig string, timeout time.Duration, logger zerolog.Logger) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		Binary:     binary,
		RuleConfig: ruleConfig,
		Timeout:    timeout,
		logger:     logger.With().Str("component", "checker").Logger(),
	}
}

// Check runs the checker on path. The call blocks until the checker
// returns or the timeout expires.
func (r *Runner) Check(ctx context.Context, path string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	args := []string{"--format", "parsable"}
	if r.RuleConfig != "" {
		args = append(args, "-c", r.RuleConfig)
	}
	args = append(args, path)

	cmd := exec.CommandContext(ctx, r.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	r.logger.Debug().
		Str("file", path).
		Dur("duration", time.Since(start)).
		Msg("checker invocation finished")

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %v", ErrToolUnavailable, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrToolUnavailable, ctxErr)
		}
		exitCode = exitErr.ExitCode()
	}

	// Exit 0 = clean, 1 = findings, anything else = tool failure.
	if exitCode != 0 && exitCode != 1 {
		return nil, fmt.Errorf("%w: exit code %d: %s",
			ErrToolUnavailable, exitCode, strings.TrimSpace(stderr.String()))
	}

	return &Result{
		Clean:  exitCode == 0,
		Output: strings.TrimSpace(stdout.String()),
	}, nil
}

// ResolveRuleConfig resolves a rule-config reference to a usable path.
// An existing path is returned as-is; otherwise the name is searched for
// recursively under root. A failed search logs a warning and returns
// empty, which selects the checker's own defaults.
func ResolveRuleConfig(root, name string, logger zerolog.Logger) string {
	if name == "" {
		return ""
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	found, err := FindRuleConfig(root, name)
	if err != nil {
		logger.Warn().Str("rule_config", name).
			Msg("rule config not found, using checker defaults")
		return ""
	}
	return found
}

// FindRuleConfig searches root recursively for a rule-configuration file
// with the given name and returns its path, or an error when absent.
func FindRuleConfig(root, name string) (string, error) {
	var found string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search for rule config: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("rule config %s not found under %s", name, root)
	}

	return found, nil
}
