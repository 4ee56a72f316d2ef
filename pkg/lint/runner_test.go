package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestCheckCleanFile(t *testing.T) {
	r := NewRunner("true", "", time.Second, zerolog.Nop())

	res, err := r.Check(context.Background(), "ignored.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Clean {
		t.Error("expected clean result for exit code 0")
	}
	if res.Output != "" {
		t.Errorf("expected empty output, got %q", res.Output)
	}
}

func TestCheckFindings(t *testing.T) {
	// Exit code 1 means findings, not tool failure.
	r := NewRunner("false", "", time.Second, zerolog.Nop())

	res, err := r.Check(context.Background(), "ignored.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Clean {
		t.Error("expected unclean result for exit code 1")
	}
}

func TestCheckMissingBinary(t *testing.T) {
	r := NewRunner("definitely-not-a-real-checker-binary", "", time.Second, zerolog.Nop())

	_, err := r.Check(context.Background(), "ignored.yaml")
	if !errors.Is(err, ErrToolUnavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}
}

func TestCheckTimeout(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\nsleep 5\n")
	r := NewRunner(script, "", 50*time.Millisecond, zerolog.Nop())

	_, err := r.Check(context.Background(), "ignored.yaml")
	if !errors.Is(err, ErrToolUnavailable) {
		t.Fatalf("expected ErrToolUnavailable on timeout, got %v", err)
	}
}

func TestCheckParsableOutput(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\necho 'a.yaml:3:1: [error] trailing spaces (trailing-spaces)'\nexit 1\n")
	r := NewRunner(script, "", time.Second, zerolog.Nop())

	res, err := r.Check(context.Background(), "a.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Clean {
		t.Error("expected unclean result")
	}
	if res.Output != "a.yaml:3:1: [error] trailing spaces (trailing-spaces)" {
		t.Errorf("unexpected output: %q", res.Output)
	}
}

// writeScript writes an executable shell script into a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checker.sh")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindRuleConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(nested, ".yamllint")
	if err := os.WriteFile(want, []byte("rules: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindRuleConfig(root, ".yamllint")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("FindRuleConfig = %q, want %q", got, want)
	}
}

func TestFindRuleConfigMissing(t *testing.T) {
	if _, err := FindRuleConfig(t.TempDir(), ".yamllint"); err == nil {
		t.Error("expected error when rule config is absent")
	}
}

func TestResolveRuleConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "team")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	inRoot := filepath.Join(nested, ".yamllint")
	if err := os.WriteFile(inRoot, []byte("rules: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	direct := filepath.Join(t.TempDir(), "strict.yaml")
	if err := os.WriteFile(direct, []byte("rules: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"existing path returned as-is", direct, direct},
		{"bare name found under root", ".yamllint", inRoot},
		{"missing falls back to checker defaults", "no-such-config", ""},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRuleConfig(root, tt.ref, zerolog.Nop()); got != tt.want {
				t.Errorf("ResolveRuleConfig(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
