// Package config loads the tool's own configuration file and resolves
// report-config paths under the configuration root.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the tool configuration, loaded from .reportlint.yaml.
type Config struct {
	// CheckerBinary is the external style checker executable.
	CheckerBinary string `yaml:"checker_binary" validate:"required"`

	// RuleConfig is the checker rule-configuration filename, searched for
	// recursively under ConfigRoot when not an existing path.
	RuleConfig string `yaml:"rule_config"`

	// ConfigRoot is the directory report configs are resolved under.
	ConfigRoot string `yaml:"config_root" validate:"required"`

	// TemplatesRoot is the directory SQL templates resolve under.
	TemplatesRoot string `yaml:"templates_root" validate:"required"`

	// MaxPasses bounds the auto-repair loop.
	MaxPasses int `yaml:"max_passes" validate:"min=1,max=100"`

	// CheckerTimeoutSeconds bounds a single checker invocation.
	CheckerTimeoutSeconds int `yaml:"checker_timeout_seconds" validate:"min=1"`

	// MaxLineLength is the line budget for the line-length fixer; zero
	// disables that fixer.
	MaxLineLength int `yaml:"max_line_length" validate:"min=0"`

	// HistoryDB is the lint-run history database path; empty disables
	// history recording.
	HistoryDB string `yaml:"history_db"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		CheckerBinary:         "yamllint",
		RuleConfig:            ".yamllint",
		ConfigRoot:            "configs",
		TemplatesRoot:         "sql_templates",
		MaxPasses:             20,
		CheckerTimeoutSeconds: 30,
		MaxLineLength:         0,
		HistoryDB:             "",
	}
}

// CheckerTimeout returns the checker timeout as a duration.
func (c Config) CheckerTimeout() time.Duration {
	return time.Duration(c.CheckerTimeoutSeconds) * time.Second
}

// Load reads and validates a configuration file, overlaying it on the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to the defaults
// otherwise. An unreadable or invalid existing file is still an error.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// FindConfigPath resolves filename to a path. An existing path is
// returned as-is; a bare filename is searched for recursively under root.
func FindConfigPath(root, filename string) (string, error) {
	if _, err := os.Stat(filename); err == nil {
		return filename, nil
	}

	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == filename {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to search %s: %w", root, err)
	}
	if found == "" {
		return "", fmt.Errorf("config %s not found under %s", filename, root)
	}
	return found, nil
}
