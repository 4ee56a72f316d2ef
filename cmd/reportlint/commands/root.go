// Package commands implements the reportlint CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reportlint/reportlint/pkg/config"
)

var (
	// Global flags
	toolConfigPath string
	noColor        bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reportlint",
		Short: "Reportlint - YAML linter for templated SQL report configs",
		Long: `Reportlint validates the YAML configuration files that describe
templated SQL reports.

It auto-repairs formatting issues by driving an external style checker
to convergence, then validates the repaired document against the report
schemas and cross-checks the supplied SQL parameters against the
referenced template's declared parameter schema.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	rootCmd.PersistentFlags().StringVarP(&toolConfigPath, "config", "c", ".reportlint.yaml", "tool config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newLintCommand())
	rootCmd.AddCommand(newFixCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}

// loadToolConfig loads the tool configuration for a command.
func loadToolConfig() (config.Config, error) {
	return config.LoadOrDefault(toolConfigPath)
}
