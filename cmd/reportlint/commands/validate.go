package commands

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/reportlint/reportlint/pkg/config"
	"github.com/reportlint/reportlint/pkg/diag"
	"github.com/reportlint/reportlint/pkg/pipeline"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate schema and template params without repairing",
		Long: `Parse a report config and run schema validation and the SQL
template cross-check. The file is never modified and the external
checker is not invoked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadToolConfig()
			if err != nil {
				return err
			}

			file, err := config.FindConfigPath(cfg.ConfigRoot, args[0])
			if err != nil {
				return err
			}

			report, err := pipeline.New(cfg, log.Logger).Validate(cmd.Context(), file)
			if err != nil {
				return err
			}

			reporter := diag.NewReporter(os.Stdout)
			if noColor {
				reporter.DisableColor()
			}
			if reporter.Report(report.Diagnostics) {
				os.Exit(1)
			}
			return nil
		},
	}
}
