package commands

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/reportlint/reportlint/pkg/config"
	"github.com/reportlint/reportlint/pkg/diag"
	"github.com/reportlint/reportlint/pkg/pipeline"
	"github.com/reportlint/reportlint/pkg/repair"
	"github.com/reportlint/reportlint/pkg/stores"
)

func newLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <config>",
		Short: "Auto-repair and validate a report config",
		Long: `Auto-repair formatting issues in a report config, then run schema
validation and the SQL template cross-check over the repaired file.

The argument is either a path or a bare filename searched for
recursively under the configuration root.`,
		Example: `  # Lint a config by filename
  reportlint lint monthly_report.yaml

  # Lint a config by path
  reportlint lint configs/sales/monthly_report.yaml`,
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

			log.Info().Str("file", file).Msg("Linting report config")

			p := pipeline.New(cfg, log.Logger)
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				p.WithStore(store)
			}

			report, err := p.Run(cmd.Context(), file)
			if err != nil {
				if report != nil {
					reportRepair(report.Repair)
				}
				return err
			}

			reportRepair(report.Repair)

			reporter := diag.NewReporter(os.Stdout)
			if noColor {
				reporter.DisableColor()
			}
			if reporter.Report(report.Diagnostics) {
				if store != nil {
					_ = store.Close()
				}
				os.Exit(1)
			}
			return nil
		},
	}

	return cmd
}

// reportRepair logs the repair outcome.
func reportRepair(res *repair.Result) {
	if res == nil {
		return
	}
	switch res.Outcome {
	case repair.OutcomeClean:
		log.Info().Msg("No formatting issues found")
	case repair.OutcomeConverged:
		log.Info().Int("passes", res.Passes).Msg("Formatting issues repaired")
	case repair.OutcomeStalled:
		log.Warn().Int("passes", res.Passes).
			Msg("No more fixes possible but issues remain, please review the file")
	case repair.OutcomeMaxPasses:
		log.Warn().Int("passes", res.Passes).
			Msg("Pass bound reached, the file may still contain issues")
	}
}

// openStore opens the history store when one is configured; a nil store
// with nil error means history recording is disabled.
func openStore(ctx context.Context, cfg config.Config) (*stores.SQLiteStore, error) {
	if cfg.HistoryDB == "" {
		return nil, nil
	}

	store, err := stores.NewSQLiteStore(cfg.HistoryDB)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
