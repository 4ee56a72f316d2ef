package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reportlint/reportlint/pkg/config"
)

func newHistoryCommand() *cobra.Command {
	var (
		limit   int
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "history <config>",
		Short: "Show recorded lint runs for a config",
		Long: `List the most recent lint runs recorded for a report config,
newest first. Requires history_db to be set in the tool config.

With --verbose each run's stored diagnostics are printed as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadToolConfig()
			if err != nil {
				return err
			}
			if cfg.HistoryDB == "" {
				return fmt.Errorf("history recording is disabled, set history_db in the tool config")
			}

			file, err := config.FindConfigPath(cfg.ConfigRoot, args[0])
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), file, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Printf("no recorded runs for %s\n", file)
				return nil
			}

			for _, run := range runs {
				fmt.Printf("%s  %s  outcome=%s passes=%d  %d error(s), %d warning(s), %d info\n",
					run.StartedAt.Format("2006-01-02 15:04:05"), run.ID,
					run.Outcome, run.Passes, run.Errors, run.Warnings, run.Infos)

				if !verbose {
					continue
				}
				diags, err := store.GetDiagnostics(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				for _, d := range diags {
					fmt.Printf("  %d:%d: [%s] %s (%s)\n", d.Line, d.Column, d.Severity, d.Message, d.Rule)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of runs to show")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also print each run's diagnostics")

	return cmd
}
