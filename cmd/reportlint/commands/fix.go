package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/reportlint/reportlint/pkg/config"
	"github.com/reportlint/reportlint/pkg/lint"
	"github.com/reportlint/reportlint/pkg/repair"
)

func newFixCommand() *cobra.Command {
	var toCopy bool

	cmd := &cobra.Command{
		Use:   "fix <config>",
		Short: "Auto-repair formatting issues only",
		Long: `Run the auto-repair engine without schema validation or the
template cross-check.

By default the file is repaired in place. With --output the repaired
copy is written next to it with a _Corrected_Errors suffix and the
original is left untouched.`,
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

			target := file
			if toCopy {
				target = correctedCopyPath(file)
				if err := copyFile(file, target); err != nil {
					return err
				}
				log.Info().Str("file", target).Msg("Repairing a copy of the original")
			}

			ruleConfig := lint.ResolveRuleConfig(cfg.ConfigRoot, cfg.RuleConfig, log.Logger)
			checker := lint.NewRunner(cfg.CheckerBinary, ruleConfig, cfg.CheckerTimeout(), log.Logger)
			engine := repair.NewEngine(checker, repair.DefaultFixers(cfg.MaxLineLength), cfg.MaxPasses, log.Logger)

			res, err := engine.Repair(cmd.Context(), target)
			if err != nil {
				return err
			}

			reportRepair(res)
			for _, d := range res.Diagnostics {
				fmt.Println(d)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&toCopy, "output", false, "repair a _Corrected_Errors copy instead of the original")

	return cmd
}

// correctedCopyPath derives the suffixed copy name for --keep-original.
func correctedCopyPath(file string) string {
	ext := filepath.Ext(file)
	return strings.TrimSuffix(file, ext) + "_Corrected_Errors" + ext
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return out.Close()
}
