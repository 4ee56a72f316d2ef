package commands

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/reportlint/reportlint/pkg/diag"
	"github.com/reportlint/reportlint/pkg/pipeline"
	"github.com/reportlint/reportlint/pkg/telemetry"
)

// relintDelay debounces bursts of editor write events for one file.
const relintDelay = 500 * time.Millisecond

func newWatchCommand() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the config root and re-lint changed configs",
		Long: `Watch the configuration root for changes and re-lint any report
config that is written or created. Runs until interrupted.

With --metrics-addr, lint-run metrics are served over HTTP at /metrics.`,
		Example: `  # Watch with metrics on :9090
  reportlint watch --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadToolConfig()
			if err != nil {
				return err
			}

			metrics := telemetry.NewMetrics()
			if metricsAddr != "" {
				go serveMetrics(metricsAddr, metrics)
			}

			p := pipeline.New(cfg, log.Logger).WithMetrics(metrics)
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				p.WithStore(store)
			}

			return watchConfigs(cmd.Context(), cfg.ConfigRoot, p)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (e.g. :9090)")

	return cmd
}

// watchConfigs watches root recursively and re-lints changed YAML files
// until ctx is cancelled.
func watchConfigs(ctx context.Context, root string, p *pipeline.Pipeline) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	log.Info().Str("root", root).Msg("Watching report configs")

	timers := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// New directories need watching too.
			if event.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := watcher.Add(event.Name); addErr != nil {
						log.Warn().Err(addErr).Str("path", event.Name).Msg("Failed to watch new directory")
					}
					continue
				}
			}

			if !isYAML(event.Name) || isCorrectedCopy(event.Name) {
				continue
			}

			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Config changed")

			file := event.Name
			if t, exists := timers[file]; exists {
				t.Stop()
			}
			timers[file] = time.AfterFunc(relintDelay, func() {
				relint(ctx, p, file)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

// relint runs the pipeline for one changed file and logs the result.
func relint(ctx context.Context, p *pipeline.Pipeline, file string) {
	report, err := p.Run(ctx, file)
	if err != nil {
		log.Error().Err(err).Str("file", file).Msg("Lint run failed")
		return
	}

	counts := diag.CountBySeverity(report.Diagnostics)
	log.Info().
		Str("file", file).
		Int("errors", counts[diag.SeverityError]).
		Int("warnings", counts[diag.SeverityWarning]).
		Int("infos", counts[diag.SeverityInfo]).
		Msg("Lint run completed")
}

// serveMetrics exposes the metrics registry at /metrics.
func serveMetrics(addr string, m *telemetry.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server stopped")
	}
}

// isYAML reports whether path looks like a report config.
func isYAML(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

// isCorrectedCopy skips repaired copies written by the fix command so a
// watch run never lints its own output.
func isCorrectedCopy(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.HasSuffix(base, "_Corrected_Errors")
}
