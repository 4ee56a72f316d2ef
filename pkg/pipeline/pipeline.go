// Package pipeline runs the full lint flow for one file: auto-repair
// first, then positioned parsing, schema validation and the template
// cross-check over the repaired document.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reportlint/reportlint/pkg/config"
	"github.com/reportlint/reportlint/pkg/diag"
	"github.com/reportlint/reportlint/pkg/lint"
	"github.com/reportlint/reportlint/pkg/repair"
	"github.com/reportlint/reportlint/pkg/schema"
	"github.com/reportlint/reportlint/pkg/stores"
	"github.com/reportlint/reportlint/pkg/telemetry"
	"github.com/reportlint/reportlint/pkg/template"
	"github.com/reportlint/reportlint/pkg/yamldoc"
)

// Report is the combined result of one pipeline run.
type Report struct {
	// File is the linted config path.
	File string

	// Repair is the auto-repair result; nil when repair was skipped.
	Repair *repair.Result

	// Diagnostics is the combined set: checker leftovers, schema
	// violations and cross-check findings.
	Diagnostics []diag.Diagnostic
}

// Pipeline wires the repair engine, the validators and the optional
// history store and metrics together.
type Pipeline struct {
	cfg     config.Config
	logger  zerolog.Logger
	metrics *telemetry.Metrics
	store   *stores.SQLiteStore
}

// New creates a pipeline from the tool configuration.
func New(cfg config.Config, logger zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, logger: logger.With().Str("component", "pipeline").Logger()}
}

// WithMetrics attaches a metrics collector.
func (p *Pipeline) WithMetrics(m *telemetry.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// WithStore attaches a lint-run history store.
func (p *Pipeline) WithStore(s *stores.SQLiteStore) *Pipeline {
	p.store = s
	return p
}

// Run repairs and validates one file. The returned report is non-nil
// whenever repair ran, even when a later stage failed; the error then
// says which stage halted the run.
func (p *Pipeline) Run(ctx context.Context, file string) (*Report, error) {
	started := time.Now().UTC()

	engine := repair.NewEngine(p.checker(), repair.DefaultFixers(p.cfg.MaxLineLength), p.cfg.MaxPasses, p.logger)
	repRes, err := engine.Repair(ctx, file)
	if err != nil {
		p.metrics.RecordCheckerFailure()
		return nil, err
	}

	report := &Report{
		File:        file,
		Repair:      repRes,
		Diagnostics: append([]diag.Diagnostic(nil), repRes.Diagnostics...),
	}

	doc, err := yamldoc.Load(file)
	if err != nil {
		// Parse failure is fatal for this file: schema validation and the
		// cross-check are skipped and only the parse failure is reported.
		p.finish(ctx, report, started)
		return report, err
	}

	validator := schema.NewValidator(p.logger)
	report.Diagnostics = append(report.Diagnostics, validator.Validate(doc)...)

	crosschecker := template.NewCrossChecker(p.cfg.TemplatesRoot, p.logger)
	report.Diagnostics = append(report.Diagnostics, crosschecker.Check(doc)...)

	p.finish(ctx, report, started)
	return report, nil
}

// Validate parses and validates one file without repairing it first.
func (p *Pipeline) Validate(_ context.Context, file string) (*Report, error) {
	doc, err := yamldoc.Load(file)
	if err != nil {
		return nil, err
	}

	report := &Report{File: file}
	report.Diagnostics = append(report.Diagnostics, schema.NewValidator(p.logger).Validate(doc)...)
	report.Diagnostics = append(report.Diagnostics, template.NewCrossChecker(p.cfg.TemplatesRoot, p.logger).Check(doc)...)
	return report, nil
}

// checker builds the external checker runner, resolving the rule config
// by path or recursive search. A missing rule config falls back to the
// checker's own defaults.
func (p *Pipeline) checker() lint.Checker {
	ruleConfig := lint.ResolveRuleConfig(p.cfg.ConfigRoot, p.cfg.RuleConfig, p.logger)
	return lint.NewRunner(p.cfg.CheckerBinary, ruleConfig, p.cfg.CheckerTimeout(), p.logger)
}

// finish records metrics and history for a completed run.
func (p *Pipeline) finish(ctx context.Context, report *Report, started time.Time) {
	outcome := ""
	passes := 0
	if report.Repair != nil {
		outcome = string(report.Repair.Outcome)
		passes = report.Repair.Passes
	}

	p.metrics.RecordRun(outcome, passes)
	for _, d := range report.Diagnostics {
		p.metrics.RecordDiagnostic(string(d.Severity))
	}

	if p.store == nil {
		return
	}

	counts := diag.CountBySeverity(report.Diagnostics)
	run := &stores.Run{
		ID:          uuid.NewString(),
		File:        report.File,
		Outcome:     outcome,
		Passes:      passes,
		Errors:      counts[diag.SeverityError],
		Warnings:    counts[diag.SeverityWarning],
		Infos:       counts[diag.SeverityInfo],
		StartedAt:   started,
		CompletedAt: time.Now().UTC(),
	}
	stored := make([]stores.StoredDiagnostic, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		stored = append(stored, stores.StoredDiagnostic{
			RunID:    run.ID,
			Line:     d.Line + 1,
			Column:   d.Column + 1,
			Severity: string(d.Severity),
			Message:  d.Message,
			Rule:     d.Rule,
		})
	}
	if err := p.store.CreateRun(ctx, run, stored); err != nil {
		p.logger.Error().Err(err).Msg("failed to record lint run")
	}
}
