package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reportlint/reportlint/pkg/diag"
	"github.com/reportlint/reportlint/pkg/schema"
	"github.com/reportlint/reportlint/pkg/yamldoc"
)

// ruleName tags cross-check diagnostics for the reporter.
const ruleName = "template"

// templatePrefix is how configs reference templates relative to the
// templates root, e.g. sql_template: sql/report.sql.
const templatePrefix = "sql/"

// schemaSuffix replaces the template extension to derive the
// parameter-schema filename, e.g. report.sql -> report_params.yaml.
const schemaSuffix = "_params.yaml"

// typeAliases normalizes independently-authored schema type names onto
// the runtime type names the YAML loader reports.
var typeAliases = map[string]string{
	"str":      yamldoc.TypeString,
	"string":   yamldoc.TypeString,
	"int":      yamldoc.TypeInt,
	"integer":  yamldoc.TypeInt,
	"float":    yamldoc.TypeFloat,
	"number":   yamldoc.TypeFloat,
	"bool":     yamldoc.TypeBool,
	"boolean":  yamldoc.TypeBool,
	"date":     yamldoc.TypeTimestamp,
	"datetime": yamldoc.TypeTimestamp,
	"list":     yamldoc.TypeList,
	"map":      yamldoc.TypeMap,
}

// CrossChecker validates a config's supplied sql_params against the
// referenced template's declared parameter schema.
type CrossChecker struct {
	// TemplatesRoot is the directory SQL templates resolve under.
	TemplatesRoot string

	logger zerolog.Logger
}

// NewCrossChecker creates a cross-checker resolving templates under root.
func NewCrossChecker(root string, logger zerolog.Logger) *CrossChecker {
	return &CrossChecker{
		TemplatesRoot: root,
		logger:        logger.With().Str("component", "crosscheck").Logger(),
	}
}

// Check resolves the SQL template from the first input entry and
// cross-validates the supplied parameters. All findings are collected as
// diagnostics; nothing aborts the run.
func (c *CrossChecker) Check(doc *yamldoc.Document) []diag.Diagnostic {
	inputs, ok := doc.Section("inputs")
	if !ok || !inputs.IsSequence() {
		return nil
	}
	items := inputs.Items()
	if len(items) == 0 || !items[0].IsMapping() {
		return nil
	}
	input := items[0]

	tmplNode, ok := input.Get("sql_template")
	if !ok {
		return nil
	}
	tmplName, ok := tmplNode.StringValue()
	if !ok {
		return nil
	}

	tmplPath := filepath.Join(c.TemplatesRoot, strings.TrimPrefix(tmplName, templatePrefix))

	var diags []diag.Diagnostic

	tmplText, err := os.ReadFile(tmplPath)
	if err != nil {
		diags = append(diags, diag.Diagnostic{
			File:     doc.File,
			Line:     tmplNode.Line,
			Column:   tmplNode.Column,
			Severity: diag.SeverityError,
			Message:  fmt.Sprintf("cannot read SQL template %s: %v", tmplPath, err),
			Rule:     ruleName,
		})
		return diags
	}

	params, _ := input.Get("sql_params")
	supplied := make(map[string]*yamldoc.Node)
	if params != nil && params.IsMapping() {
		for _, e := range params.Entries() {
			supplied[e.Key] = e.Node
		}
	}
	paramsLine, paramsCol := input.Line, input.Column
	if params != nil {
		paramsLine, paramsCol = params.Line, params.Column
	}

	paramSchema, err := loadParamSchema(tmplPath)
	if err != nil {
		diags = append(diags, diag.Diagnostic{
			File:     doc.File,
			Line:     tmplNode.Line,
			Column:   tmplNode.Column,
			Severity: diag.SeverityError,
			Message:  fmt.Sprintf("cannot load parameter schema: %v", err),
			Rule:     ruleName,
		})
	} else {
		diags = append(diags, c.checkParams(doc.File, paramSchema, supplied, paramsLine, paramsCol)...)
	}

	// Template variables not supplied at all are surfaced so the caller
	// knows the render would fail downstream.
	for _, v := range ExtractVariables(string(tmplText)) {
		if _, ok := supplied[v]; ok {
			continue
		}
		diags = append(diags, diag.Diagnostic{
			File:     doc.File,
			Line:     paramsLine,
			Column:   paramsCol,
			Severity: diag.SeverityInfo,
			Message:  fmt.Sprintf("template variable %s is not supplied in sql_params", v),
			Rule:     ruleName,
		})
	}

	c.logger.Debug().
		Str("template", tmplPath).
		Int("params", len(supplied)).
		Int("diagnostics", len(diags)).
		Msg("cross-check complete")

	return diags
}

// checkParams compares supplied params against the declared schema.
func (c *CrossChecker) checkParams(file string, paramSchema map[string]schema.TypeSet, supplied map[string]*yamldoc.Node, line, col int) []diag.Diagnostic {
	var diags []diag.Diagnostic

	fields := make([]string, 0, len(paramSchema))
	for f := range paramSchema {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, field := range fields {
		accepted := paramSchema[field]
		node, ok := supplied[field]
		if !ok {
			diags = append(diags, diag.Diagnostic{
				File:     file,
				Line:     line,
				Column:   col,
				Severity: diag.SeverityInfo,
				Message:  fmt.Sprintf("parameter %s found in template schema but not in sql_params", field),
				Rule:     ruleName,
			})
			continue
		}
		if !typeMatches(node.TypeName(), accepted) {
			diags = append(diags, diag.Diagnostic{
				File:     file,
				Line:     node.Line,
				Column:   node.Column,
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("parameter %s: accepted types %s, got %s", field, accepted, node.TypeName()),
				Rule:     ruleName,
			})
		}
	}
	return diags
}

// typeMatches reports whether the runtime type satisfies any member of
// the accepted union, after alias normalization on both sides.
func typeMatches(actual string, accepted schema.TypeSet) bool {
	norm := normalize(actual)
	for _, a := range accepted {
		if normalize(a) == norm {
			return true
		}
	}
	return false
}

func normalize(name string) string {
	if n, ok := typeAliases[strings.ToLower(name)]; ok {
		return n
	}
	return strings.ToLower(name)
}

// loadParamSchema reads the parameter schema derived from the template
// path by the fixed naming convention. Values are a type name or a list
// of type names denoting a union.
func loadParamSchema(tmplPath string) (map[string]schema.TypeSet, error) {
	schemaPath := strings.TrimSuffix(tmplPath, filepath.Ext(tmplPath)) + schemaSuffix

	b, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", schemaPath, err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", schemaPath, err)
	}

	out := make(map[string]schema.TypeSet, len(raw))
	for field, v := range raw {
		switch t := v.(type) {
		case string:
			out[field] = schema.TypeSet{t}
		case []interface{}:
			ts := make(schema.TypeSet, 0, len(t))
			for _, e := range t {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("field %s: union members must be type names", field)
				}
				ts = append(ts, s)
			}
			out[field] = ts
		default:
			return nil, fmt.Errorf("field %s: expected a type name or list of type names", field)
		}
	}
	return out, nil
}
