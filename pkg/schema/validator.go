package schema

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/reportlint/reportlint/pkg/diag"
	"github.com/reportlint/reportlint/pkg/yamldoc"
)

// ruleName tags schema diagnostics for the reporter.
const ruleName = "schema"

// Validator walks a positioned document against the fixed config schemas.
// Validation is best-effort: every violation is collected as a diagnostic
// and nothing aborts the walk.
type Validator struct {
	logger zerolog.Logger
}

// NewValidator creates a validator.
func NewValidator(logger zerolog.Logger) *Validator {
	return &Validator{logger: logger.With().Str("component", "schema").Logger()}
}

// Validate checks the dag, inputs and outputs sections and returns all
// structural violations. Fields present in the document but absent from
// the schema are ignored.
func (v *Validator) Validate(doc *yamldoc.Document) []diag.Diagnostic {
	var diags []diag.Diagnostic

	if dag, ok := doc.Section("dag"); ok {
		diags = append(diags, v.checkRecord(doc.File, "dag", dag, dagSchema)...)
	} else {
		diags = append(diags, v.missingSection(doc, "dag"))
	}

	diags = append(diags, v.checkEntryList(doc, "inputs", inputSchema)...)
	diags = append(diags, v.checkOutputs(doc)...)

	v.logger.Debug().Int("diagnostics", len(diags)).Msg("schema validation complete")
	return diags
}

// checkEntryList validates a section that is a list of records, each
// checked independently against the same schema.
func (v *Validator) checkEntryList(doc *yamldoc.Document, section string, fs FieldSchema) []diag.Diagnostic {
	sec, ok := doc.Section(section)
	if !ok {
		return []diag.Diagnostic{v.missingSection(doc, section)}
	}
	if !sec.IsSequence() {
		return []diag.Diagnostic{v.typeError(doc.File, section, sec, TypeSet{yamldoc.TypeList})}
	}

	var diags []diag.Diagnostic
	for _, item := range sec.Items() {
		if !item.IsMapping() {
			diags = append(diags, v.typeError(doc.File, section+" entry", item, TypeSet{yamldoc.TypeMap}))
			continue
		}
		diags = append(diags, v.checkRecord(doc.File, section, item, fs)...)
	}
	return diags
}

// checkOutputs validates the outputs entries, including the polymorphic
// operations map keyed by operation kind.
func (v *Validator) checkOutputs(doc *yamldoc.Document) []diag.Diagnostic {
	sec, ok := doc.Section("outputs")
	if !ok {
		return []diag.Diagnostic{v.missingSection(doc, "outputs")}
	}
	if !sec.IsSequence() {
		return []diag.Diagnostic{v.typeError(doc.File, "outputs", sec, TypeSet{yamldoc.TypeList})}
	}

	var diags []diag.Diagnostic
	for _, item := range sec.Items() {
		if !item.IsMapping() {
			diags = append(diags, v.typeError(doc.File, "outputs entry", item, TypeSet{yamldoc.TypeMap}))
			continue
		}
		diags = append(diags, v.checkRecord(doc.File, "outputs", item, outputSchema)...)

		ops, ok := item.Get("operations")
		if !ok || !ops.IsMapping() {
			continue
		}
		for _, spec := range operationSpecs {
			op, ok := ops.Get(spec.Kind)
			if !ok {
				continue
			}
			path := "outputs.operations." + spec.Kind
			if !op.IsMapping() {
				diags = append(diags, v.typeError(doc.File, path, op, TypeSet{yamldoc.TypeMap}))
				continue
			}
			diags = append(diags, v.checkRecord(doc.File, path, op, spec.Fields)...)
			if spec.StringValuesOnly {
				diags = append(diags, v.checkStringValues(doc.File, path, op)...)
			}
		}
	}
	return diags
}

// checkRecord compares a mapping's keys and value types against a field
// schema. Absent fields are info-level at the enclosing node; type
// mismatches are errors at the field's own position.
func (v *Validator) checkRecord(file, path string, n *yamldoc.Node, fs FieldSchema) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, field := range fs.sortedFields() {
		child, ok := n.Get(field)
		if !ok {
			diags = append(diags, diag.Diagnostic{
				File:     file,
				Line:     n.Line,
				Column:   n.Column,
				Severity: diag.SeverityInfo,
				Message:  fmt.Sprintf("field %s.%s found in schema but not in config", path, field),
				Rule:     ruleName,
			})
			continue
		}
		if actual := child.TypeName(); !fs[field].Contains(actual) {
			diags = append(diags, diag.Diagnostic{
				File:     file,
				Line:     child.Line,
				Column:   child.Column,
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("field %s.%s: expected %s, got %s", path, field, fs[field], actual),
				Rule:     ruleName,
			})
		}
	}
	return diags
}

// checkStringValues enforces the open-keyed all-strings rule for
// operations that require it.
func (v *Validator) checkStringValues(file, path string, n *yamldoc.Node) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, e := range n.Entries() {
		if actual := e.Node.TypeName(); actual != yamldoc.TypeString {
			diags = append(diags, diag.Diagnostic{
				File:     file,
				Line:     e.Node.Line,
				Column:   e.Node.Column,
				Severity: diag.SeverityError,
				Message:  fmt.Sprintf("field %s.%s: expected %s, got %s", path, e.Key, yamldoc.TypeString, actual),
				Rule:     ruleName,
			})
		}
	}
	return diags
}

func (v *Validator) missingSection(doc *yamldoc.Document, section string) diag.Diagnostic {
	root := doc.Root()
	return diag.Diagnostic{
		File:     doc.File,
		Line:     root.Line,
		Column:   root.Column,
		Severity: diag.SeverityInfo,
		Message:  fmt.Sprintf("section %s found in schema but not in config", section),
		Rule:     ruleName,
	}
}

func (v *Validator) typeError(file, path string, n *yamldoc.Node, want TypeSet) diag.Diagnostic {
	return diag.Diagnostic{
		File:     file,
		Line:     n.Line,
		Column:   n.Column,
		Severity: diag.SeverityError,
		Message:  fmt.Sprintf("%s: expected %s, got %s", path, want, n.TypeName()),
		Rule:     ruleName,
	}
}
