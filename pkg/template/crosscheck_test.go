package template

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reportlint/reportlint/pkg/diag"
	"github.com/reportlint/reportlint/pkg/yamldoc"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "plain interpolations",
			text: "SELECT * FROM sales WHERE day >= '{{ start_date }}' AND region = '{{ region }}'",
			want: []string{"region", "start_date"},
		},
		{
			name: "filters and conditions",
			text: "{% if limit %}LIMIT {{ limit }}{% endif %} ORDER BY {{ sort_col | lower }}",
			want: []string{"limit", "sort_col"},
		},
		{
			name: "loop targets are local, sources are not",
			text: "{% for col in columns %}{{ col }},{% endfor %}",
			want: []string{"columns"},
		},
		{
			name: "set declares locally",
			text: "{% set batch = 100 %}LIMIT {{ batch }} OFFSET {{ offset }}",
			want: []string{"offset"},
		},
		{
			name: "no variables",
			text: "SELECT 1",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVariables(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// fixture builds a config with its template and parameter schema on disk
// and returns the loaded document plus the templates root.
func fixture(t *testing.T, sqlParams, paramSchema, templateText string) (*yamldoc.Document, string) {
	t.Helper()
	dir := t.TempDir()

	tmplRoot := filepath.Join(dir, "sql_templates")
	if err := os.MkdirAll(tmplRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmplRoot, "report.sql"), []byte(templateText), 0o644); err != nil {
		t.Fatal(err)
	}
	if paramSchema != "" {
		if err := os.WriteFile(filepath.Join(tmplRoot, "report_params.yaml"), []byte(paramSchema), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	config := "---\ninputs:\n  - name: daily\n    sql_template: sql/report.sql\n    sql_params:\n" + sqlParams
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := yamldoc.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	return doc, tmplRoot
}

func TestCrossCheckTypeMismatch(t *testing.T) {
	doc, root := fixture(t,
		"      start_date: 2024\n",
		"start_date: [date, datetime]\n",
		"SELECT * FROM sales WHERE day >= '{{ start_date }}'",
	)

	cc := NewCrossChecker(root, zerolog.Nop())
	diags := cc.Check(doc)

	var errs []diag.Diagnostic
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			errs = append(errs, d)
		}
	}
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", diags)
	}
	if !strings.Contains(errs[0].Message, "date, datetime") {
		t.Errorf("message should list all accepted types: %q", errs[0].Message)
	}
	if !strings.Contains(errs[0].Message, "got int") {
		t.Errorf("message should name the actual type: %q", errs[0].Message)
	}
	// Positioned at the offending parameter ("start_date:" is 0-based 5).
	if errs[0].Line != 5 {
		t.Errorf("line = %d, want 5", errs[0].Line)
	}
}

func TestCrossCheckUnionMatch(t *testing.T) {
	doc, root := fixture(t,
		"      start_date: 2024-01-01\n",
		"start_date: [date, datetime]\n",
		"SELECT '{{ start_date }}'",
	)

	cc := NewCrossChecker(root, zerolog.Nop())
	for _, d := range cc.Check(doc) {
		if d.Severity == diag.SeverityError {
			t.Errorf("unexpected error: %s", d)
		}
	}
}

func TestCrossCheckMissingSchemaField(t *testing.T) {
	doc, root := fixture(t,
		"      start_date: 2024-01-01\n",
		"start_date: [date]\nregion: str\n",
		"SELECT 1",
	)

	cc := NewCrossChecker(root, zerolog.Nop())
	diags := cc.Check(doc)

	var found bool
	for _, d := range diags {
		if d.Severity == diag.SeverityInfo && strings.Contains(d.Message, "parameter region found in template schema but not in sql_params") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing schema field not surfaced: %v", diags)
	}
}

func TestCrossCheckUnsuppliedTemplateVariable(t *testing.T) {
	doc, root := fixture(t,
		"      start_date: 2024-01-01\n",
		"start_date: [date]\n",
		"SELECT * FROM t WHERE day >= '{{ start_date }}' AND region = '{{ region }}'",
	)

	cc := NewCrossChecker(root, zerolog.Nop())
	diags := cc.Check(doc)

	var found bool
	for _, d := range diags {
		if strings.Contains(d.Message, "template variable region is not supplied") {
			found = true
		}
	}
	if !found {
		t.Errorf("unsupplied template variable not surfaced: %v", diags)
	}
}

func TestCrossCheckMissingTemplate(t *testing.T) {
	doc, root := fixture(t, "      start_date: 2024-01-01\n", "", "SELECT 1")
	if err := os.Remove(filepath.Join(root, "report.sql")); err != nil {
		t.Fatal(err)
	}

	cc := NewCrossChecker(root, zerolog.Nop())
	diags := cc.Check(doc)

	if len(diags) != 1 || diags[0].Severity != diag.SeverityError {
		t.Fatalf("expected a single error diagnostic, got %v", diags)
	}
	if !strings.Contains(diags[0].Message, "cannot read SQL template") {
		t.Errorf("message = %q", diags[0].Message)
	}
}

func TestCrossCheckNoInputs(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("---\ndag:\n  owner: alice\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := yamldoc.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}

	cc := NewCrossChecker(dir, zerolog.Nop())
	if diags := cc.Check(doc); diags != nil {
		t.Errorf("expected no diagnostics without inputs, got %v", diags)
	}
}
