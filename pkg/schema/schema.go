// Package schema validates the positioned configuration tree against the
// fixed report-config schemas: the dag record, the input entries, the
// output entries and their polymorphic operation kinds.
package schema

import (
	"sort"
	"strings"

	"github.com/reportlint/reportlint/pkg/yamldoc"
)

// TypeSet is an ordered union of acceptable type names for a field.
type TypeSet []string

// Contains reports whether name is an accepted type.
func (ts TypeSet) Contains(name string) bool {
	for _, t := range ts {
		if t == name {
			return true
		}
	}
	return false
}

// String renders the union for diagnostics, e.g. "date, datetime".
func (ts TypeSet) String() string {
	return strings.Join(ts, ", ")
}

// FieldSchema maps field names to their accepted types.
type FieldSchema map[string]TypeSet

// sortedFields returns the schema's field names in stable order so the
// emitted diagnostics are deterministic.
func (fs FieldSchema) sortedFields() []string {
	fields := make([]string, 0, len(fs))
	for f := range fs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// dagSchema is the expected shape of the top-level dag record.
var dagSchema = FieldSchema{
	"dag_id":            {yamldoc.TypeString},
	"owner":             {yamldoc.TypeString},
	"schedule_interval": {yamldoc.TypeString},
	"start_date":        {yamldoc.TypeString, yamldoc.TypeTimestamp},
	"catchup":           {yamldoc.TypeBool},
	"retries":           {yamldoc.TypeInt},
	"tags":              {yamldoc.TypeList},
}

// inputSchema is the expected shape of each inputs entry.
var inputSchema = FieldSchema{
	"name":          {yamldoc.TypeString},
	"connection_id": {yamldoc.TypeString},
	"sql_template":  {yamldoc.TypeString},
	"sql_params":    {yamldoc.TypeMap},
}

// outputSchema is the expected shape of each outputs entry.
var outputSchema = FieldSchema{
	"name":       {yamldoc.TypeString},
	"operations": {yamldoc.TypeMap},
}

// OperationSpec is one variant of the closed operation union. Each kind
// carries its own field schema; StringValuesOnly additionally requires
// every value under the operation to be a plain string regardless of key.
type OperationSpec struct {
	Kind             string
	Fields           FieldSchema
	StringValuesOnly bool
}

// operationSpecs enumerates the supported operation kinds.
var operationSpecs = []OperationSpec{
	{
		Kind: "UploadToAzureStorageFromRedis",
		Fields: FieldSchema{
			"redis_key":      {yamldoc.TypeString},
			"container":      {yamldoc.TypeString},
			"blob_path":      {yamldoc.TypeString},
			"overwrite":      {yamldoc.TypeBool},
			"content_type":   {yamldoc.TypeString},
			"delete_on_done": {yamldoc.TypeBool},
		},
	},
	{
		Kind: "GenerateSasLink",
		Fields: FieldSchema{
			"container": {yamldoc.TypeString},
			"blob_path": {yamldoc.TypeString},
			"expiry":    {yamldoc.TypeString},
		},
		StringValuesOnly: true,
	},
	{
		Kind: "Email",
		Fields: FieldSchema{
			"to":      {yamldoc.TypeString},
			"subject": {yamldoc.TypeString},
			"body":    {yamldoc.TypeString},
			"attach":  {yamldoc.TypeList},
		},
	},
}
