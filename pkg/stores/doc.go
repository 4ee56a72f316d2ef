// Package stores persists lint-run history in SQLite so repeated runs
// over the same config can be compared. Schema changes are applied
// through embedded migrations.
package stores
