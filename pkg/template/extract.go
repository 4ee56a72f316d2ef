// Package template resolves the SQL template referenced by a config,
// loads its declared parameter schema, and cross-validates the config's
// supplied parameters against it. Template-language parsing is limited to
// extracting undeclared variable names; the template is never rendered.
package template

import (
	"regexp"
	"sort"
)

var (
	// exprRe captures the leading identifier of an interpolation
	// expression: {{ start_date }}, {{ region | upper }}.
	exprRe = regexp.MustCompile(`\{\{-?\s*([A-Za-z_][A-Za-z0-9_]*)`)

	// condRe captures the leading identifier of a condition block:
	// {% if region %}, {% elif limit %}.
	condRe = regexp.MustCompile(`\{%-?\s*(?:if|elif)\s+([A-Za-z_][A-Za-z0-9_]*)`)

	// forRe captures loop targets, which are declared locally rather than
	// supplied as parameters: {% for row in rows %}.
	forRe = regexp.MustCompile(`\{%-?\s*for\s+([A-Za-z_][A-Za-z0-9_]*)\s+in\s+([A-Za-z_][A-Za-z0-9_]*)`)

	// setRe captures local assignments: {% set limit = 100 %}.
	setRe = regexp.MustCompile(`\{%-?\s*set\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// ExtractVariables returns the sorted set of undeclared variable names the
// template interpolates. Loop targets and set-assigned names are declared
// locally and excluded; loop sources count as undeclared.
func ExtractVariables(text string) []string {
	declared := make(map[string]bool)
	for _, m := range forRe.FindAllStringSubmatch(text, -1) {
		declared[m[1]] = true
	}
	for _, m := range setRe.FindAllStringSubmatch(text, -1) {
		declared[m[1]] = true
	}

	used := make(map[string]bool)
	for _, m := range exprRe.FindAllStringSubmatch(text, -1) {
		used[m[1]] = true
	}
	for _, m := range condRe.FindAllStringSubmatch(text, -1) {
		used[m[1]] = true
	}
	for _, m := range forRe.FindAllStringSubmatch(text, -1) {
		used[m[2]] = true
	}

	var vars []string
	for v := range used {
		if !declared[v] {
			vars = append(vars, v)
		}
	}
	sort.Strings(vars)
	return vars
}
