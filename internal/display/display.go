// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output, markdown reports, logs, and docs.
// Keep raw codes for JSON fields, map keys, and equality comparisons.
package display

import (
	"strings"

	"bibfilter/internal/match"
	"bibfilter/internal/query"
)

// --- Outcomes ---

var outcomes = map[match.Outcome]string{
	match.Matched:   "Matched",
	match.Partial:   "Partial",
	match.Unmatched: "Unmatched",
}

// Outcome returns "Matched", "Partial" or "Unmatched".
func Outcome(o match.Outcome) string {
	if name, ok := outcomes[o]; ok {
		return name
	}
	return o.String()
}

// --- Fields ---

var fields = map[query.Field]string{
	query.Title:    "Title",
	query.Abstract: "Abstract",
	query.Keywords: "Keywords",
}

// Field returns the capitalised field name. Unknown fields are returned as-is.
func Field(f query.Field) string {
	if name, ok := fields[f]; ok {
		return name
	}
	return string(f)
}

// FieldList joins the selected fields, "Title, Abstract". An empty
// selection reads "none".
func FieldList(sel query.Fields) string {
	fs := sel.Selected()
	if len(fs) == 0 {
		return "none"
	}
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = Field(f)
	}
	return strings.Join(names, ", ")
}

// --- Blocks ---

// BlockFlags returns "regex, NOT" style flags for a block, "" when plain.
func BlockFlags(b query.Block) string {
	var flags []string
	if b.IsRegex {
		flags = append(flags, "regex")
	}
	if b.Exclude {
		flags = append(flags, "NOT")
	}
	return strings.Join(flags, ", ")
}

// Case returns "case-insensitive" or "case-sensitive".
func Case(insensitive bool) string {
	if insensitive {
		return "case-insensitive"
	}
	return "case-sensitive"
}
