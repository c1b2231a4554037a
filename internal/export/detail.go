// Package export turns a run result into the shapes its consumers need:
// BibTeX and CSV files, JSON views and report tables.
package export

import (
	"strings"

	"bibfilter/internal/display"
	"bibfilter/internal/match"
	"bibfilter/internal/query"
)

// Detail flattens an entry's hits into "Block [Title: a | b; Abstract: c]"
// parts joined by ", ", in matched-block order.
func Detail(e match.Entry) string {
	parts := make([]string, 0, len(e.MatchedBlocks))
	for _, name := range e.MatchedBlocks {
		fh, ok := e.Hits[name]
		if !ok || fh.Empty() {
			continue
		}
		var fields []string
		for _, f := range query.AllFields {
			if terms := fh.Get(f); len(terms) > 0 {
				fields = append(fields, display.Field(f)+": "+strings.Join(terms, " | "))
			}
		}
		parts = append(parts, name+" ["+strings.Join(fields, "; ")+"]")
	}
	return strings.Join(parts, ", ")
}
