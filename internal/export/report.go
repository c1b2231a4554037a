package export

import (
	"fmt"
	"strings"

	"bibfilter/internal/display"
	"bibfilter/internal/format"
	"bibfilter/internal/match"
	"bibfilter/internal/stats"
)

// SummaryTable renders the outcome counts of a run.
func SummaryTable(res *match.RunResult, m format.Mode) string {
	s := res.Summary
	tb := format.NewTable(m)
	tb.Title(res.Expression)
	tb.Header("Outcome", "Records", "Share")
	tb.Row(display.Outcome(match.Matched), s.Matched, format.FmtPercent(s.Matched, s.Eligible))
	tb.Row(display.Outcome(match.Partial), s.Partial, format.FmtPercent(s.Partial, s.Eligible))
	tb.Row(display.Outcome(match.Unmatched), s.Unmatched, format.FmtPercent(s.Unmatched, s.Eligible))
	tb.Footer("Eligible", s.Eligible, fmt.Sprintf("of %d", s.Total))
	tb.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
	)
	return tb.String()
}

// EntriesTable lists entries with their matched blocks. Partial entries
// show the blocks that did not fire.
func EntriesTable(entries []match.Entry, m format.Mode) string {
	tb := format.NewTable(m)
	tb.Header("Key", "Year", "Title", "Blocks", "Missing")
	for _, e := range entries {
		tb.Row(
			e.Record.Key,
			e.Record.Year(),
			format.Truncate(e.Record.CleanTitle(), 70),
			strings.Join(e.MatchedBlocks, ", "),
			strings.Join(e.Missing, ", "),
		)
	}
	tb.Columns(format.ColumnConfig{Number: 3, MaxWidth: 70})
	return tb.String()
}

// StatsTable renders the per-block term breakdown.
func StatsTable(st stats.Stats, m format.Mode) string {
	tb := format.NewTable(m)
	tb.Title("Term frequency over " + format.Plural(st.Records, "matched record"))
	tb.Header("Block", "Term", "Docs", "Title", "Abstract", "Keywords")
	for _, b := range st.Blocks {
		for _, tc := range b.Terms {
			tb.Row(b.Block, tc.Term, tc.Docs, tc.Title, tc.Abstract, tc.Keywords)
		}
	}
	tb.Footer("", "Total", "", st.Fields.Title, st.Fields.Abstract, st.Fields.Keywords)
	tb.Columns(
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
		format.ColumnConfig{Number: 6, Align: format.AlignRight},
	)
	return tb.String()
}
