package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bibfilter/internal/display"
	"bibfilter/internal/export"
	"bibfilter/internal/format"
	"bibfilter/internal/highlight"
	"bibfilter/internal/match"
	"bibfilter/internal/query"
	"bibfilter/internal/stats"
	"bibfilter/internal/store"
	"bibfilter/internal/wiring"
)

var runFlags struct {
	config        string
	query         string
	saved         string
	fields        []string
	caseSensitive bool
	bibOut        string
	csvOut        string
	jsonOut       bool
	markdown      bool
	highlight     bool
	colorMode     string
	partial       bool
	unmatched     bool
	stats         bool
	record        bool
}

var runCmd = &cobra.Command{
	Use:   "run <file|->",
	Short: "Filter a bibliography and report matched records",
	Long: `Reads a BibTeX file ("-" for stdin, ".gz" is decompressed), classifies every
entry against the query and prints a summary plus the matched records.

The query comes from --config (YAML or JSON), --query (boolean expression),
--saved (a configuration in the store) or, when none is given, the built-in
default query.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.config, "config", "", "Query configuration file (YAML or JSON)")
	f.StringVarP(&runFlags.query, "query", "q", "", "Boolean query expression")
	f.StringVar(&runFlags.saved, "saved", "", "Name of a saved query configuration")
	f.StringSliceVar(&runFlags.fields, "fields", nil, "Fields to search: title, abstract, keywords")
	f.BoolVar(&runFlags.caseSensitive, "case-sensitive", false, "Match case-sensitively")
	f.StringVar(&runFlags.bibOut, "bib-out", "", "Write matched records as BibTeX to this file")
	f.StringVar(&runFlags.csvOut, "csv-out", "", "Write matched records as CSV to this file")
	f.BoolVar(&runFlags.jsonOut, "json", false, "Print the result as JSON")
	f.BoolVar(&runFlags.markdown, "markdown", false, "Render tables as Markdown")
	f.BoolVar(&runFlags.highlight, "highlight", false, "Print matched text with highlighted terms")
	f.StringVar(&runFlags.colorMode, "color", "auto", "Highlight colours: auto, always, never")
	f.BoolVar(&runFlags.partial, "partial", false, "Also list partially matched records")
	f.BoolVar(&runFlags.unmatched, "unmatched", false, "Also list unmatched records")
	f.BoolVar(&runFlags.stats, "stats", false, "Print per-term statistics over matched records")
	f.BoolVar(&runFlags.record, "record", false, "Record the run in the store history")
	runCmd.MarkFlagsMutuallyExclusive("config", "query", "saved")
}

func runRun(cmd *cobra.Command, args []string) error {
	var st store.Store
	if runFlags.saved != "" || runFlags.record {
		sqlStore, err := openStore()
		if err != nil {
			return err
		}
		defer sqlStore.Close()
		st = sqlStore
	}

	out, err := wiring.Run(wiring.Request{
		Input: args[0],
		Config: wiring.ConfigSource{
			Path:       runFlags.config,
			Saved:      runFlags.saved,
			Expression: runFlags.query,
		},
		Overrides: wiring.Overrides{
			Fields:        runFlags.fields,
			CaseSensitive: runFlags.caseSensitive,
		},
		BibOut: runFlags.bibOut,
		CSVOut: runFlags.csvOut,
		Record: runFlags.record,
	}, st)
	if err != nil {
		return err
	}
	res := out.Result
	w := cmd.OutOrStdout()

	if runFlags.jsonOut {
		return writeJSON(w, export.NewResultView(res, export.ViewOptions{
			Partial:   runFlags.partial,
			Unmatched: runFlags.unmatched,
			Spans:     runFlags.highlight,
		}))
	}

	mode := tableMode(runFlags.markdown)
	fmt.Fprintf(w, "Query: %s\n", res.Expression)
	fmt.Fprintf(w, "Fields: %s  Case: %s\n\n",
		display.FieldList(res.Config.SearchFields), display.Case(res.Config.CaseInsensitive))
	fmt.Fprintln(w, export.SummaryTable(res, mode))

	if len(res.Matched) > 0 {
		fmt.Fprintf(w, "\nMatched (%d):\n%s\n", len(res.Matched), export.EntriesTable(res.Matched, mode))
	}
	if runFlags.partial && len(res.Partial) > 0 {
		fmt.Fprintf(w, "\nPartial (%d):\n%s\n", len(res.Partial), export.EntriesTable(res.Partial, mode))
	}
	if runFlags.unmatched && len(res.Unmatched) > 0 {
		fmt.Fprintf(w, "\nUnmatched (%d):\n%s\n", len(res.Unmatched), export.EntriesTable(res.Unmatched, mode))
	}
	if runFlags.stats {
		fmt.Fprintf(w, "\n%s\n", export.StatsTable(stats.Aggregate(res.Matched, res.Config), mode))
	}
	if runFlags.highlight {
		styler, err := newStyler(res.Config, runFlags.colorMode, runFlags.markdown)
		if err != nil {
			return err
		}
		writeHighlighted(w, res.Matched, res.Config, styler)
		if runFlags.partial {
			writeHighlighted(w, res.Partial, res.Config, styler)
		}
	}
	if runFlags.bibOut != "" {
		fmt.Fprintf(w, "\nWrote %s to %s\n", format.Plural(len(res.Matched), "record"), runFlags.bibOut)
	}
	if runFlags.csvOut != "" {
		fmt.Fprintf(w, "Wrote %s to %s\n", format.Plural(len(res.Matched), "record"), runFlags.csvOut)
	}
	if out.RunID > 0 {
		fmt.Fprintf(w, "Recorded run #%d\n", out.RunID)
	}
	return nil
}

func newStyler(cfg *query.Config, mode string, markdown bool) (highlight.Styler, error) {
	if markdown {
		return highlight.Bold{}, nil
	}
	names := make([]string, len(cfg.Blocks))
	for i, b := range cfg.Blocks {
		names[i] = b.Name
	}
	switch strings.ToLower(mode) {
	case "always":
		return highlight.NewANSI(names, true), nil
	case "never":
		return highlight.Brackets{}, nil
	case "", "auto":
		if color.NoColor {
			return highlight.Brackets{}, nil
		}
		return highlight.NewANSI(names, false), nil
	}
	return nil, fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
}

func writeHighlighted(w io.Writer, entries []match.Entry, cfg *query.Config, s highlight.Styler) {
	for _, e := range entries {
		fmt.Fprintf(w, "\n%s [%s] %s\n", e.Record.Key, display.Outcome(e.Outcome), export.Detail(e))
		texts := match.TextsFor(e.Record, cfg.SearchFields)
		spans := highlight.ForEntry(e, cfg)
		for _, f := range cfg.SearchFields.Selected() {
			text := texts.Get(f)
			if strings.TrimSpace(text) == "" {
				continue
			}
			fmt.Fprintf(w, "  %s: %s\n", display.Field(f), highlight.Render(text, spans[f], s))
		}
	}
}
