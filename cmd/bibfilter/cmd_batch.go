package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bibfilter/internal/batch"
	"bibfilter/internal/format"
	"bibfilter/internal/wiring"
)

var batchFlags struct {
	config   string
	query    string
	parallel int
	markdown bool
}

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Filter several bibliographies with one query",
	Long: `Runs the same query over every file with a bounded worker pool and prints
one summary row per file. A file that cannot be read or holds no entries is
reported in its row and does not stop the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchFlags.config, "config", "", "Query configuration file (YAML or JSON)")
	f.StringVarP(&batchFlags.query, "query", "q", "", "Boolean query expression")
	f.IntVar(&batchFlags.parallel, "parallel", 4, "Number of files filtered concurrently")
	f.BoolVar(&batchFlags.markdown, "markdown", false, "Render tables as Markdown")
	batchCmd.MarkFlagsMutuallyExclusive("config", "query")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, _, err := wiring.ResolveConfig(wiring.ConfigSource{
		Path:       batchFlags.config,
		Expression: batchFlags.query,
	}, wiring.Overrides{}, nil)
	if err != nil {
		return err
	}

	results, err := batch.Run(cmd.Context(), args, batch.Config{Query: cfg, Parallel: batchFlags.parallel})
	if err != nil {
		return err
	}

	tb := format.NewTable(tableMode(batchFlags.markdown))
	tb.Header("File", "Entries", "Eligible", "Matched", "Partial", "Time", "Error")
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			tb.Row(r.Path, "-", "-", "-", "-", format.FmtDuration(r.Elapsed), r.Err.Error())
			continue
		}
		s := r.Result.Summary
		tb.Row(r.Path, s.Total, s.Eligible, s.Matched, s.Partial, format.FmtDuration(r.Elapsed), "")
	}
	t := batch.Totals(results)
	tb.Footer("Total", t.Total, t.Eligible, t.Matched, t.Partial, "", "")
	tb.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
		format.ColumnConfig{Number: 5, Align: format.AlignRight},
	)

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, tb.String())
	if failed > 0 {
		fmt.Fprintf(w, "%s failed\n", format.Plural(failed, "file"))
	}
	return nil
}
