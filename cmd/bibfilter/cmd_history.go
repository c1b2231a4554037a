package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bibfilter/internal/format"
)

var historyFlags struct {
	limit    int
	markdown bool
	keys     bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "Maximum number of runs (0 for all)")
	historyCmd.Flags().BoolVar(&historyFlags.markdown, "markdown", false, "Render tables as Markdown")
	historyCmd.Flags().BoolVar(&historyFlags.keys, "keys", false, "Show matched keys")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(historyFlags.limit)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return nil
	}

	tb := format.NewTable(tableMode(historyFlags.markdown))
	cols := []string{"#", "When", "Source", "Config", "Eligible", "Matched", "Partial"}
	if historyFlags.keys {
		cols = append(cols, "Keys")
	}
	tb.Header(cols...)
	for _, r := range runs {
		name := r.ConfigName
		if name == "" {
			name = format.Truncate(r.Expression, 40)
		}
		row := []any{r.ID, r.CreatedAt, r.Source, name, r.Summary.Eligible, r.Summary.Matched, r.Summary.Partial}
		if historyFlags.keys {
			row = append(row, strings.Join(r.MatchedKeys, ", "))
		}
		tb.Row(row...)
	}
	fmt.Fprintln(w, tb.String())
	return nil
}
