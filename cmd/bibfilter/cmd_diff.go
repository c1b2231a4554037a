package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bibfilter/internal/bibtex"
	"bibfilter/internal/compare"
	"bibfilter/internal/format"
	"bibfilter/internal/query"
	"bibfilter/internal/store"
	"bibfilter/internal/wiring"
)

var diffFlags struct {
	left    string
	right   string
	context int
}

var diffCmd = &cobra.Command{
	Use:   "diff <file> --left <query> --right <query>",
	Short: "Compare the records two queries match on one bibliography",
	Long: `Runs two queries over the same bibliography and prints the matched sets
as a unified diff of "key<TAB>title" lines.

Each side is a configuration file path, "saved:<name>" for a stored
configuration, "default" for the built-in query, or a boolean expression.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	f := diffCmd.Flags()
	f.StringVar(&diffFlags.left, "left", "", "Left query")
	f.StringVar(&diffFlags.right, "right", "", "Right query")
	f.IntVar(&diffFlags.context, "context", 3, "Unchanged lines around each hunk")
	_ = diffCmd.MarkFlagRequired("left")
	_ = diffCmd.MarkFlagRequired("right")
}

func runDiff(cmd *cobra.Command, args []string) error {
	text, err := bibtex.ReadFile(args[0])
	if err != nil {
		return err
	}
	records, err := bibtex.Parse(text)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	var st store.Store
	if strings.HasPrefix(diffFlags.left, "saved:") || strings.HasPrefix(diffFlags.right, "saved:") {
		sqlStore, err := openStore()
		if err != nil {
			return err
		}
		defer sqlStore.Close()
		st = sqlStore
	}
	left, err := diffSide(diffFlags.left, st)
	if err != nil {
		return fmt.Errorf("left: %w", err)
	}
	right, err := diffSide(diffFlags.right, st)
	if err != nil {
		return fmt.Errorf("right: %w", err)
	}

	d, err := compare.Configs(records, left, right, compare.Options{Context: diffFlags.context})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %s matched\n", left.Name, format.Plural(len(d.Left.Matched), "record"))
	fmt.Fprintf(w, "%s: %s matched\n", right.Name, format.Plural(len(d.Right.Matched), "record"))
	if d.Same() {
		fmt.Fprintln(w, "Both queries match the same records.")
		return nil
	}
	fmt.Fprintf(w, "Only left: %d  Only right: %d  Both: %d\n\n", len(d.OnlyLeft), len(d.OnlyRight), len(d.Both))
	fmt.Fprint(w, d.Patch)
	return nil
}

// diffSide resolves one side of a comparison.
func diffSide(side string, st store.Store) (compare.Side, error) {
	side = strings.TrimSpace(side)
	var src wiring.ConfigSource
	switch {
	case side == "default":
		return compare.Side{Name: "default", Config: query.DefaultConfig()}, nil
	case strings.HasPrefix(side, "saved:"):
		src.Saved = strings.TrimPrefix(side, "saved:")
	case fileExists(side):
		src.Path = side
	default:
		src.Expression = side
	}
	cfg, _, err := wiring.ResolveConfig(src, wiring.Overrides{}, st)
	if err != nil {
		return compare.Side{}, err
	}
	return compare.Side{Name: side, Config: cfg}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
