package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bibfilter/internal/format"
	"bibfilter/internal/query"
)

var parseFlags struct {
	output string
	as     string
	stem   bool
}

var parseQueryCmd = &cobra.Command{
	Use:   "parse-query <expression>",
	Short: "Turn a boolean query string into a query configuration",
	Long: `Parses an expression such as

  ("virtual reality" OR VR) AND (remote OR online) AND NOT museum

into term blocks joined by AND. The configuration is printed as YAML or
written to --output (format chosen by extension). --stem rewrites single
words into Porter2 stem wildcards.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParseQuery,
}

func init() {
	f := parseQueryCmd.Flags()
	f.StringVarP(&parseFlags.output, "output", "o", "", "Write the configuration to this file (.yaml or .json)")
	f.StringVar(&parseFlags.as, "format", "yaml", "Printed format: yaml or json")
	f.BoolVar(&parseFlags.stem, "stem", false, "Rewrite single-word terms to stem wildcards")
}

func runParseQuery(cmd *cobra.Command, args []string) error {
	expr := strings.Join(args, " ")
	p, ok := query.ParseExpression(expr)
	if !ok {
		return fmt.Errorf("no query terms found in %q", expr)
	}
	def := query.DefaultConfig()
	cfg := p.Config(def.CaseInsensitive, def.SearchFields)

	w := cmd.OutOrStdout()
	if parseFlags.stem {
		n := query.StemTerms(cfg)
		fmt.Fprintf(cmd.ErrOrStderr(), "Stemmed %s\n", format.Plural(n, "term"))
	}

	if parseFlags.output != "" {
		if err := query.SaveToPath(parseFlags.output, cfg); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s to %s\n", format.Plural(len(cfg.Blocks), "block"), filepath.Clean(parseFlags.output))
		return nil
	}
	data, err := query.Marshal(cfg, parseFlags.as)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
