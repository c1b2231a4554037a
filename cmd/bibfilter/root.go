package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bibfilter/internal/format"
	"bibfilter/internal/logging"
	"bibfilter/internal/store"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
	dbPath    string
	tables    string
}

var rootCmd = &cobra.Command{
	Use:   "bibfilter",
	Short: "Filter bibliographies with block-based boolean queries",
	Long: "bibfilter classifies BibTeX entries against a query made of term blocks\n" +
		"joined by AND/OR, reports matched and partially matched records and\n" +
		"exports the matches as BibTeX or CSV.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		if rootFlags.logFormat != "text" && rootFlags.logFormat != "json" {
			return fmt.Errorf("unknown log format %q (want text or json)", rootFlags.logFormat)
		}
		if _, err := format.ParseMode(rootFlags.tables); err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&rootFlags.tables, "table-format", "ascii", "Table format: ascii, markdown, html, csv")
	pf.StringVar(&rootFlags.dbPath, "db", "", "Store path (default $BIBFILTER_DB or "+store.DefaultDBPath+")")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseQueryCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
