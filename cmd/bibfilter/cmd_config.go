package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bibfilter/internal/display"
	"bibfilter/internal/format"
	"bibfilter/internal/query"
	"bibfilter/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage query configurations",
}

var configFlags struct {
	force    bool
	from     string
	query    string
	as       string
	markdown bool
}

var configInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Write the default query configuration to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil && !configFlags.force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		cfg := query.DefaultConfig()
		if err := query.SaveToPath(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration (%s) to %s\n",
			format.Plural(len(cfg.Blocks), "block"), path)
		return nil
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a configuration file or query expression under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *query.Config
		switch {
		case configFlags.from != "":
			c, err := query.LoadFromPath(configFlags.from)
			if err != nil {
				return err
			}
			cfg = c
		case configFlags.query != "":
			p, ok := query.ParseExpression(configFlags.query)
			if !ok {
				return fmt.Errorf("no query terms found in %q", configFlags.query)
			}
			def := query.DefaultConfig()
			cfg = p.Config(def.CaseInsensitive, def.SearchFields)
		default:
			return fmt.Errorf("one of --from or --query is required")
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveConfig(args[0], cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%s)\n", args[0], format.Plural(len(cfg.Blocks), "block"))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		cfg, err := st.GetConfig(args[0])
		if err != nil {
			return err
		}
		if cfg == nil {
			return fmt.Errorf("saved config %q: %w", args[0], store.ErrNotFound)
		}

		w := cmd.OutOrStdout()
		if strings.EqualFold(configFlags.as, "table") {
			fmt.Fprintln(w, blocksTable(cfg, tableMode(configFlags.markdown)))
			return nil
		}
		data, err := query.Marshal(cfg, configFlags.as)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		saved, err := st.ListConfigs()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(saved) == 0 {
			fmt.Fprintln(w, "No saved configurations.")
			return nil
		}
		tb := format.NewTable(tableMode(configFlags.markdown))
		tb.Header("Name", "Blocks", "Fields", "Case", "Updated")
		for _, sc := range saved {
			tb.Row(sc.Name, len(sc.Config.Blocks), display.FieldList(sc.Config.SearchFields),
				display.Case(sc.Config.CaseInsensitive), sc.UpdatedAt)
		}
		fmt.Fprintln(w, tb.String())
		return nil
	},
}

var configDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.DeleteConfig(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", args[0])
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configFlags.force, "force", false, "Overwrite an existing file")
	configSaveCmd.Flags().StringVar(&configFlags.from, "from", "", "Configuration file to save (YAML or JSON)")
	configSaveCmd.Flags().StringVarP(&configFlags.query, "query", "q", "", "Boolean query expression to save")
	configSaveCmd.MarkFlagsMutuallyExclusive("from", "query")
	configShowCmd.Flags().StringVar(&configFlags.as, "format", "yaml", "Output format: yaml, json or table")
	configShowCmd.Flags().BoolVar(&configFlags.markdown, "markdown", false, "Render tables as Markdown")
	configListCmd.Flags().BoolVar(&configFlags.markdown, "markdown", false, "Render tables as Markdown")

	configCmd.AddCommand(configInitCmd, configSaveCmd, configShowCmd, configListCmd, configDeleteCmd)
}

// blocksTable lists blocks with the operator that joins each to the
// previous one.
func blocksTable(cfg *query.Config, m format.Mode) string {
	tb := format.NewTable(m)
	tb.Title(fmt.Sprintf("Fields: %s  Case: %s", display.FieldList(cfg.SearchFields), display.Case(cfg.CaseInsensitive)))
	tb.Header("Op", "Block", "Terms", "Flags")
	for i, b := range cfg.Blocks {
		op := ""
		if i > 0 && i-1 < len(cfg.Operators) {
			op = string(cfg.Operators[i-1])
		}
		tb.Row(op, b.Name, format.Truncate(strings.Join(b.ActiveTerms(), ", "), 60), display.BlockFlags(b))
	}
	tb.Columns(format.ColumnConfig{Number: 3, MaxWidth: 60})
	return tb.String()
}
