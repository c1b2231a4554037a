package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"bibfilter/internal/logging"
	mcpserver "bibfilter/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var serveFlags struct {
	sessionTTL time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the filter as tools:
load_bibliography, filter_bibliography, parse_query, highlight_entry,
list_configs and save_config.

The server watches its parent process and shuts down when the client that
launched it exits.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveFlags.sessionTTL, "session-ttl", mcpserver.DefaultSessionTTL, "Idle time before a loaded bibliography is dropped")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ttl := serveFlags.sessionTTL
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	srv := mcpserver.NewServer(st)
	srv.Sessions.SetTTL(ttl)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, mcpserver.DefaultWatchInterval, cancel)

	logging.New("mcp").Info("starting bibfilter MCP server over stdio (parent watchdog active)", "db", resolveDBPath(), "session_ttl", ttl)
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
