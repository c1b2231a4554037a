package mcp

import (
	"context"
	"os"
	"time"

	"bibfilter/internal/logging"
)

// DefaultWatchInterval is how often WatchParent polls the parent PID.
const DefaultWatchInterval = 2 * time.Second

// getppid is swapped in tests.
var getppid = os.Getppid

// WatchParent cancels the server when the process that launched it goes
// away. Stdio MCP clients start the server as a child; when the client
// exits the server is re-parented and its parent PID changes.
//
// It never reads stdin: the SDK's StdioTransport owns it, and a second
// reader would steal JSON-RPC bytes.
//
// The goroutine returns once ctx is done or cancel has been called.
func WatchParent(ctx context.Context, interval time.Duration, cancel context.CancelFunc) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	ppid := getppid()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if now := getppid(); now != ppid {
					logging.New("mcp").Warn("parent process exited, shutting down", "parent_pid", ppid, "now", now)
					cancel()
					return
				}
			}
		}
	}()
}
