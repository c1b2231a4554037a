package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"bibfilter/internal/format"
	"bibfilter/internal/store"
)

// resolveDBPath returns the store path from --db, falling back to
// $BIBFILTER_DB and then store.DefaultDBPath.
func resolveDBPath() string {
	if rootFlags.dbPath != "" {
		return rootFlags.dbPath
	}
	if p := os.Getenv("BIBFILTER_DB"); p != "" {
		return p
	}
	return store.DefaultDBPath
}

func openStore() (*store.SqlStore, error) {
	st, err := store.Open(resolveDBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// tableMode returns Markdown when a command's --markdown flag is set and
// the root --table-format otherwise.
func tableMode(markdown bool) format.Mode {
	if markdown {
		return format.Markdown
	}
	m, err := format.ParseMode(rootFlags.tables)
	if err != nil {
		return format.ASCII
	}
	return m
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
