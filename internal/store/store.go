// Package store persists named query configurations and a history of runs.
package store

import (
	"errors"

	"bibfilter/internal/match"
	"bibfilter/internal/query"
)

// DefaultDBPath is the default relative path for the SQLite DB.
// Open() creates the parent dir (.bibfilter) when missing.
const DefaultDBPath = ".bibfilter/bibfilter.db"

// ErrNotFound is returned when deleting or reading a run that does not exist.
var ErrNotFound = errors.New("not found")

// SavedConfig is one named configuration.
type SavedConfig struct {
	Name      string
	Config    *query.Config
	UpdatedAt string
}

// Run is a summary of one filter run.
type Run struct {
	ID          int64
	Source      string // input path, "-" for stdin
	ConfigName  string // saved config name, "" when ad hoc
	Expression  string
	Summary     match.Summary
	MatchedKeys []string
	CreatedAt   string
}

// NewRun summarises res for the history.
func NewRun(source, configName string, res *match.RunResult) *Run {
	return &Run{
		Source:      source,
		ConfigName:  configName,
		Expression:  res.Expression,
		Summary:     res.Summary,
		MatchedKeys: res.MatchedKeys(),
	}
}

// Store is the persistence facade for configurations and run history.
// CLI and MCP code use only this interface; implementation is SQLite or in-memory.
type Store interface {
	// Configurations
	SaveConfig(name string, cfg *query.Config) error
	GetConfig(name string) (*query.Config, error) // nil, nil when absent
	ListConfigs() ([]SavedConfig, error)
	DeleteConfig(name string) error
	// Runs
	RecordRun(r *Run) (int64, error)
	GetRun(id int64) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	Close() error
}
