// Package wiring connects the filter pipeline end to end: resolve a query
// configuration, read and classify a bibliography, write exports and record
// the run.
package wiring

import (
	"errors"
	"fmt"
	"strings"

	"bibfilter/internal/bibtex"
	"bibfilter/internal/export"
	"bibfilter/internal/logging"
	"bibfilter/internal/match"
	"bibfilter/internal/query"
	"bibfilter/internal/store"
)

// ConfigSource names where a query configuration comes from. The first
// non-empty of Inline, Path, Saved and Expression wins; when all are empty
// the default configuration is used.
type ConfigSource struct {
	Inline     []byte // YAML or JSON document
	Path       string // YAML or JSON file
	Saved      string // name in the store
	Expression string // boolean query string
}

// Overrides adjust a resolved configuration for one run.
type Overrides struct {
	Fields        []string // replaces the field selection when non-empty
	CaseSensitive bool     // forces case-sensitive matching
}

// ErrNoStore is returned when a saved configuration is requested without a store.
var ErrNoStore = errors.New("no store configured")

// ErrBadExpression is returned when a query string yields no blocks.
var ErrBadExpression = errors.New("query expression has no terms")

// ResolveConfig loads the configuration named by src and applies ov. The
// returned name is the saved config name, or "" for any other source.
func ResolveConfig(src ConfigSource, ov Overrides, st store.Store) (*query.Config, string, error) {
	cfg, name, err := resolve(src, st)
	if err != nil {
		return nil, "", err
	}
	if len(ov.Fields) > 0 {
		sel, err := query.FieldsOf(ov.Fields...)
		if err != nil {
			return nil, "", err
		}
		cfg.SearchFields = sel
	}
	if ov.CaseSensitive {
		cfg.CaseInsensitive = false
	}
	return cfg, name, nil
}

func resolve(src ConfigSource, st store.Store) (*query.Config, string, error) {
	switch {
	case len(src.Inline) > 0:
		cfg, err := query.Load(src.Inline, "")
		return cfg, "", err
	case src.Path != "":
		cfg, err := query.LoadFromPath(src.Path)
		return cfg, "", err
	case src.Saved != "":
		if st == nil {
			return nil, "", fmt.Errorf("load saved config %q: %w", src.Saved, ErrNoStore)
		}
		cfg, err := st.GetConfig(src.Saved)
		if err != nil {
			return nil, "", err
		}
		if cfg == nil {
			return nil, "", fmt.Errorf("saved config %q: %w", src.Saved, store.ErrNotFound)
		}
		return cfg, src.Saved, nil
	case strings.TrimSpace(src.Expression) != "":
		p, ok := query.ParseExpression(src.Expression)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q", ErrBadExpression, src.Expression)
		}
		def := query.DefaultConfig()
		return p.Config(def.CaseInsensitive, def.SearchFields), "", nil
	}
	return query.DefaultConfig(), "", nil
}

// Request describes one end-to-end run.
type Request struct {
	Input string // bibliography path, "-" for stdin
	Text  string // inline bibliography; used instead of Input when set

	Config    ConfigSource
	Overrides Overrides

	BibOut string // matched records as BibTeX
	CSVOut string // matched records as CSV
	Record bool   // append the run to the store's history
}

// Outcome is what Run produced.
type Outcome struct {
	Result     *match.RunResult
	ConfigName string
	RunID      int64 // 0 unless recorded
}

// Run resolves the configuration, classifies the bibliography, writes the
// requested exports and records the run. st may be nil when neither a saved
// config nor recording is requested.
func Run(req Request, st store.Store) (*Outcome, error) {
	logger := logging.New("wiring")

	cfg, name, err := ResolveConfig(req.Config, req.Overrides, st)
	if err != nil {
		return nil, err
	}

	text := req.Text
	source := "inline"
	if text == "" {
		source = req.Input
		if text, err = bibtex.ReadFile(req.Input); err != nil {
			return nil, err
		}
	}
	res, err := match.RunText(text, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	out := &Outcome{Result: res, ConfigName: name}

	if req.BibOut != "" {
		if err := export.WriteBibTeX(req.BibOut, res); err != nil {
			return out, err
		}
		logger.Info("wrote bibtex", "path", req.BibOut, "records", len(res.Matched))
	}
	if req.CSVOut != "" {
		if err := export.WriteCSVFile(req.CSVOut, res); err != nil {
			return out, err
		}
		logger.Info("wrote csv", "path", req.CSVOut, "records", len(res.Matched))
	}
	if req.Record {
		if st == nil {
			return out, fmt.Errorf("record run: %w", ErrNoStore)
		}
		if out.RunID, err = st.RecordRun(store.NewRun(source, name, res)); err != nil {
			return out, err
		}
	}
	logger.Info("run complete",
		"source", source,
		"matched", res.Summary.Matched,
		"partial", res.Summary.Partial,
		"eligible", res.Summary.Eligible)
	return out, nil
}
