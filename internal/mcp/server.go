package mcp

import (
	"context"
	"fmt"
	"os"
	"time"

	"bibfilter/internal/bibtex"
	"bibfilter/internal/display"
	"bibfilter/internal/export"
	"bibfilter/internal/highlight"
	"bibfilter/internal/logging"
	"bibfilter/internal/match"
	"bibfilter/internal/query"
	"bibfilter/internal/store"
	"bibfilter/internal/wiring"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultSessionTTL is how long a loaded bibliography stays available
// without being used.
var DefaultSessionTTL = 30 * time.Minute

// Server wraps the MCP SDK server and the loaded bibliographies.
type Server struct {
	MCPServer *sdkmcp.Server
	Store     store.Store // optional; saved configs and history need it
	Sessions  *Sessions
}

// NewServer creates an MCP server with the filter tools. st may be nil.
func NewServer(st store.Store) *Server {
	s := &Server{Store: st, Sessions: NewSessions(DefaultSessionTTL)}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "bibfilter", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "load_bibliography",
		Description: "Parse BibTeX text or a file once and return a bibliography_id for later calls.",
	}, s.handleLoadBibliography)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "filter_bibliography",
		Description: "Classify entries as matched, partial or unmatched against a block query. Returns the summary, entries with hit details, and term statistics.",
	}, s.handleFilterBibliography)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "parse_query",
		Description: "Turn a boolean query string such as (a OR b) AND NOT c into the block model.",
	}, s.handleParseQuery)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "highlight_entry",
		Description: "Return the non-overlapping matched spans of one entry's title, abstract and keywords, plus bracket-marked text.",
	}, s.handleHighlightEntry)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_configs",
		Description: "List saved query configurations.",
	}, s.handleListConfigs)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "save_config",
		Description: "Save a query configuration (YAML or JSON document, or a query string) under a name.",
	}, s.handleSaveConfig)
}

// --- Tool input/output types ---

// querySpec selects the configuration of a call.
type querySpec struct {
	Query         string
	Config        string
	Saved         string
	Fields        []string
	CaseSensitive bool
}

// bibSpec selects the bibliography of a call.
type bibSpec struct {
	BibliographyID string
	BibTeX         string
	Path           string
}

type loadBibliographyInput struct {
	BibTeX string `json:"bibtex,omitempty" jsonschema:"BibTeX text"`
	Path   string `json:"path,omitempty" jsonschema:"path to a .bib or .bib.gz file readable by the server"`
}

type loadBibliographyOutput struct {
	BibliographyID string   `json:"bibliography_id"`
	Entries        int      `json:"entries"`
	Keys           []string `json:"keys"`
}

type filterInput struct {
	BibliographyID string   `json:"bibliography_id,omitempty" jsonschema:"ID returned by load_bibliography"`
	BibTeX         string   `json:"bibtex,omitempty" jsonschema:"BibTeX text"`
	Path           string   `json:"path,omitempty" jsonschema:"path to a .bib or .bib.gz file readable by the server"`
	Query          string   `json:"query,omitempty" jsonschema:"boolean query string; groups joined by AND, terms by OR, NOT excludes a group"`
	Config         string   `json:"config,omitempty" jsonschema:"full query configuration as a YAML or JSON document"`
	Saved          string   `json:"saved,omitempty" jsonschema:"name of a saved configuration"`
	Fields         []string `json:"fields,omitempty" jsonschema:"fields to search (title, abstract, keywords)"`
	CaseSensitive  bool     `json:"case_sensitive,omitempty" jsonschema:"force case-sensitive matching"`

	IncludePartial   bool `json:"include_partial,omitempty" jsonschema:"list partial entries"`
	IncludeUnmatched bool `json:"include_unmatched,omitempty" jsonschema:"list unmatched entries"`
	IncludeSpans     bool `json:"include_spans,omitempty" jsonschema:"attach highlight spans to listed entries"`
	Record           bool `json:"record,omitempty" jsonschema:"append the run to the history"`
}

type filterOutput struct {
	Result export.ResultView `json:"result"`
	BibTeX string            `json:"bibtex,omitempty"`
	RunID  int64             `json:"run_id,omitempty"`
}

type parseQueryInput struct {
	Expression string `json:"expression" jsonschema:"boolean query string"`
	Stem       bool   `json:"stem,omitempty" jsonschema:"rewrite single-word terms to stemmed prefix wildcards"`
}

type parseQueryOutput struct {
	Blocks    []query.Block    `json:"blocks"`
	Operators []query.Operator `json:"operators"`
	YAML      string           `json:"yaml"`
	Stemmed   int              `json:"stemmed,omitempty"`
}

type highlightInput struct {
	Key            string   `json:"key" jsonschema:"citation key of the entry"`
	BibliographyID string   `json:"bibliography_id,omitempty" jsonschema:"ID returned by load_bibliography"`
	BibTeX         string   `json:"bibtex,omitempty" jsonschema:"BibTeX text"`
	Path           string   `json:"path,omitempty" jsonschema:"path to a .bib or .bib.gz file readable by the server"`
	Query          string   `json:"query,omitempty" jsonschema:"boolean query string"`
	Config         string   `json:"config,omitempty" jsonschema:"full query configuration as a YAML or JSON document"`
	Saved          string   `json:"saved,omitempty" jsonschema:"name of a saved configuration"`
	Fields         []string `json:"fields,omitempty" jsonschema:"fields to search (title, abstract, keywords)"`
	CaseSensitive  bool     `json:"case_sensitive,omitempty" jsonschema:"force case-sensitive matching"`
}

type highlightOutput struct {
	Key     string                 `json:"key"`
	Outcome string                 `json:"outcome"`
	Detail  string                 `json:"detail,omitempty"`
	Spans   highlight.FieldSpans   `json:"spans"`
	Marked  map[query.Field]string `json:"marked"`
	Hits    match.HitMap           `json:"hits,omitempty"`
}

type listConfigsInput struct{}

type configInfo struct {
	Name       string `json:"name"`
	Blocks     int    `json:"blocks"`
	Expression string `json:"expression"`
	Fields     string `json:"fields"`
	UpdatedAt  string `json:"updated_at"`
}

type listConfigsOutput struct {
	Configs []configInfo `json:"configs"`
}

type saveConfigInput struct {
	Name   string `json:"name" jsonschema:"configuration name"`
	Config string `json:"config,omitempty" jsonschema:"YAML or JSON configuration document"`
	Query  string `json:"query,omitempty" jsonschema:"boolean query string, used when config is empty"`
}

type saveConfigOutput struct {
	OK string `json:"ok"`
}

// --- Tool handlers ---

func (s *Server) handleLoadBibliography(_ context.Context, _ *sdkmcp.CallToolRequest, input loadBibliographyInput) (*sdkmcp.CallToolResult, loadBibliographyOutput, error) {
	recs, source, err := s.records(bibSpec{BibTeX: input.BibTeX, Path: input.Path})
	if err != nil {
		return nil, loadBibliographyOutput{}, err
	}
	sess := s.Sessions.Add(source, recs)
	keys := make([]string, len(recs))
	for i, r := range recs {
		keys[i] = r.Key
	}
	return nil, loadBibliographyOutput{BibliographyID: sess.ID, Entries: len(recs), Keys: keys}, nil
}

func (s *Server) handleFilterBibliography(_ context.Context, _ *sdkmcp.CallToolRequest, input filterInput) (*sdkmcp.CallToolResult, filterOutput, error) {
	recs, source, err := s.records(bibSpec{BibliographyID: input.BibliographyID, BibTeX: input.BibTeX, Path: input.Path})
	if err != nil {
		return nil, filterOutput{}, err
	}
	cfg, name, err := s.config(querySpec{
		Query: input.Query, Config: input.Config, Saved: input.Saved,
		Fields: input.Fields, CaseSensitive: input.CaseSensitive,
	})
	if err != nil {
		return nil, filterOutput{}, err
	}
	res, err := match.Run(recs, cfg)
	if err != nil {
		return nil, filterOutput{}, err
	}

	out := filterOutput{
		Result: export.NewResultView(res, export.ViewOptions{
			Partial:   input.IncludePartial,
			Unmatched: input.IncludeUnmatched,
			Spans:     input.IncludeSpans,
		}),
		BibTeX: export.BibTeX(res),
	}
	if input.Record {
		if s.Store == nil {
			return nil, filterOutput{}, fmt.Errorf("record: %w", wiring.ErrNoStore)
		}
		if out.RunID, err = s.Store.RecordRun(store.NewRun(source, name, res)); err != nil {
			return nil, filterOutput{}, err
		}
	}
	logging.New("mcp").Info("filter_bibliography",
		"source", source, "matched", res.Summary.Matched, "partial", res.Summary.Partial)
	return nil, out, nil
}

func (s *Server) handleParseQuery(_ context.Context, _ *sdkmcp.CallToolRequest, input parseQueryInput) (*sdkmcp.CallToolResult, parseQueryOutput, error) {
	p, ok := query.ParseExpression(input.Expression)
	if !ok {
		return nil, parseQueryOutput{}, fmt.Errorf("%w: %q", wiring.ErrBadExpression, input.Expression)
	}
	def := query.DefaultConfig()
	cfg := p.Config(def.CaseInsensitive, def.SearchFields)
	out := parseQueryOutput{}
	if input.Stem {
		out.Stemmed = query.StemTerms(cfg)
	}
	data, err := query.Marshal(cfg, "yaml")
	if err != nil {
		return nil, parseQueryOutput{}, err
	}
	out.Blocks = cfg.Blocks
	out.Operators = cfg.Operators
	if out.Operators == nil {
		out.Operators = []query.Operator{}
	}
	out.YAML = string(data)
	return nil, out, nil
}

func (s *Server) handleHighlightEntry(_ context.Context, _ *sdkmcp.CallToolRequest, input highlightInput) (*sdkmcp.CallToolResult, highlightOutput, error) {
	if input.Key == "" {
		return nil, highlightOutput{}, fmt.Errorf("key is required")
	}
	recs, _, err := s.records(bibSpec{BibliographyID: input.BibliographyID, BibTeX: input.BibTeX, Path: input.Path})
	if err != nil {
		return nil, highlightOutput{}, err
	}
	cfg, _, err := s.config(querySpec{
		Query: input.Query, Config: input.Config, Saved: input.Saved,
		Fields: input.Fields, CaseSensitive: input.CaseSensitive,
	})
	if err != nil {
		return nil, highlightOutput{}, err
	}
	var rec *bibtex.Record
	for i := range recs {
		if recs[i].Key == input.Key {
			rec = &recs[i]
			break
		}
	}
	if rec == nil {
		return nil, highlightOutput{}, fmt.Errorf("no entry with key %q", input.Key)
	}

	res, err := match.Run([]bibtex.Record{*rec}, cfg)
	if err != nil {
		return nil, highlightOutput{}, err
	}
	e, ok := res.Find(input.Key)
	if !ok {
		// Not eligible: no searchable text in the selected fields.
		return nil, highlightOutput{Key: input.Key, Outcome: "ineligible", Spans: highlight.FieldSpans{}, Marked: map[query.Field]string{}}, nil
	}

	spans := highlight.ForEntry(e, cfg)
	texts := match.TextsFor(e.Record, cfg.SearchFields)
	marked := make(map[query.Field]string)
	for _, f := range cfg.SearchFields.Selected() {
		if t := texts.Get(f); t != "" {
			marked[f] = highlight.Render(t, spans[f], highlight.Brackets{})
		}
	}
	return nil, highlightOutput{
		Key:     e.Record.Key,
		Outcome: e.Outcome.String(),
		Detail:  export.Detail(e),
		Spans:   spans,
		Marked:  marked,
		Hits:    e.Hits,
	}, nil
}

func (s *Server) handleListConfigs(_ context.Context, _ *sdkmcp.CallToolRequest, _ listConfigsInput) (*sdkmcp.CallToolResult, listConfigsOutput, error) {
	if s.Store == nil {
		return nil, listConfigsOutput{}, wiring.ErrNoStore
	}
	saved, err := s.Store.ListConfigs()
	if err != nil {
		return nil, listConfigsOutput{}, err
	}
	out := listConfigsOutput{Configs: []configInfo{}}
	for _, sc := range saved {
		expr := ""
		if cq, err := match.Compile(sc.Config); err == nil {
			expr = cq.String()
		}
		out.Configs = append(out.Configs, configInfo{
			Name:       sc.Name,
			Blocks:     len(sc.Config.Blocks),
			Expression: expr,
			Fields:     display.FieldList(sc.Config.SearchFields),
			UpdatedAt:  sc.UpdatedAt,
		})
	}
	return nil, out, nil
}

func (s *Server) handleSaveConfig(_ context.Context, _ *sdkmcp.CallToolRequest, input saveConfigInput) (*sdkmcp.CallToolResult, saveConfigOutput, error) {
	if s.Store == nil {
		return nil, saveConfigOutput{}, wiring.ErrNoStore
	}
	if input.Name == "" {
		return nil, saveConfigOutput{}, fmt.Errorf("name is required")
	}
	cfg, _, err := wiring.ResolveConfig(wiring.ConfigSource{
		Inline:     []byte(input.Config),
		Expression: input.Query,
	}, wiring.Overrides{}, nil)
	if err != nil {
		return nil, saveConfigOutput{}, err
	}
	if err := s.Store.SaveConfig(input.Name, cfg); err != nil {
		return nil, saveConfigOutput{}, err
	}
	return nil, saveConfigOutput{OK: fmt.Sprintf("saved %q (%d blocks)", input.Name, len(cfg.Blocks))}, nil
}

// --- helpers ---

// records resolves the bibliography of a call: a loaded session, inline
// text or a file, in that order.
func (s *Server) records(b bibSpec) ([]bibtex.Record, string, error) {
	switch {
	case b.BibliographyID != "":
		sess, err := s.Sessions.Get(b.BibliographyID)
		if err != nil {
			return nil, "", err
		}
		return sess.Records, sess.Source, nil
	case b.BibTeX != "":
		recs, err := bibtex.Parse(b.BibTeX)
		if err != nil {
			return nil, "", err
		}
		if len(recs) == 0 {
			return nil, "", fmt.Errorf("bibtex is empty: %w", bibtex.ErrNoEntries)
		}
		return recs, "inline", nil
	case b.Path != "":
		if _, err := os.Stat(b.Path); err != nil {
			return nil, "", fmt.Errorf("bibliography path: %w", err)
		}
		recs, err := bibtex.ParseFile(b.Path)
		if err != nil {
			return nil, "", err
		}
		if len(recs) == 0 {
			return nil, "", fmt.Errorf("%s is empty: %w", b.Path, bibtex.ErrNoEntries)
		}
		return recs, b.Path, nil
	}
	return nil, "", fmt.Errorf("one of bibliography_id, bibtex or path is required")
}

func (s *Server) config(q querySpec) (*query.Config, string, error) {
	return wiring.ResolveConfig(wiring.ConfigSource{
		Inline:     []byte(q.Config),
		Saved:      q.Saved,
		Expression: q.Query,
	}, wiring.Overrides{Fields: q.Fields, CaseSensitive: q.CaseSensitive}, s.Store)
}
