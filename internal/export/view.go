package export

import (
	"bibfilter/internal/highlight"
	"bibfilter/internal/match"
	"bibfilter/internal/stats"
)

// EntryView is the JSON shape of one classified entry.
type EntryView struct {
	Key     string       `json:"key"`
	Type    string       `json:"type"`
	Title   string       `json:"title"`
	Authors string       `json:"authors,omitempty"`
	Year    string       `json:"year,omitempty"`
	Venue   string       `json:"venue,omitempty"`
	URL     string       `json:"url,omitempty"`
	Outcome string       `json:"outcome"`
	Blocks  []string     `json:"blocks,omitempty"`
	Detail  string       `json:"detail,omitempty"`
	Hits    match.HitMap `json:"hits,omitempty"`
	Present []string     `json:"present,omitempty"`
	Missing []string     `json:"missing,omitempty"`

	Spans highlight.FieldSpans `json:"spans,omitempty"`
}

// NewEntryView builds the view of e.
func NewEntryView(e match.Entry) EntryView {
	r := e.Record
	return EntryView{
		Key:     r.Key,
		Type:    r.Type,
		Title:   r.CleanTitle(),
		Authors: r.Authors(),
		Year:    r.Year(),
		Venue:   r.Venue(),
		URL:     r.Link(),
		Outcome: e.Outcome.String(),
		Blocks:  e.MatchedBlocks,
		Detail:  Detail(e),
		Hits:    e.Hits,
		Present: e.Present,
		Missing: e.Missing,
	}
}

// ResultView is the JSON shape of a run.
type ResultView struct {
	Expression string        `json:"expression"`
	Summary    match.Summary `json:"summary"`
	Matched    []EntryView   `json:"matched"`
	Partial    []EntryView   `json:"partial,omitempty"`
	Unmatched  []EntryView   `json:"unmatched,omitempty"`
	Stats      stats.Stats   `json:"stats"`
}

// ViewOptions selects what NewResultView includes.
type ViewOptions struct {
	Partial   bool
	Unmatched bool
	Spans     bool
}

// NewResultView builds the view of res. Matched entries are always listed;
// term statistics are computed over them.
func NewResultView(res *match.RunResult, opts ViewOptions) ResultView {
	v := ResultView{
		Expression: res.Expression,
		Summary:    res.Summary,
		Matched:    views(res.Matched, res, opts.Spans),
		Stats:      stats.Aggregate(res.Matched, res.Config),
	}
	if opts.Partial {
		v.Partial = views(res.Partial, res, opts.Spans)
	}
	if opts.Unmatched {
		v.Unmatched = views(res.Unmatched, res, false)
	}
	return v
}

func views(entries []match.Entry, res *match.RunResult, spans bool) []EntryView {
	out := make([]EntryView, len(entries))
	for i, e := range entries {
		out[i] = NewEntryView(e)
		if spans {
			out[i].Spans = highlight.ForEntry(e, res.Config)
		}
	}
	return out
}
