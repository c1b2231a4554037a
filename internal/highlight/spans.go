// Package highlight locates the text spans that caused a block to fire so
// they can be marked up for display.
package highlight

import (
	"sort"

	"bibfilter/internal/match"
	"bibfilter/internal/pattern"
	"bibfilter/internal/query"
)

// Span is a half-open byte range [Start, End) of one field's text that a
// block's terms matched.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Block string `json:"block"`
	Text  string `json:"text"`
}

// Spans returns the non-overlapping spans of text to mark for field f.
//
// Blocks are visited in configuration order. For each block with hits in f,
// one alternation of its hit terms (longest first) is scanned over text from
// the start. Candidates are ordered by start, longer first on ties and
// earlier blocks first otherwise, and kept greedily when they do not overlap
// an already kept span. Zero-width matches are skipped.
func Spans(text string, f query.Field, hits match.HitMap, cfg *query.Config) []Span {
	if text == "" || len(hits) == 0 {
		return nil
	}
	var cands []Span
	for _, b := range cfg.Blocks {
		if b.Exclude {
			continue
		}
		fh, ok := hits[b.Name]
		if !ok {
			continue
		}
		re := pattern.Alternation(fh.Get(f), b.IsRegex, cfg.CaseInsensitive)
		if re == nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if loc[1] <= loc[0] {
				continue
			}
			cands = append(cands, Span{Start: loc[0], End: loc[1], Block: b.Name, Text: text[loc[0]:loc[1]]})
		}
	}
	return pick(cands)
}

// pick keeps a maximal left-to-right set of non-overlapping candidates.
func pick(cands []Span) []Span {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Start != cands[j].Start {
			return cands[i].Start < cands[j].Start
		}
		return cands[i].End-cands[i].Start > cands[j].End-cands[j].Start
	})
	var out []Span
	end := -1
	for _, c := range cands {
		if c.Start < end {
			continue
		}
		out = append(out, c)
		end = c.End
	}
	return out
}

// FieldSpans holds the spans of every selected field of one entry.
type FieldSpans map[query.Field][]Span

// ForEntry computes spans for each selected field of a classified entry.
func ForEntry(e match.Entry, cfg *query.Config) FieldSpans {
	texts := match.TextsFor(e.Record, cfg.SearchFields)
	out := FieldSpans{}
	for _, f := range cfg.SearchFields.Selected() {
		if s := Spans(texts.Get(f), f, e.Hits, cfg); len(s) > 0 {
			out[f] = s
		}
	}
	return out
}
