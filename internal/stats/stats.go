// Package stats aggregates term frequencies over a set of matched entries.
package stats

import (
	"sort"

	"bibfilter/internal/match"
	"bibfilter/internal/query"
)

// TermCount is the document frequency of one term plus its per-field
// occurrence tally. Field counts can exceed Docs when a term hits several
// fields of the same record.
type TermCount struct {
	Term     string `json:"term"`
	Docs     int    `json:"docs"`
	Title    int    `json:"title"`
	Abstract int    `json:"abstract"`
	Keywords int    `json:"keywords"`
}

func (c *TermCount) add(f query.Field) {
	switch f {
	case query.Title:
		c.Title++
	case query.Abstract:
		c.Abstract++
	case query.Keywords:
		c.Keywords++
	}
}

// BlockStats lists every configured term of one block in configuration
// order, including terms that never hit.
type BlockStats struct {
	Block string      `json:"block"`
	Terms []TermCount `json:"terms"`
}

// FieldCounts totals term hits per field.
type FieldCounts struct {
	Title    int `json:"title"`
	Abstract int `json:"abstract"`
	Keywords int `json:"keywords"`
}

// Stats is the aggregate over one set of entries.
type Stats struct {
	Records int          `json:"records"`
	Terms   []TermCount  `json:"terms"`
	Fields  FieldCounts  `json:"fields"`
	Blocks  []BlockStats `json:"blocks"`
}

// Aggregate counts term hits across entries. Terms holds every term that
// hit at least once, most frequent first; Blocks holds one breakdown per
// non-excluded block of cfg.
func Aggregate(entries []match.Entry, cfg *query.Config) Stats {
	st := Stats{Records: len(entries)}

	type blockTally struct {
		order  []string
		counts map[string]*TermCount
	}
	blocks := make(map[string]*blockTally)
	var blockOrder []string
	for _, b := range cfg.Blocks {
		if b.Exclude {
			continue
		}
		bt := &blockTally{counts: make(map[string]*TermCount)}
		for _, t := range b.ActiveTerms() {
			if _, dup := bt.counts[t]; dup {
				continue
			}
			bt.order = append(bt.order, t)
			bt.counts[t] = &TermCount{Term: t}
		}
		blocks[b.Name] = bt
		blockOrder = append(blockOrder, b.Name)
	}

	overall := make(map[string]*TermCount)
	for _, e := range entries {
		seen := make(map[string]bool)
		for name, fh := range e.Hits {
			bt := blocks[name]
			blockSeen := make(map[string]bool)
			for _, f := range query.AllFields {
				for _, term := range fh.Get(f) {
					oc, ok := overall[term]
					if !ok {
						oc = &TermCount{Term: term}
						overall[term] = oc
					}
					oc.add(f)
					if !seen[term] {
						seen[term] = true
						oc.Docs++
					}
					switch f {
					case query.Title:
						st.Fields.Title++
					case query.Abstract:
						st.Fields.Abstract++
					case query.Keywords:
						st.Fields.Keywords++
					}

					if bt == nil {
						continue
					}
					bc, ok := bt.counts[term]
					if !ok {
						bc = &TermCount{Term: term}
						bt.counts[term] = bc
						bt.order = append(bt.order, term)
					}
					bc.add(f)
					if !blockSeen[term] {
						blockSeen[term] = true
						bc.Docs++
					}
				}
			}
		}
	}

	for _, c := range overall {
		st.Terms = append(st.Terms, *c)
	}
	sort.Slice(st.Terms, func(i, j int) bool {
		if st.Terms[i].Docs != st.Terms[j].Docs {
			return st.Terms[i].Docs > st.Terms[j].Docs
		}
		return st.Terms[i].Term < st.Terms[j].Term
	})

	for _, name := range blockOrder {
		bt := blocks[name]
		bs := BlockStats{Block: name, Terms: make([]TermCount, 0, len(bt.order))}
		for _, t := range bt.order {
			bs.Terms = append(bs.Terms, *bt.counts[t])
		}
		st.Blocks = append(st.Blocks, bs)
	}
	return st
}
