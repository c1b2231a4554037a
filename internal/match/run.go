package match

import (
	"fmt"
	"slices"

	"bibfilter/internal/bibtex"
	"bibfilter/internal/logging"
	"bibfilter/internal/query"
)

// Outcome classifies an eligible record.
type Outcome int

const (
	Unmatched Outcome = iota
	Partial
	Matched
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Partial:
		return "partial"
	default:
		return "unmatched"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Entry is one classified record.
type Entry struct {
	Record        bibtex.Record
	Outcome       Outcome
	MatchedBlocks []string
	Hits          HitMap

	// Present and Missing are set for partial entries: the non-excluded
	// blocks that did and did not fire.
	Present []string
	Missing []string
}

// Summary counts a run. Total includes records with no searchable text;
// Eligible does not.
type Summary struct {
	Total     int `json:"total"`
	Eligible  int `json:"eligible"`
	Matched   int `json:"matched"`
	Partial   int `json:"partial"`
	Unmatched int `json:"unmatched"`
}

// RunResult is the immutable outcome of one run. Each run produces a new
// value; exports take it explicitly.
type RunResult struct {
	Config     *query.Config
	Expression string

	Matched   []Entry
	Partial   []Entry
	Unmatched []Entry
	Summary   Summary
}

// Entries returns the entries with the given outcome.
func (r *RunResult) Entries(o Outcome) []Entry {
	switch o {
	case Matched:
		return r.Matched
	case Partial:
		return r.Partial
	default:
		return r.Unmatched
	}
}

// MatchedKeys returns the citation keys of matched entries in input order.
func (r *RunResult) MatchedKeys() []string {
	keys := make([]string, len(r.Matched))
	for i, e := range r.Matched {
		keys[i] = e.Record.Key
	}
	return keys
}

// MatchedRecords returns the records of matched entries in input order.
func (r *RunResult) MatchedRecords() []bibtex.Record {
	recs := make([]bibtex.Record, len(r.Matched))
	for i, e := range r.Matched {
		recs[i] = e.Record
	}
	return recs
}

// Run classifies records against cfg. A record is Matched when the folded
// expression is true, Partial when it is not but at least one positive block
// fired, and Unmatched otherwise. Records with no text in any selected field
// are counted in Total only.
func Run(records []bibtex.Record, cfg *query.Config) (*RunResult, error) {
	cq, err := Compile(cfg)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	snapshot := cfg.Clone()
	res := &RunResult{Config: snapshot, Expression: cq.String()}
	positive := cq.PositiveBlocks()

	for _, rec := range records {
		res.Summary.Total++
		texts := TextsFor(rec, snapshot.SearchFields)
		if !texts.Eligible() {
			continue
		}
		res.Summary.Eligible++

		ev := cq.Evaluate(texts)
		e := Entry{Record: rec, MatchedBlocks: ev.MatchedBlocks, Hits: ev.Hits}
		switch {
		case ev.OK:
			e.Outcome = Matched
			res.Matched = append(res.Matched, e)
		case len(ev.Hits) > 0:
			e.Outcome = Partial
			for _, name := range positive {
				if _, ok := ev.Hits[name]; ok {
					e.Present = append(e.Present, name)
				} else {
					e.Missing = append(e.Missing, name)
				}
			}
			res.Partial = append(res.Partial, e)
		default:
			e.Outcome = Unmatched
			res.Unmatched = append(res.Unmatched, e)
		}
	}
	res.Summary.Matched = len(res.Matched)
	res.Summary.Partial = len(res.Partial)
	res.Summary.Unmatched = len(res.Unmatched)

	logging.New("match").Debug("run finished",
		"expression", res.Expression,
		"total", res.Summary.Total,
		"eligible", res.Summary.Eligible,
		"matched", res.Summary.Matched,
		"partial", res.Summary.Partial)
	return res, nil
}

// RunText parses text and runs cfg over the records. Input with no entries
// fails with bibtex.ErrNoEntries and produces no result.
func RunText(text string, cfg *query.Config) (*RunResult, error) {
	recs, err := bibtex.Parse(text)
	if err != nil {
		return nil, err
	}
	return Run(recs, cfg)
}

// Find returns the entry for a citation key, searching every bucket.
func (r *RunResult) Find(key string) (Entry, bool) {
	for _, bucket := range [][]Entry{r.Matched, r.Partial, r.Unmatched} {
		if i := slices.IndexFunc(bucket, func(e Entry) bool { return e.Record.Key == key }); i >= 0 {
			return bucket[i], true
		}
	}
	return Entry{}, false
}
