// Package compare reports how two query configurations differ on the same
// bibliography. The matched sets are rendered one entry per line and
// diffed with github.com/pmezard/go-difflib/difflib, so the output reads as
// a classic unified patch (---/+++ headers, @@ hunks, '-'/'+' lines).
package compare

import (
	"fmt"

	difflib "github.com/pmezard/go-difflib/difflib"

	"bibfilter/internal/bibtex"
	"bibfilter/internal/match"
	"bibfilter/internal/query"
)

// Options controls patch generation.
type Options struct {
	// Context is the number of unchanged lines around each hunk.
	// If 0, default to 3.
	Context int
}

// Side names one configuration under comparison.
type Side struct {
	Name   string
	Config *query.Config
}

// Diff is the comparison of two runs over the same records.
type Diff struct {
	Left, Right         *match.RunResult
	OnlyLeft, OnlyRight []string
	Both                []string
	Patch               string
}

// Same reports whether both sides matched exactly the same records.
func (d *Diff) Same() bool { return len(d.OnlyLeft) == 0 && len(d.OnlyRight) == 0 }

// Configs runs both configurations over records and diffs their matched sets.
func Configs(records []bibtex.Record, left, right Side, opt Options) (*Diff, error) {
	l, err := match.Run(records, left.Config)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", left.Name, err)
	}
	r, err := match.Run(records, right.Config)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", right.Name, err)
	}
	return Runs(left.Name, l, right.Name, r, opt), nil
}

// Runs diffs the matched sets of two finished runs.
func Runs(leftName string, left *match.RunResult, rightName string, right *match.RunResult, opt Options) *Diff {
	d := &Diff{Left: left, Right: right}

	inRight := make(map[string]bool, len(right.Matched))
	for _, k := range right.MatchedKeys() {
		inRight[k] = true
	}
	inLeft := make(map[string]bool, len(left.Matched))
	for _, k := range left.MatchedKeys() {
		inLeft[k] = true
		if inRight[k] {
			d.Both = append(d.Both, k)
		} else {
			d.OnlyLeft = append(d.OnlyLeft, k)
		}
	}
	for _, k := range right.MatchedKeys() {
		if !inLeft[k] {
			d.OnlyRight = append(d.OnlyRight, k)
		}
	}

	if d.Same() {
		return d
	}
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}
	u := difflib.UnifiedDiff{
		A:        lines(left.Matched),
		B:        lines(right.Matched),
		FromFile: leftName,
		ToFile:   rightName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err == nil {
		d.Patch = s
	}
	return d
}

// lines renders one "key<TAB>title" line per entry, newline terminated.
func lines(entries []match.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Record.Key + "\t" + e.Record.CleanTitle() + "\n"
	}
	return out
}
