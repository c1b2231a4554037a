// Package match evaluates a block query against bibliographic records.
//
// Blocks are folded strictly left to right: "A OR B AND C" means
// "(A OR B) AND C". An excluded (NOT) block contributes the negation of
// whether it fired and never shows up in hit maps.
package match

import (
	"fmt"
	"regexp"
	"strings"

	"bibfilter/internal/pattern"
	"bibfilter/internal/query"
)

type compiledTerm struct {
	term string
	re   *regexp.Regexp
}

type compiledBlock struct {
	name    string
	exclude bool
	terms   []compiledTerm
}

// CompiledQuery is the per-run compiled view of a configuration: usable
// blocks only, each term compiled once.
type CompiledQuery struct {
	blocks    []compiledBlock
	operators []query.Operator // operators[i] joins blocks[i] and blocks[i+1]
	fields    query.Fields
}

// Compile builds the compiled view of cfg. Blocks without terms are dropped
// along with the operator on their left (the first kept block has none). An
// inconsistent operator list is reported, not repaired.
func Compile(cfg *query.Config) (*CompiledQuery, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cq := &CompiledQuery{fields: cfg.SearchFields}
	for i, b := range cfg.Blocks {
		terms := b.ActiveTerms()
		if len(terms) == 0 {
			continue
		}
		cb := compiledBlock{name: b.Name, exclude: b.Exclude, terms: make([]compiledTerm, len(terms))}
		for j, t := range terms {
			cb.terms[j] = compiledTerm{term: t, re: pattern.Compile(t, b.IsRegex, cfg.CaseInsensitive)}
		}
		if len(cq.blocks) > 0 {
			cq.operators = append(cq.operators, cfg.Operators[i-1])
		}
		cq.blocks = append(cq.blocks, cb)
	}
	return cq, nil
}

// Len returns the number of usable blocks.
func (cq *CompiledQuery) Len() int { return len(cq.blocks) }

// PositiveBlocks returns the names of usable, non-excluded blocks in order.
func (cq *CompiledQuery) PositiveBlocks() []string {
	var out []string
	for _, b := range cq.blocks {
		if !b.exclude {
			out = append(out, b.name)
		}
	}
	return out
}

// String renders the folded expression, e.g. "((Group 1 OR Group 2) AND NOT Group 3)".
func (cq *CompiledQuery) String() string {
	if len(cq.blocks) == 0 {
		return "TRUE"
	}
	expr := operand(cq.blocks[0])
	for i := 1; i < len(cq.blocks); i++ {
		expr = fmt.Sprintf("(%s %s %s)", expr, cq.operators[i-1], operand(cq.blocks[i]))
	}
	return expr
}

func operand(b compiledBlock) string {
	if b.exclude {
		return "NOT " + b.name
	}
	return b.name
}

// Result is the evaluation of one record.
type Result struct {
	OK            bool
	MatchedBlocks []string
	Hits          HitMap
}

// Evaluate runs the compiled query over one record's selected texts.
func (cq *CompiledQuery) Evaluate(t Texts) Result {
	res := Result{OK: true, Hits: HitMap{}}
	for i, b := range cq.blocks {
		hits, fired := b.test(t)
		if fired && !b.exclude {
			res.Hits[b.name] = hits
			res.MatchedBlocks = append(res.MatchedBlocks, b.name)
		}

		value := fired
		if b.exclude {
			value = !fired
		}
		if i == 0 {
			res.OK = value
			continue
		}
		switch cq.operators[i-1] {
		case query.Or:
			res.OK = res.OK || value
		default:
			res.OK = res.OK && value
		}
	}
	return res
}

// test matches every term against every non-blank field.
func (b compiledBlock) test(t Texts) (FieldHits, bool) {
	var hits FieldHits
	fired := false
	for _, f := range query.AllFields {
		text := t.Get(f)
		if isBlank(text) {
			continue
		}
		var matched []string
		for _, ct := range b.terms {
			if ct.re.MatchString(text) {
				matched = append(matched, ct.term)
			}
		}
		if len(matched) > 0 {
			hits.set(f, matched)
			fired = true
		}
	}
	return hits, fired
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
