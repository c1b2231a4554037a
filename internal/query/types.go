// Package query holds the block model of a boolean bibliography filter:
// named term groups joined left to right by AND/OR, with per-block regex and
// NOT flags, plus the case and field switches that apply to a whole run.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Operator joins two adjacent blocks.
type Operator string

const (
	And Operator = "AND"
	Or  Operator = "OR"
)

// Valid reports whether op is AND or OR.
func (op Operator) Valid() bool { return op == And || op == Or }

// ParseOperator accepts "and"/"or" in any case.
func ParseOperator(s string) (Operator, error) {
	switch Operator(strings.ToUpper(strings.TrimSpace(s))) {
	case And:
		return And, nil
	case Or:
		return Or, nil
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Field is one of the three searchable record fields.
type Field string

const (
	Title    Field = "title"
	Abstract Field = "abstract"
	Keywords Field = "keywords"
)

// AllFields lists the searchable fields in display order.
var AllFields = []Field{Title, Abstract, Keywords}

// ParseField accepts a field name or one of its aliases.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title":
		return Title, nil
	case "abstract", "abs", "summary":
		return Abstract, nil
	case "keywords", "keyword", "kw":
		return Keywords, nil
	}
	return "", fmt.Errorf("unknown field %q (want title, abstract or keywords)", s)
}

// Fields selects which record fields are searched.
type Fields struct {
	Title    bool `json:"title" yaml:"title"`
	Abstract bool `json:"abstract" yaml:"abstract"`
	Keywords bool `json:"keywords" yaml:"keywords"`
}

// AllSelected selects every field.
func AllSelected() Fields { return Fields{Title: true, Abstract: true, Keywords: true} }

// Has reports whether f is selected.
func (s Fields) Has(f Field) bool {
	switch f {
	case Title:
		return s.Title
	case Abstract:
		return s.Abstract
	case Keywords:
		return s.Keywords
	}
	return false
}

// Selected returns the selected fields in display order.
func (s Fields) Selected() []Field {
	var out []Field
	for _, f := range AllFields {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// FieldsOf builds a selection from a list of field names.
func FieldsOf(names ...string) (Fields, error) {
	var s Fields
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		f, err := ParseField(n)
		if err != nil {
			return Fields{}, err
		}
		switch f {
		case Title:
			s.Title = true
		case Abstract:
			s.Abstract = true
		case Keywords:
			s.Keywords = true
		}
	}
	return s, nil
}

// Block is a named group of terms sharing regex and NOT flags.
type Block struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Terms   []string `json:"terms" yaml:"terms"`
	IsRegex bool     `json:"isRegex" yaml:"is_regex"`
	Exclude bool     `json:"exclude" yaml:"exclude"`
}

// NewBlock returns a literal, non-excluded block with a fresh ID.
func NewBlock(name string, terms ...string) Block {
	return Block{ID: uuid.NewString(), Name: name, Terms: terms}
}

// ActiveTerms returns the trimmed, non-empty terms in order.
func (b Block) ActiveTerms() []string {
	out := make([]string, 0, len(b.Terms))
	for _, t := range b.Terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Usable reports whether the block takes part in evaluation.
func (b Block) Usable() bool { return len(b.ActiveTerms()) > 0 }

var (
	// ErrInconsistent reports an operator list that does not have exactly
	// one entry between each pair of adjacent blocks, or an unknown operator.
	ErrInconsistent = errors.New("inconsistent query configuration")
	// ErrDuplicateName reports two blocks with the same name.
	ErrDuplicateName = errors.New("duplicate block name")
	// ErrIndex reports a block index outside the configuration.
	ErrIndex = errors.New("block index out of range")
)

// Config is a complete filter: blocks, the operators between them, and the
// run-wide case and field switches.
type Config struct {
	Blocks          []Block    `json:"blocks" yaml:"blocks"`
	Operators       []Operator `json:"operators" yaml:"operators"`
	CaseInsensitive bool       `json:"caseInsensitive" yaml:"case_insensitive"`
	SearchFields    Fields     `json:"searchFields" yaml:"search_fields"`
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := &Config{
		Blocks:          make([]Block, len(c.Blocks)),
		Operators:       append([]Operator(nil), c.Operators...),
		CaseInsensitive: c.CaseInsensitive,
		SearchFields:    c.SearchFields,
	}
	for i, b := range c.Blocks {
		b.Terms = append([]string(nil), b.Terms...)
		out.Blocks[i] = b
	}
	return out
}

// Validate checks the operator-count invariant, operator values and block
// name uniqueness. It never repairs the configuration.
func (c *Config) Validate() error {
	want := len(c.Blocks) - 1
	if want < 0 {
		want = 0
	}
	if len(c.Operators) != want {
		return fmt.Errorf("%w: %d blocks need %d operators, have %d", ErrInconsistent, len(c.Blocks), want, len(c.Operators))
	}
	for i, op := range c.Operators {
		if !op.Valid() {
			return fmt.Errorf("%w: operator %d is %q", ErrInconsistent, i, op)
		}
	}
	seen := make(map[string]int, len(c.Blocks))
	for i, b := range c.Blocks {
		if j, dup := seen[b.Name]; dup {
			return fmt.Errorf("%w: %q (blocks %d and %d)", ErrDuplicateName, b.Name, j, i)
		}
		seen[b.Name] = i
	}
	return nil
}

// Block returns the block with the given name.
func (c *Config) Block(name string) (Block, bool) {
	for _, b := range c.Blocks {
		if b.Name == name {
			return b, true
		}
	}
	return Block{}, false
}
