package match

import (
	"bibfilter/internal/bibtex"
	"bibfilter/internal/query"
)

// FieldHits lists the terms of one block that hit, per field.
type FieldHits struct {
	Title    []string `json:"title,omitempty" yaml:"title,omitempty"`
	Abstract []string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Get returns the hit terms for field f.
func (h FieldHits) Get(f query.Field) []string {
	switch f {
	case query.Title:
		return h.Title
	case query.Abstract:
		return h.Abstract
	case query.Keywords:
		return h.Keywords
	}
	return nil
}

func (h *FieldHits) set(f query.Field, terms []string) {
	switch f {
	case query.Title:
		h.Title = terms
	case query.Abstract:
		h.Abstract = terms
	case query.Keywords:
		h.Keywords = terms
	}
}

// Empty reports whether no field has a hit.
func (h FieldHits) Empty() bool {
	return len(h.Title) == 0 && len(h.Abstract) == 0 && len(h.Keywords) == 0
}

// HitMap maps a non-excluded block name to the terms that hit in each field.
type HitMap map[string]FieldHits

// Texts holds the searchable text of one record after field selection.
// Deselected fields are empty regardless of the record's content.
type Texts struct {
	Title    string
	Abstract string
	Keywords string
}

// TextsFor selects the searchable fields of r.
func TextsFor(r bibtex.Record, sel query.Fields) Texts {
	var t Texts
	if sel.Title {
		t.Title = r.Title()
	}
	if sel.Abstract {
		t.Abstract = r.Abstract()
	}
	if sel.Keywords {
		t.Keywords = r.Keywords()
	}
	return t
}

// Get returns the text for field f.
func (t Texts) Get(f query.Field) string {
	switch f {
	case query.Title:
		return t.Title
	case query.Abstract:
		return t.Abstract
	case query.Keywords:
		return t.Keywords
	}
	return ""
}

// Eligible reports whether at least one selected field has text.
func (t Texts) Eligible() bool {
	for _, f := range query.AllFields {
		if !isBlank(t.Get(f)) {
			return true
		}
	}
	return false
}
