// Package bibtex extracts bibliographic records from free-form text and
// serializes them back. Only the subset of BibTeX syntax the filter consumes
// is supported: @type{key, field = {value} | "value" | bare, ...}.
package bibtex

import "strings"

// Record is one parsed bibliographic entry. Field names are lower-cased;
// values keep their inner structure verbatim (nested braces, escapes).
type Record struct {
	Type string
	Key  string

	fields map[string]string
	order  []string
}

// NewRecord builds a record from alternating name/value pairs. A trailing
// name without a value is ignored. Later duplicates of a name are dropped.
func NewRecord(entryType, key string, pairs ...string) Record {
	r := Record{Type: strings.ToLower(entryType), Key: key, fields: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.set(pairs[i], pairs[i+1])
	}
	return r
}

func (r *Record) set(name, value string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	if r.fields == nil {
		r.fields = make(map[string]string)
	}
	if _, dup := r.fields[name]; dup {
		return
	}
	r.fields[name] = value
	r.order = append(r.order, name)
}

// Get returns the raw value of a field, or "" when absent.
func (r Record) Get(name string) string {
	return r.fields[strings.ToLower(name)]
}

// Has reports whether the field is present (even if empty).
func (r Record) Has(name string) bool {
	_, ok := r.fields[strings.ToLower(name)]
	return ok
}

// FieldNames returns field names in source order.
func (r Record) FieldNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.order) }

// first returns the first non-blank value among the given field names.
func (r Record) first(names ...string) string {
	for _, n := range names {
		if v := r.fields[n]; strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Title is the raw title text searched by the filter.
func (r Record) Title() string { return r.first("title") }

// Abstract is the raw abstract text (abstract, abs or summary).
func (r Record) Abstract() string { return r.first("abstract", "abs", "summary") }

// Keywords is the raw keyword list (keywords or keyword).
func (r Record) Keywords() string { return r.first("keywords", "keyword") }
