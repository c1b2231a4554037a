package bibtex

import "strings"

// Marshal renders records as BibTeX, one "name = {value}" line per field in
// source order. Values are emitted verbatim inside braces.
func Marshal(records []Record) string {
	var b strings.Builder
	for i, r := range records {
		if i > 0 {
			b.WriteString("\n")
		}
		writeRecord(&b, r)
	}
	return b.String()
}

func writeRecord(b *strings.Builder, r Record) {
	typ := r.Type
	if typ == "" {
		typ = "misc"
	}
	b.WriteString("@" + typ + "{" + r.Key)
	for _, name := range r.order {
		b.WriteString(",\n  " + name + " = {" + r.fields[name] + "}")
	}
	b.WriteString("\n}\n")
}
