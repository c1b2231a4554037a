package bibtex

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoEntries is returned when non-empty input yields zero entries. It is
// distinct from a successful run that matches nothing.
var ErrNoEntries = errors.New("no entries found")

// headerRe matches "@type{key," at the start of a candidate chunk.
var headerRe = regexp.MustCompile(`^@([A-Za-z]\w*)\s*\{\s*([^,\s{}]+)\s*,`)

// Parse scans text for @type{key, ...} chunks and returns them in order.
// Anything between chunks is ignored, as are '@' marks that do not start a
// valid header. Empty or whitespace-only input returns no records and no
// error; any other input that yields zero records returns ErrNoEntries.
func Parse(text string) ([]Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var records []Record
	pos := 0
	for pos < len(text) {
		at := strings.IndexByte(text[pos:], '@')
		if at < 0 {
			break
		}
		start := pos + at
		m := headerRe.FindStringSubmatchIndex(text[start:])
		if m == nil {
			pos = start + 1
			continue
		}
		bodyStart := start + m[1]
		open := start + strings.IndexByte(text[start:bodyStart], '{')
		end, closed := chunkEnd(text, open)

		rec := NewRecord(text[start+m[2]:start+m[3]], text[start+m[4]:start+m[5]])
		for _, f := range scanFields(text[bodyStart:end]) {
			rec.set(f.name, stripValue(f.value))
		}
		records = append(records, rec)

		if closed {
			pos = end + 1
		} else {
			pos = end
		}
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w in %d bytes of input", ErrNoEntries, len(text))
	}
	return records, nil
}

// chunkEnd scans forward from the header's opening brace and returns the
// index of the brace that closes the chunk. Depth starts at 1; a '"' at
// depth 1 toggles the in-quote state, and the chunk only ends outside a
// quote. A valid header always starts a new entry, so an unterminated chunk
// ends there (closed is false), or at the end of the input.
func chunkEnd(text string, open int) (end int, closed bool) {
	depth := 1
	inQuote := false
	for i := open + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '@':
			if headerRe.MatchString(text[i:]) {
				return i, false
			}
		case '"':
			if depth == 1 {
				inQuote = !inQuote
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth <= 0 && !inQuote {
				return i, true
			}
			if depth < 1 {
				depth = 1
			}
		}
	}
	return len(text), false
}

// stripValue removes exactly one layer of enclosing quotes or braces.
func stripValue(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '{' && v[len(v)-1] == '}') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
