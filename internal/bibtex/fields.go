package bibtex

import "regexp"

// nameRe matches a field name at the start of the input.
var nameRe = regexp.MustCompile(`^[A-Za-z][\w.:-]*`)

type rawField struct {
	name  string
	value string // with its delimiters
}

// scanFields extracts name = value pairs from a chunk body. Values are
// brace-delimited (nested to any depth), double-quoted (backslash escapes,
// braces allowed) or a bare token. Text that does not form a pair is
// skipped one byte at a time.
func scanFields(body string) []rawField {
	var out []rawField
	for i := 0; i < len(body); {
		f, next, ok := fieldAt(body, i)
		if !ok {
			i++
			continue
		}
		out = append(out, f)
		i = next
	}
	return out
}

func fieldAt(s string, i int) (rawField, int, bool) {
	m := nameRe.FindStringIndex(s[i:])
	if m == nil {
		return rawField{}, 0, false
	}
	name := s[i : i+m[1]]
	j := skipSpace(s, i+m[1])
	if j >= len(s) || s[j] != '=' {
		return rawField{}, 0, false
	}
	start := skipSpace(s, j+1)
	end, ok := valueEnd(s, start)
	if !ok {
		return rawField{}, 0, false
	}
	next := skipSpace(s, end)
	if next < len(s) && s[next] == ',' {
		next++
	}
	return rawField{name: name, value: s[start:end]}, next, true
}

// valueEnd returns the index just past the value starting at i.
func valueEnd(s string, i int) (int, bool) {
	if i >= len(s) {
		return 0, false
	}
	switch s[i] {
	case '{':
		depth := 0
		for j := i; j < len(s); j++ {
			switch s[j] {
			case '\\':
				j++
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return j + 1, true
				}
			}
		}
		return 0, false
	case '"':
		depth := 0
		for j := i + 1; j < len(s); j++ {
			switch s[j] {
			case '\\':
				j++
			case '{':
				depth++
			case '}':
				if depth > 0 {
					depth--
				}
			case '"':
				if depth == 0 {
					return j + 1, true
				}
			}
		}
		return 0, false
	}
	j := i
	for j < len(s) && !isBareStop(s[j]) {
		j++
	}
	return j, j > i
}

func isBareStop(c byte) bool {
	switch c {
	case ',', '{', '}', '"', ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f':
			i++
		default:
			return i
		}
	}
	return i
}
