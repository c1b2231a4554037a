// Package pattern compiles query terms into word-bounded regular expressions.
//
// A term is either a literal ("virtual reality"), a stem with a trailing
// wildcard ("crowdsourc*") or, when the owning block is regex-flagged, a user
// regular expression. Invalid user expressions never fail a run: they are
// downgraded to literal matching.
package pattern

import (
	"regexp"
	"sort"
	"strings"

	"bibfilter/internal/logging"
)

// metaChars are the characters that mark a regex-flagged term as a real
// expression rather than plain words.
const metaChars = `.*+?^${}()|[]\`

// HasMeta reports whether term contains a regex metacharacter. A single
// trailing '*' is a wildcard, not a metacharacter, so "home*" is plain.
func HasMeta(term string) bool {
	return strings.ContainsAny(strings.TrimSuffix(term, "*"), metaChars)
}

// Source returns the expression text for one term, without flags. The
// result always compiles.
func Source(term string, isRegex bool) string {
	term = strings.TrimSpace(term)
	if isRegex && HasMeta(term) {
		// Alternation wraps each term in (?:...); the term must compile both ways.
		err := checkTerm(term)
		if err == nil {
			return term
		}
		// An open \Q would quote the wrapper's closing paren.
		if strings.Contains(term, `\Q`) && checkTerm(term+`\E`) == nil {
			return term + `\E`
		}
		logging.New("pattern").Debug("invalid regex term, matching literally", "term", term, "error", err)
		return regexp.QuoteMeta(term)
	}
	return literalSource(term)
}

func checkTerm(term string) error {
	if _, err := regexp.Compile(term); err != nil {
		return err
	}
	_, err := regexp.Compile("(?:" + term + ")")
	return err
}

func literalSource(term string) string {
	if stem, ok := strings.CutSuffix(term, "*"); ok && stem != "" {
		return `\b` + regexp.QuoteMeta(stem) + `[\w-]*`
	}
	return `\b` + regexp.QuoteMeta(term) + `\b`
}

// Compile returns the matching pattern for a single term.
func Compile(term string, isRegex, caseInsensitive bool) *regexp.Regexp {
	return mustCompile(flags(caseInsensitive) + Source(term, isRegex))
}

// Alternation compiles one pattern matching any of terms. Longer terms are
// tried first so that when one term is a substring of another the longer
// match wins. An empty term list yields nil.
func Alternation(terms []string, isRegex, caseInsensitive bool) *regexp.Regexp {
	if len(terms) == 0 {
		return nil
	}
	ordered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			ordered = append(ordered, t)
		}
	}
	if len(ordered) == 0 {
		return nil
	}
	sort.SliceStable(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	parts := make([]string, len(ordered))
	for i, t := range ordered {
		parts[i] = "(?:" + Source(t, isRegex) + ")"
	}
	return mustCompile(flags(caseInsensitive) + strings.Join(parts, "|"))
}

func flags(caseInsensitive bool) string {
	if caseInsensitive {
		return "(?i)"
	}
	return ""
}

// mustCompile compiles expr, which Source guarantees is valid.
func mustCompile(expr string) *regexp.Regexp {
	re, err := regexp.Compile(expr)
	if err != nil {
		return regexp.MustCompile(regexp.QuoteMeta(expr))
	}
	return re
}
