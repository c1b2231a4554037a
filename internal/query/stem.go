package query

import (
	"strings"

	"github.com/surgebase/porter2"
)

// StemTerms rewrites single-word literal terms of non-regex blocks into
// prefix wildcards built from their Porter2 stem, e.g. "crowdsourcing"
// becomes "crowdsourc*". Terms whose stem is not a strict prefix of the
// lower-cased word are left alone, as are phrases and existing wildcards.
// It returns the number of rewritten terms.
func StemTerms(c *Config) int {
	n := 0
	for i := range c.Blocks {
		b := &c.Blocks[i]
		if b.IsRegex {
			continue
		}
		for j, t := range b.Terms {
			if s, ok := stemTerm(t); ok {
				b.Terms[j] = s
				n++
			}
		}
	}
	return n
}

func stemTerm(term string) (string, bool) {
	word := strings.ToLower(strings.TrimSpace(term))
	if word == "" || strings.ContainsAny(word, " \t*-") {
		return "", false
	}
	stem := porter2.Stem(word)
	if stem == "" || len(stem) >= len(word) || !strings.HasPrefix(word, stem) {
		return "", false
	}
	return stem + "*", true
}
