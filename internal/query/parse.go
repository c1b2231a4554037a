package query

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Parsed is the block model recovered from a pasted boolean expression.
type Parsed struct {
	Blocks    []Block
	Operators []Operator
}

// Apply replaces the blocks and operators of c, keeping its case and field
// switches.
func (p *Parsed) Apply(c *Config) {
	c.Blocks = p.Blocks
	c.Operators = p.Operators
}

// Config wraps the parsed blocks in a configuration with the given switches.
func (p *Parsed) Config(caseInsensitive bool, fields Fields) *Config {
	return &Config{
		Blocks:          p.Blocks,
		Operators:       p.Operators,
		CaseInsensitive: caseInsensitive,
		SearchFields:    fields,
	}
}

var spaceRunRe = regexp.MustCompile(`\s+`)

// ParseExpression turns an expression such as
//
//	("virtual reality" OR VR) AND (remote OR online) AND NOT museum
//
// into blocks. Top-level AND separates groups; inside a group, OR separates
// terms, and a leading NOT marks the block excluded. Operators are only
// recognised as whole words outside quotes and parentheses.
//
// Groups are always joined by AND: a top-level OR between groups cannot be
// expressed in the block model and has to be set on the parsed config
// afterwards. ok is false for empty input or when no group has a term.
func ParseExpression(expr string) (p *Parsed, ok bool) {
	expr = strings.TrimSpace(spaceRunRe.ReplaceAllString(expr, " "))
	if expr == "" {
		return nil, false
	}

	p = &Parsed{}
	for _, group := range splitTop(expr, "AND") {
		b, ok := parseGroup(group)
		if !ok {
			continue
		}
		b.ID = uuid.NewString()
		b.Name = fmt.Sprintf("Group %d", len(p.Blocks)+1)
		if len(p.Blocks) > 0 {
			p.Operators = append(p.Operators, And)
		}
		p.Blocks = append(p.Blocks, b)
	}
	if len(p.Blocks) == 0 {
		return nil, false
	}
	return p, true
}

func parseGroup(group string) (Block, bool) {
	group = strings.TrimSpace(group)
	var b Block
	if len(group) >= 4 && strings.EqualFold(group[:4], "NOT ") {
		b.Exclude = true
		group = strings.TrimSpace(group[4:])
	}
	group = stripOuterParens(group)
	for _, raw := range splitTop(group, "OR") {
		if t := unquote(strings.TrimSpace(raw)); t != "" {
			b.Terms = append(b.Terms, t)
		}
	}
	return b, len(b.Terms) > 0
}

// splitTop splits s on the operator word wherever it stands alone at
// parenthesis depth 0 and outside quotes.
func splitTop(s, word string) []string {
	var parts []string
	depth, last := 0, 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\\':
			i++
			continue
		case '"':
			quote = c
			continue
		case '\'':
			if i == 0 || s[i-1] == ' ' || s[i-1] == '(' {
				quote = c
			}
			continue
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && operatorAt(s, i, word) {
			parts = append(parts, s[last:i])
			last = i + len(word)
			i = last - 1
		}
	}
	return append(parts, s[last:])
}

// operatorAt reports whether word starts at s[i] as a standalone operator:
// preceded by a space or ')' and followed by a space, '(' or the end.
func operatorAt(s string, i int, word string) bool {
	if i == 0 || !strings.HasPrefix(s[i:], word) {
		return false
	}
	if prev := s[i-1]; prev != ' ' && prev != ')' {
		return false
	}
	j := i + len(word)
	return j == len(s) || s[j] == ' ' || s[j] == '('
}

// stripOuterParens removes one pair of parentheses when the opening one at
// the start is closed by the last character.
func stripOuterParens(s string) string {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s
			}
		}
	}
	return strings.TrimSpace(s[1 : len(s)-1])
}

var quotePairs = map[rune]rune{
	'"':  '"',
	'\'': '\'',
	'“':  '”',
	'‘':  '’',
	'„':  '“',
	'«':  '»',
}

// unquote strips one layer of matching straight or curly quotes.
func unquote(s string) string {
	first, fw := utf8.DecodeRuneInString(s)
	last, lw := utf8.DecodeLastRuneInString(s)
	if closing, ok := quotePairs[first]; ok && len(s) >= fw+lw && last == closing {
		return strings.TrimSpace(s[fw : len(s)-lw])
	}
	return s
}
