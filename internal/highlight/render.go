package highlight

import (
	"strings"

	"github.com/fatih/color"
)

// Styler wraps matched text for one block.
type Styler interface {
	Style(block, text string) string
}

// Render returns text with each span passed through s. Spans must be sorted
// and non-overlapping, as returned by Spans.
func Render(text string, spans []Span, s Styler) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		if sp.Start < pos || sp.End > len(text) {
			continue
		}
		b.WriteString(text[pos:sp.Start])
		b.WriteString(s.Style(sp.Block, text[sp.Start:sp.End]))
		pos = sp.End
	}
	b.WriteString(text[pos:])
	return b.String()
}

// Brackets marks spans as [text] for plain output.
type Brackets struct{}

func (Brackets) Style(_, text string) string { return "[" + text + "]" }

// Bold marks spans as **text** for Markdown output.
type Bold struct{}

func (Bold) Style(_, text string) string { return "**" + text + "**" }

var palette = []color.Attribute{
	color.FgRed,
	color.FgGreen,
	color.FgBlue,
	color.FgMagenta,
	color.FgYellow,
	color.FgCyan,
}

// ANSI colours spans by block. Colours are assigned by the order of the
// block names given to NewANSI and cycle through a fixed palette.
type ANSI struct {
	colors map[string]*color.Color
	plain  *color.Color
}

// NewANSI builds an ANSI styler for blocks. When force is true escape codes
// are emitted even if stdout is not a terminal.
func NewANSI(blocks []string, force bool) *ANSI {
	a := &ANSI{colors: make(map[string]*color.Color, len(blocks)), plain: color.New(color.Bold)}
	for i, name := range blocks {
		c := color.New(palette[i%len(palette)]).Add(color.Bold)
		if force {
			c.EnableColor()
		}
		a.colors[name] = c
	}
	if force {
		a.plain.EnableColor()
	}
	return a
}

// Style colours text with the block's colour.
func (a *ANSI) Style(block, text string) string {
	c, ok := a.colors[block]
	if !ok {
		c = a.plain
	}
	return c.Sprint(text)
}

// Legend renders each block name in its own colour, space separated.
func (a *ANSI) Legend(blocks []string) string {
	parts := make([]string, 0, len(blocks))
	for _, name := range blocks {
		parts = append(parts, a.Style(name, name))
	}
	return strings.Join(parts, " ")
}
