// Package format renders result tables for the terminal, as Markdown for
// notes and issue trackers, or as HTML and CSV for reports.
package format

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects how a table is rendered.
type Mode int

const (
	ASCII    Mode = iota // box-drawn terminal table
	Markdown             // GitHub-flavoured Markdown
	HTML                 // <table> fragment
	CSV                  // comma-separated, header first
)

var modeNames = map[Mode]string{
	ASCII:    "ascii",
	Markdown: "markdown",
	HTML:     "html",
	CSV:      "csv",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts ascii/text, markdown/md, html and csv.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascii", "text":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	case "html":
		return HTML, nil
	case "csv":
		return CSV, nil
	}
	return ASCII, fmt.Errorf("unknown table format %q (want ascii, markdown, html or csv)", s)
}

// ColumnAlign is the horizontal alignment of a column.
type ColumnAlign int

const (
	AlignDefault ColumnAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ColumnConfig adjusts one column.
type ColumnConfig struct {
	Number   int // 1-based
	Align    ColumnAlign
	MaxWidth int // wrap beyond this many cells; 0 means no limit
}

// TableBuilder collects a header, rows and an optional footer and renders
// them in the Mode chosen at construction.
type TableBuilder interface {
	Header(cols ...string)
	// Row appends a data row; values are printed with fmt.Sprint.
	Row(vals ...any)
	Footer(vals ...any)
	Columns(cfgs ...ColumnConfig)
	// Title sets a caption. CSV output omits it.
	Title(s string)
	// Len is the number of data rows appended so far.
	Len() int
	String() string
}

// NewTable returns an empty table for mode m.
func NewTable(m Mode) TableBuilder {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return &prettyTable{w: w, mode: m}
}

type prettyTable struct {
	w    table.Writer
	mode Mode
	rows int
}

func toRow(vals []any) table.Row {
	row := make(table.Row, len(vals))
	copy(row, vals)
	return row
}

func (t *prettyTable) Header(cols ...string) {
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = c
	}
	t.w.AppendHeader(toRow(vals))
}

func (t *prettyTable) Row(vals ...any) {
	t.w.AppendRow(toRow(vals))
	t.rows++
}

func (t *prettyTable) Footer(vals ...any) { t.w.AppendFooter(toRow(vals)) }

func (t *prettyTable) Columns(cfgs ...ColumnConfig) {
	out := make([]table.ColumnConfig, 0, len(cfgs))
	for _, c := range cfgs {
		cc := table.ColumnConfig{Number: c.Number, Align: toTextAlign(c.Align)}
		// Wrapping would split cells across lines in CSV and HTML.
		if t.mode == ASCII || t.mode == Markdown {
			cc.WidthMax = c.MaxWidth
		}
		out = append(out, cc)
	}
	t.w.SetColumnConfigs(out)
}

func (t *prettyTable) Title(s string) { t.w.SetTitle(s) }

func (t *prettyTable) Len() int { return t.rows }

func (t *prettyTable) String() string {
	switch t.mode {
	case Markdown:
		return t.w.RenderMarkdown()
	case HTML:
		return t.w.RenderHTML()
	case CSV:
		t.w.SetTitle("")
		return t.w.RenderCSV()
	}
	return t.w.Render()
}

func toTextAlign(a ColumnAlign) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignCenter:
		return text.AlignCenter
	case AlignRight:
		return text.AlignRight
	}
	return text.AlignDefault
}
