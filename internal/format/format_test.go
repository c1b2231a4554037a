package format_test

import (
	"strings"
	"testing"
	"time"

	"bibfilter/internal/format"
)

// entries fills tb with a small matched-records listing.
func entries(tb format.TableBuilder) {
	tb.Header("Key", "Year", "Title")
	tb.Row("smith2021remote", 2021, "A Remote Study of Immersive Virtual Reality")
	tb.Row("crowd2019", 2019, "Crowdsourcing Presence Questionnaires for VR")
}

func TestNewTable_Modes(t *testing.T) {
	cases := []struct {
		mode format.Mode
		want []string // substrings the rendering must contain
	}{
		{format.ASCII, []string{"KEY", "───", "smith2021remote", "2021"}},
		{format.Markdown, []string{"| Key", "---", "crowd2019"}},
		{format.HTML, []string{"<table", "<td>crowd2019</td>"}},
		{format.CSV, []string{"key,year,title", "crowd2019,2019,"}},
	}
	for _, tc := range cases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			tb := format.NewTable(tc.mode)
			entries(tb)
			out := tb.String()
			for _, w := range tc.want {
				if !strings.Contains(out, w) && !strings.Contains(strings.ToLower(out), w) {
					t.Errorf("missing %q in output:\n%s", w, out)
				}
			}
			if tb.Len() != 2 {
				t.Errorf("Len() = %d, want 2", tb.Len())
			}
		})
	}
}

func TestFooter_Totals(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Header("Outcome", "Records")
	tb.Row("Matched", 41)
	tb.Row("Partial", 117)
	tb.Footer("Eligible", 158)
	out := tb.String()

	for _, w := range []string{"Eligible", "158"} {
		if !strings.Contains(out, w) {
			t.Errorf("footer %q missing:\n%s", w, out)
		}
	}
	if strings.Count(out, "\n") < 4 {
		t.Errorf("expected header, separator, two rows and footer:\n%s", out)
	}
}

func TestColumns_WrapTitle(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Key", "Title")
	tb.Row("lee2020lab", "Virtual Reality Locomotion in the Lab")
	tb.Columns(format.ColumnConfig{Number: 2, MaxWidth: 20})
	out := tb.String()

	if strings.Contains(out, "Virtual Reality Locomotion in the Lab") {
		t.Errorf("title not wrapped at 20 cells:\n%s", out)
	}
	if !strings.Contains(out, "Locomotion") {
		t.Errorf("wrapped title lost text:\n%s", out)
	}
}

// --- Helper tests ---

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 records"},
		{1, "1 record"},
		{2, "2 records"},
	}
	for _, tc := range tests {
		if got := format.Plural(tc.n, "record"); got != tc.want {
			t.Errorf("Plural(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestFmtPercent(t *testing.T) {
	tests := []struct {
		n, total int
		want     string
	}{
		{0, 0, "-"},
		{1, 4, "25.0%"},
		{2, 3, "66.7%"},
	}
	for _, tc := range tests {
		if got := format.FmtPercent(tc.n, tc.total); got != tc.want {
			t.Errorf("FmtPercent(%d, %d) = %q, want %q", tc.n, tc.total, got, tc.want)
		}
	}
}

func TestTitle(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Title("Term frequency")
	tb.Header("Term", "Docs")
	tb.Row("online", 2)
	if out := tb.String(); !strings.Contains(out, "Term frequency") {
		t.Errorf("expected title in output:\n%s", out)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]format.Mode{
		"":         format.ASCII,
		"text":     format.ASCII,
		"md":       format.Markdown,
		"Markdown": format.Markdown,
		"html":     format.HTML,
		"CSV":      format.CSV,
	} {
		got, err := format.ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := format.ParseMode("latex"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if got := format.HTML.String(); got != "html" {
		t.Errorf("HTML.String() = %q", got)
	}
}

func TestHTMLAndCSV(t *testing.T) {
	build := func(m format.Mode) format.TableBuilder {
		tb := format.NewTable(m)
		tb.Title("Runs")
		tb.Header("Key", "Title")
		tb.Row("smith2021", "Remote VR, at home")
		tb.Columns(format.ColumnConfig{Number: 2, MaxWidth: 5})
		return tb
	}

	html := build(format.HTML)
	if out := html.String(); !strings.Contains(out, "<table") || !strings.Contains(out, "Remote VR, at home") {
		t.Errorf("html output:\n%s", out)
	}
	if html.Len() != 1 {
		t.Errorf("Len() = %d, want 1", html.Len())
	}

	out := build(format.CSV).String()
	if strings.Contains(out, "Runs") {
		t.Errorf("csv output carries the title:\n%s", out)
	}
	if !strings.Contains(out, `"Remote VR, at home"`) {
		t.Errorf("csv output did not quote the cell:\n%s", out)
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{250 * time.Millisecond, "250ms"},
		{30 * time.Second, "30s"},
		{59 * time.Second, "59s"},
		{60 * time.Second, "1m 0s"},
		{90 * time.Second, "1m 30s"},
		{5*time.Minute + 15*time.Second, "5m 15s"},
	}
	for _, tc := range tests {
		got := format.FmtDuration(tc.in)
		if got != tc.want {
			t.Errorf("FmtDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"ab", 3, "ab"},
		{"abcdef", 3, "abc"},
		{"Müller über alles", 8, "Mülle..."},
	}
	for _, tc := range tests {
		got := format.Truncate(tc.in, tc.maxLen)
		if got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestBoolMark(t *testing.T) {
	if format.BoolMark(true) != "✓" {
		t.Error("BoolMark(true) should be ✓")
	}
	if format.BoolMark(false) != "✗" {
		t.Error("BoolMark(false) should be ✗")
	}
}
