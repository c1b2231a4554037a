package display

import (
	"testing"

	"bibfilter/internal/match"
	"bibfilter/internal/query"
)

func TestOutcome(t *testing.T) {
	cases := []struct {
		in   match.Outcome
		want string
	}{
		{match.Matched, "Matched"},
		{match.Partial, "Partial"},
		{match.Unmatched, "Unmatched"},
	}
	for _, tc := range cases {
		if got := Outcome(tc.in); got != tc.want {
			t.Errorf("Outcome(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestField(t *testing.T) {
	cases := []struct {
		in   query.Field
		want string
	}{
		{query.Title, "Title"},
		{query.Abstract, "Abstract"},
		{query.Keywords, "Keywords"},
		{"venue", "venue"},
	}
	for _, tc := range cases {
		if got := Field(tc.in); got != tc.want {
			t.Errorf("Field(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFieldList(t *testing.T) {
	if got := FieldList(query.Fields{Title: true, Keywords: true}); got != "Title, Keywords" {
		t.Errorf("got %q", got)
	}
	if got := FieldList(query.Fields{}); got != "none" {
		t.Errorf("got %q", got)
	}
}

func TestBlockFlags(t *testing.T) {
	if got := BlockFlags(query.Block{IsRegex: true, Exclude: true}); got != "regex, NOT" {
		t.Errorf("got %q", got)
	}
	if got := BlockFlags(query.Block{}); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestCase(t *testing.T) {
	if Case(true) != "case-insensitive" || Case(false) != "case-sensitive" {
		t.Error("unexpected case labels")
	}
}
