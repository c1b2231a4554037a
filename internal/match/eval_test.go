package match

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bibfilter/internal/query"
)

// cfgOf builds a case-insensitive all-fields config from blocks and operators.
func cfgOf(ops []query.Operator, blocks ...query.Block) *query.Config {
	return &query.Config{
		Blocks:          blocks,
		Operators:       ops,
		CaseInsensitive: true,
		SearchFields:    query.AllSelected(),
	}
}

func excluded(b query.Block) query.Block {
	b.Exclude = true
	return b
}

func TestEvaluate_LeftAssociative(t *testing.T) {
	// "alpha" alone separates the readings: (A OR B) AND C is false while
	// A OR (B AND C) would be true.
	cfg := cfgOf([]query.Operator{query.Or, query.And},
		query.NewBlock("A", "alpha"),
		query.NewBlock("B", "beta"),
		query.NewBlock("C", "gamma"),
	)
	cq, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	cases := []struct {
		title string
		want  bool
	}{
		{"alpha gamma", true},
		{"alpha", false},
		{"beta gamma", true},
		{"gamma", false},
	}
	for _, tc := range cases {
		got := cq.Evaluate(Texts{Title: tc.title}).OK
		if got != tc.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tc.title, got, tc.want)
		}
	}
	if got, want := cq.String(), "((A OR B) AND C)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestEvaluate_Exclude(t *testing.T) {
	cfg := cfgOf([]query.Operator{query.And},
		query.NewBlock("VR", "virtual reality"),
		excluded(query.NewBlock("Museum", "museum")),
	)
	cq, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	res := cq.Evaluate(Texts{Title: "Virtual reality in the museum"})
	if res.OK {
		t.Error("excluded block fired but record still matched")
	}
	if _, ok := res.Hits["Museum"]; ok {
		t.Error("excluded block must not appear in hits")
	}
	if diff := cmp.Diff([]string{"VR"}, res.MatchedBlocks); diff != "" {
		t.Errorf("MatchedBlocks mismatch (-want +got):\n%s", diff)
	}

	res = cq.Evaluate(Texts{Title: "Virtual reality at home"})
	if !res.OK {
		t.Error("expected match when excluded block does not fire")
	}
	if got := cq.String(); got != "(VR AND NOT Museum)" {
		t.Errorf("String() = %q", got)
	}
}

func TestEvaluate_OnlyExcludedBlock(t *testing.T) {
	cq, err := Compile(cfgOf(nil, excluded(query.NewBlock("Museum", "museum"))))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res := cq.Evaluate(Texts{Abstract: "a lab study"})
	if !res.OK {
		t.Error("NOT block that does not fire should match")
	}
	if len(res.Hits) != 0 {
		t.Errorf("hits = %v, want none", res.Hits)
	}
}

func TestEvaluate_NoUsableBlocks(t *testing.T) {
	cfg := cfgOf([]query.Operator{query.Or},
		query.NewBlock("Empty", "  "),
		query.NewBlock("Also empty"),
	)
	cq, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if cq.Len() != 0 {
		t.Fatalf("Len = %d, want 0", cq.Len())
	}
	if res := cq.Evaluate(Texts{Title: "anything"}); !res.OK {
		t.Error("no usable blocks should match vacuously")
	}
	if cq.String() != "TRUE" {
		t.Errorf("String() = %q", cq.String())
	}
}

func TestCompile_DropsEmptyBlockWithLeftOperator(t *testing.T) {
	cfg := cfgOf([]query.Operator{query.And, query.Or},
		query.NewBlock("A", "alpha"),
		query.NewBlock("Blank"),
		query.NewBlock("C", "gamma"),
	)
	cq, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got, want := cq.String(), "(A OR C)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	cfg = cfgOf([]query.Operator{query.Or, query.And},
		query.NewBlock("Blank"),
		query.NewBlock("B", "beta"),
		query.NewBlock("C", "gamma"),
	)
	cq, err = Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if got, want := cq.String(), "(B AND C)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCompile_Inconsistent(t *testing.T) {
	cfg := cfgOf([]query.Operator{query.And, query.And},
		query.NewBlock("A", "alpha"),
		query.NewBlock("B", "beta"),
	)
	if _, err := Compile(cfg); !errors.Is(err, query.ErrInconsistent) {
		t.Errorf("err = %v, want ErrInconsistent", err)
	}

	dup := cfgOf([]query.Operator{query.And},
		query.NewBlock("A", "alpha"),
		query.NewBlock("A", "beta"),
	)
	if _, err := Compile(dup); !errors.Is(err, query.ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName", err)
	}
}

func TestEvaluate_HitsPerField(t *testing.T) {
	b := query.NewBlock("Remote", "remote*", "online", "(mechanical turk|mturk)")
	b.IsRegex = true
	cq, err := Compile(cfgOf(nil, b))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res := cq.Evaluate(Texts{
		Title:    "Remotely run studies",
		Abstract: "Recruited online via MTurk.",
		Keywords: "   ",
	})
	want := HitMap{"Remote": {
		Title:    []string{"remote*"},
		Abstract: []string{"online", "(mechanical turk|mturk)"},
	}}
	if diff := cmp.Diff(want, res.Hits); diff != "" {
		t.Errorf("hits mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_CaseSensitive(t *testing.T) {
	cfg := cfgOf(nil, query.NewBlock("VR", "VR"))
	cfg.CaseInsensitive = false
	cq, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if cq.Evaluate(Texts{Title: "a vr headset"}).OK {
		t.Error("case-sensitive term matched different case")
	}
	if !cq.Evaluate(Texts{Title: "a VR headset"}).OK {
		t.Error("case-sensitive term missed exact case")
	}
}
