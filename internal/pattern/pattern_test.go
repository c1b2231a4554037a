package pattern

import "testing"

func TestHasMeta(t *testing.T) {
	cases := []struct {
		term string
		want bool
	}{
		{"virtual reality", false},
		{"home*", false},
		{"crowd.*sourc", true},
		{"in-the-wild", false},
		{"(remote|online)", true},
		{`a\b`, true},
		{"**", true},
	}
	for _, tc := range cases {
		if got := HasMeta(tc.term); got != tc.want {
			t.Errorf("HasMeta(%q) = %v, want %v", tc.term, got, tc.want)
		}
	}
}

func TestCompile(t *testing.T) {
	cases := []struct {
		name            string
		term            string
		isRegex         bool
		caseInsensitive bool
		text            string
		want            bool
	}{
		{"literal word", "virtual reality", false, true, "Immersive Virtual Reality study", true},
		{"literal needs boundary", "art", false, true, "a participant study", false},
		{"case sensitive miss", "VR", false, false, "a vr headset", false},
		{"case sensitive hit", "VR", false, false, "a VR headset", true},
		{"prefix wildcard", "home*", true, true, "homemade setup", true},
		{"prefix wildcard bare stem", "home*", true, true, "home.", true},
		{"prefix wildcard hyphen", "crowd*", false, true, "crowd-sourced data", true},
		{"prefix needs left boundary", "home*", false, true, "at-home", true},
		{"prefix left boundary miss", "home*", false, true, "chromehome", false},
		{"user regex", `remote(ly)?`, true, true, "conducted remotely", true},
		{"literal metachars escaped", "c++", false, true, "c++ code", false},
		{"literal dot is escaped", "u.s", false, true, "u s", false},
		{"invalid regex falls back", "(unclosed", true, true, "an (unclosed paren", true},
		{"invalid regex literal miss", "(unclosed", true, true, "unclosed", false},
		{"regex flag without meta is literal", "online", true, true, "onlineness", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			re := Compile(tc.term, tc.isRegex, tc.caseInsensitive)
			if got := re.MatchString(tc.text); got != tc.want {
				t.Errorf("Compile(%q).MatchString(%q) = %v, want %v (expr %s)", tc.term, tc.text, got, tc.want, re)
			}
		})
	}
}

func TestAlternation_LongestFirst(t *testing.T) {
	re := Alternation([]string{"virtual reality", "immersive virtual reality"}, false, true)
	got := re.FindString("an immersive virtual reality app")
	if got != "immersive virtual reality" {
		t.Errorf("FindString = %q, want longest term", got)
	}
}

func TestAlternation_Empty(t *testing.T) {
	if re := Alternation(nil, false, true); re != nil {
		t.Errorf("want nil for no terms, got %s", re)
	}
	if re := Alternation([]string{" ", ""}, false, true); re != nil {
		t.Errorf("want nil for blank terms, got %s", re)
	}
}

func TestSource_TermMustCompileInsideGroup(t *testing.T) {
	cases := []struct {
		term string
		want string
	}{
		{`\Qa+b`, `\Qa+b\E`},
		{`\Qa+b\E`, `\Qa+b\E`},
		{`a)|(b`, `a\)\|\(b`},
		{`remote|online`, `remote|online`},
	}
	for _, tc := range cases {
		if got := Source(tc.term, true); got != tc.want {
			t.Errorf("Source(%q) = %q, want %q", tc.term, got, tc.want)
		}
	}

	re := Alternation([]string{`\Qa+b`, "c.d"}, true, true)
	if got := re.FindString("x a+b y"); got != "a+b" {
		t.Errorf("FindString = %q, want %q", got, "a+b")
	}
	if !Compile(`\Qa+b`, true, true).MatchString("x a+b y") {
		t.Error("single-term pattern does not match a+b")
	}
}
