package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"bibfilter/internal/bibtex"
	"bibfilter/internal/export"
	"bibfilter/internal/query"
)

var fixture = filepath.Join("testdata", "refs.bib")

// execute runs the root command in-process with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("bibfilter %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestRun_DefaultQuery(t *testing.T) {
	out := mustExecute(t, "run", fixture)
	for _, want := range []string{"smith2021remote", "crowd2019", "Eligible"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "lee2020lab") {
		t.Errorf("partial entry listed without --partial:\n%s", out)
	}

	out = mustExecute(t, "run", fixture, "--partial")
	if !strings.Contains(out, "lee2020lab") {
		t.Errorf("--partial did not list lee2020lab:\n%s", out)
	}
}

func TestRun_JSON(t *testing.T) {
	out := mustExecute(t, "run", fixture, "--json", "--unmatched")
	var v export.ResultView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if v.Summary.Total != 5 || v.Summary.Eligible != 4 || v.Summary.Matched != 2 || v.Summary.Partial != 1 {
		t.Errorf("summary = %+v", v.Summary)
	}
	var keys []string
	for _, e := range v.Matched {
		keys = append(keys, e.Key)
	}
	if diff := cmp.Diff([]string{"smith2021remote", "crowd2019"}, keys); diff != "" {
		t.Errorf("matched (-want +got):\n%s", diff)
	}
	if len(v.Unmatched) != 1 || v.Unmatched[0].Key != "k2" {
		t.Errorf("unmatched = %+v", v.Unmatched)
	}
}

func TestRun_Exports(t *testing.T) {
	dir := t.TempDir()
	bibOut := filepath.Join(dir, "out.bib")
	csvOut := filepath.Join(dir, "out.csv")
	out := mustExecute(t, "run", fixture, "--bib-out", bibOut, "--csv-out", csvOut)
	if !strings.Contains(out, "Wrote 2 records to "+bibOut) {
		t.Errorf("output = %s", out)
	}
	recs, err := bibtex.ParseFile(bibOut)
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("exported %d records, want 2", len(recs))
	}
	data, err := os.ReadFile(csvOut)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 3 {
		t.Errorf("csv has %d lines, want header plus 2:\n%s", lines, data)
	}
}

func TestRun_QueryAndFields(t *testing.T) {
	out := mustExecute(t, "run", fixture, "--json", "-q", "prolific", "--fields", "title")
	var v export.ResultView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatal(err)
	}
	if v.Summary.Matched != 0 {
		t.Errorf("title-only search matched %d, want 0", v.Summary.Matched)
	}

	out = mustExecute(t, "run", fixture, "--json", "-q", "prolific")
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatal(err)
	}
	if len(v.Matched) != 1 || v.Matched[0].Key != "crowd2019" {
		t.Errorf("matched = %+v", v.Matched)
	}
}

func TestRun_Highlight(t *testing.T) {
	out := mustExecute(t, "run", fixture, "--highlight", "--color", "never")
	if !strings.Contains(out, "[Remote]") {
		t.Errorf("no bracketed term in output:\n%s", out)
	}
	out = mustExecute(t, "run", fixture, "--highlight", "--markdown")
	if !strings.Contains(out, "**Remote**") {
		t.Errorf("no bold term in markdown output:\n%s", out)
	}
}

func TestRun_Errors(t *testing.T) {
	if _, err := execute(t, "run", fixture, "--config", "a.yaml", "-q", "x"); err == nil {
		t.Error("--config with --query: want error")
	}
	if _, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.bib")); err == nil {
		t.Error("missing file: want error")
	}
	if _, err := execute(t, "run", fixture, "--highlight", "--color", "sometimes"); err == nil {
		t.Error("bad color mode: want error")
	}
}

func TestRun_RecordAndHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "bf.db")
	out := mustExecute(t, "run", fixture, "--db", db, "--record")
	if !strings.Contains(out, "Recorded run #1") {
		t.Errorf("output = %s", out)
	}
	out = mustExecute(t, "history", "--db", db, "--keys")
	if !strings.Contains(out, "smith2021remote, crowd2019") {
		t.Errorf("history = %s", out)
	}

	empty := filepath.Join(t.TempDir(), "empty.db")
	if out := mustExecute(t, "history", "--db", empty); !strings.Contains(out, "No recorded runs") {
		t.Errorf("history on empty store = %s", out)
	}
}

func TestParseQuery(t *testing.T) {
	out := mustExecute(t, "parse-query", `("virtual reality" OR VR) AND NOT museum`)
	cfg, err := query.Load([]byte(out), ".yaml")
	if err != nil {
		t.Fatalf("load printed config: %v\n%s", err, out)
	}
	if len(cfg.Blocks) != 2 || !cfg.Blocks[1].Exclude {
		t.Errorf("blocks = %+v", cfg.Blocks)
	}
	if diff := cmp.Diff([]string{"virtual reality", "VR"}, cfg.Blocks[0].Terms); diff != "" {
		t.Errorf("terms (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "q.json")
	mustExecute(t, "parse-query", "crowdsourcing", "--stem", "-o", path)
	saved, err := query.LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := saved.Blocks[0].Terms; len(got) != 1 || got[0] != "crowdsourc*" {
		t.Errorf("stemmed terms = %v", got)
	}

	if _, err := execute(t, "parse-query", "   "); err == nil {
		t.Error("blank expression: want error")
	}
}

func TestConfigLifecycle(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "bf.db")

	initPath := filepath.Join(dir, "default.yaml")
	mustExecute(t, "config", "init", initPath)
	if _, err := execute(t, "config", "init", initPath); err == nil {
		t.Error("init over existing file without --force: want error")
	}
	mustExecute(t, "config", "save", "vr", "--db", db, "--from", initPath)
	mustExecute(t, "config", "save", "prolific", "--db", db, "-q", "prolific")

	out := mustExecute(t, "config", "list", "--db", db)
	for _, want := range []string{"vr", "prolific"} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}

	out = mustExecute(t, "config", "show", "prolific", "--db", db, "--format", "table")
	if !strings.Contains(out, "Group 1") {
		t.Errorf("show = %s", out)
	}

	out = mustExecute(t, "run", fixture, "--db", db, "--saved", "prolific", "--json")
	var v export.ResultView
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatal(err)
	}
	if v.Summary.Matched != 1 {
		t.Errorf("saved query matched %d, want 1", v.Summary.Matched)
	}

	mustExecute(t, "config", "delete", "prolific", "--db", db)
	if _, err := execute(t, "config", "show", "prolific", "--db", db); err == nil {
		t.Error("show after delete: want error")
	}
}

func TestDiff(t *testing.T) {
	out := mustExecute(t, "diff", fixture, "--left", "default", "--right", `"virtual reality" AND NOT (museum OR art)`)
	if !strings.Contains(out, "Only left: 0  Only right: 1") {
		t.Errorf("summary line missing:\n%s", out)
	}
	if !strings.Contains(out, "+lee2020lab") {
		t.Errorf("patch missing added key:\n%s", out)
	}

	out = mustExecute(t, "diff", fixture, "--left", "default", "--right", "default")
	if !strings.Contains(out, "same records") {
		t.Errorf("identical sides = %s", out)
	}
}

func TestBatch(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.bib")
	out := mustExecute(t, "batch", fixture, fixture, missing, "--parallel", "2")
	if !strings.Contains(out, "1 file failed") {
		t.Errorf("batch output = %s", out)
	}
	if strings.Count(out, "refs.bib") != 2 {
		t.Errorf("want two rows for refs.bib:\n%s", out)
	}
}

func TestTableFormat(t *testing.T) {
	out := mustExecute(t, "--table-format", "html", "run", fixture)
	if !strings.Contains(out, "<table") {
		t.Errorf("html tables missing:\n%s", out)
	}
	if _, err := execute(t, "--table-format", "latex", "run", fixture); err == nil {
		t.Error("unknown table format: want error")
	}
}
