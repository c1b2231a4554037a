package store

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bibfilter/internal/match"
	"bibfilter/internal/query"
)

// stores returns a fresh SQLite and in-memory store; both must behave the same.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := Open(filepath.Join(t.TempDir(), "bibfilter.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{"sqlite": sq, "mem": NewMemStore()}
}

func TestStore_Configs(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			missing, err := s.GetConfig("vr")
			if err != nil || missing != nil {
				t.Fatalf("GetConfig missing: got %+v err %v", missing, err)
			}

			cfg := query.DefaultConfig()
			if err := s.SaveConfig("vr", cfg); err != nil {
				t.Fatalf("SaveConfig: %v", err)
			}
			got, err := s.GetConfig("vr")
			if err != nil || got == nil {
				t.Fatalf("GetConfig: got %+v err %v", got, err)
			}
			if diff := cmp.Diff(cfg, got); diff != "" {
				t.Errorf("config round trip (-want +got):\n%s", diff)
			}

			cfg.CaseInsensitive = false
			if err := s.SaveConfig("vr", cfg); err != nil {
				t.Fatalf("SaveConfig overwrite: %v", err)
			}
			if err := s.SaveConfig("another", query.DefaultConfig()); err != nil {
				t.Fatalf("SaveConfig: %v", err)
			}
			list, err := s.ListConfigs()
			if err != nil {
				t.Fatalf("ListConfigs: %v", err)
			}
			names := make([]string, len(list))
			for i, sc := range list {
				names[i] = sc.Name
			}
			if diff := cmp.Diff([]string{"another", "vr"}, names); diff != "" {
				t.Errorf("names (-want +got):\n%s", diff)
			}
			if list[1].Config.CaseInsensitive {
				t.Error("overwrite did not replace config")
			}

			if err := s.DeleteConfig("vr"); err != nil {
				t.Fatalf("DeleteConfig: %v", err)
			}
			if err := s.DeleteConfig("vr"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second delete: %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_RejectsInvalidConfig(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			bad := query.DefaultConfig()
			bad.Operators = bad.Operators[:1]
			if err := s.SaveConfig("bad", bad); !errors.Is(err, query.ErrInconsistent) {
				t.Errorf("SaveConfig: %v, want ErrInconsistent", err)
			}
			if err := s.SaveConfig("", query.DefaultConfig()); err == nil {
				t.Error("empty name accepted")
			}
		})
	}
}

func TestStore_Runs(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for i, keys := range [][]string{{"a"}, {"a", "b"}, nil} {
				id, err := s.RecordRun(&Run{
					Source:      "refs.bib",
					ConfigName:  "vr",
					Expression:  "((Group 1 AND Group 2) AND Group 3)",
					Summary:     match.Summary{Total: 3, Eligible: 3, Matched: len(keys)},
					MatchedKeys: keys,
				})
				if err != nil {
					t.Fatalf("RecordRun %d: %v", i, err)
				}
				if id != int64(i+1) {
					t.Errorf("run id = %d, want %d", id, i+1)
				}
			}

			runs, err := s.ListRuns(2)
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			if len(runs) != 2 || runs[0].ID != 3 || runs[1].ID != 2 {
				t.Fatalf("ListRuns(2) = %+v", runs)
			}
			if diff := cmp.Diff([]string{"a", "b"}, runs[1].MatchedKeys); diff != "" {
				t.Errorf("matched keys (-want +got):\n%s", diff)
			}

			r, err := s.GetRun(1)
			if err != nil {
				t.Fatalf("GetRun: %v", err)
			}
			if r.ConfigName != "vr" || r.Summary.Matched != 1 || r.CreatedAt == "" {
				t.Errorf("GetRun = %+v", r)
			}
			if _, err := s.GetRun(99); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetRun(99): %v, want ErrNotFound", err)
			}
		})
	}
}

func TestNewRun(t *testing.T) {
	res, err := match.RunText(`@article{k1, title={immersive virtual reality}}`, query.DefaultConfig())
	if err != nil {
		t.Fatalf("RunText: %v", err)
	}
	r := NewRun("refs.bib", "", res)
	if r.Expression != res.Expression || r.Summary != res.Summary {
		t.Errorf("NewRun = %+v", r)
	}
}

func TestOpen_MigratesV1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(schemaV1); err != nil {
		t.Fatalf("create v1: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version(version) VALUES(1)"); err != nil {
		t.Fatal(err)
	}
	payload, err := query.Marshal(query.DefaultConfig(), "json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO query_configs(name, payload, updated_at) VALUES('legacy', ?, '2024-01-01T00:00:00Z')", string(payload)); err != nil {
		t.Fatal(err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open v1 db: %v", err)
	}
	defer s.Close()

	var v int
	if err := s.db.QueryRow("SELECT version FROM schema_version").Scan(&v); err != nil || v != schemaVersionV2 {
		t.Fatalf("schema version = %d err %v", v, err)
	}
	cfg, err := s.GetConfig("legacy")
	if err != nil || cfg == nil {
		t.Fatalf("legacy config lost: %+v %v", cfg, err)
	}
	if _, err := s.RecordRun(&Run{Source: "x.bib", Expression: "TRUE"}); err != nil {
		t.Errorf("RecordRun after migration: %v", err)
	}
}
