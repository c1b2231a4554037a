package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bibfilter/internal/logging"
	"bibfilter/internal/query"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// nullStr converts a sql.NullString to a plain string (empty if null).
func nullStr(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// currentSchemaVersion is the target schema version for this build.
const currentSchemaVersion = schemaVersionV2

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .bibfilter) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logging.New("store").Debug("store opened", "path", path, "schema", currentSchemaVersion)
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableCount == 0 {
		return s.freshInstall()
	}

	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		// schema_version exists but is empty: treat as v1.
		v = schemaVersionV1
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", v); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}

	switch v {
	case currentSchemaVersion:
		return nil
	case schemaVersionV1:
		return s.migrateV1ToV2()
	default:
		return fmt.Errorf("unknown schema version %d", v)
	}
}

func (s *SqlStore) freshInstall() error {
	if _, err := s.db.Exec(schemaV2); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", currentSchemaVersion); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// migrateV1ToV2 adds run history inside one transaction.
func (s *SqlStore) migrateV1ToV2() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(migrationV1ToV2); err != nil {
		return fmt.Errorf("v1→v2 migration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration tx: %w", err)
	}
	logging.New("store").Info("migrated store schema", "from", schemaVersionV1, "to", schemaVersionV2)
	return nil
}

// Close closes the database connection.
func (s *SqlStore) Close() error {
	return s.db.Close()
}

// --- Configurations ---

// SaveConfig validates cfg and stores it under name, replacing any
// previous version.
func (s *SqlStore) SaveConfig(name string, cfg *query.Config) error {
	if name == "" {
		return errors.New("config name is empty")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("save config %q: %w", name, err)
	}
	payload, err := query.Marshal(cfg, "json")
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO query_configs(name, payload, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		name, string(payload), nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert config %q: %w", name, err)
	}
	return nil
}

// GetConfig returns the named configuration, or nil when it does not exist.
func (s *SqlStore) GetConfig(name string) (*query.Config, error) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM query_configs WHERE name = ?", name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get config %q: %w", name, err)
	}
	return query.Load([]byte(payload), ".json")
}

// ListConfigs returns all configurations ordered by name.
func (s *SqlStore) ListConfigs() ([]SavedConfig, error) {
	rows, err := s.db.Query("SELECT name, payload, updated_at FROM query_configs ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	defer rows.Close()
	var out []SavedConfig
	for rows.Next() {
		var sc SavedConfig
		var payload string
		if err := rows.Scan(&sc.Name, &payload, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		if sc.Config, err = query.Load([]byte(payload), ".json"); err != nil {
			return nil, fmt.Errorf("decode config %q: %w", sc.Name, err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// DeleteConfig removes the named configuration.
func (s *SqlStore) DeleteConfig(name string) error {
	res, err := s.db.Exec("DELETE FROM query_configs WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete config %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("config %q: %w", name, ErrNotFound)
	}
	return nil
}

// --- Runs ---

// RecordRun appends r to the history and returns its id.
func (s *SqlStore) RecordRun(r *Run) (int64, error) {
	if r == nil {
		return 0, errors.New("run is nil")
	}
	keys, err := json.Marshal(r.MatchedKeys)
	if err != nil {
		return 0, fmt.Errorf("encode matched keys: %w", err)
	}
	created := r.CreatedAt
	if created == "" {
		created = nowUTC()
	}
	var cfgName sql.NullString
	if r.ConfigName != "" {
		cfgName = sql.NullString{String: r.ConfigName, Valid: true}
	}
	res, err := s.db.Exec(
		`INSERT INTO runs(source, config_name, expression, total, eligible, matched, partial, unmatched, matched_keys, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Source, cfgName, r.Expression,
		r.Summary.Total, r.Summary.Eligible, r.Summary.Matched, r.Summary.Partial, r.Summary.Unmatched,
		string(keys), created,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

const runColumns = `id, source, config_name, expression, total, eligible, matched, partial, unmatched, matched_keys, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var cfgName sql.NullString
	var keys string
	err := sc.Scan(&r.ID, &r.Source, &cfgName, &r.Expression,
		&r.Summary.Total, &r.Summary.Eligible, &r.Summary.Matched, &r.Summary.Partial, &r.Summary.Unmatched,
		&keys, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.ConfigName = nullStr(cfgName)
	if err := json.Unmarshal([]byte(keys), &r.MatchedKeys); err != nil {
		return nil, fmt.Errorf("decode matched keys of run %d: %w", r.ID, err)
	}
	return &r, nil
}

// GetRun returns the run by id.
func (s *SqlStore) GetRun(id int64) (*Run, error) {
	r, err := scanRun(s.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %d: %w", id, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *SqlStore) ListRuns(limit int) ([]*Run, error) {
	q := "SELECT " + runColumns + " FROM runs ORDER BY id DESC"
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
