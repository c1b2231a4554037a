package store

// schemaVersionV1 stored named configurations only.
const schemaVersionV1 = 1

// schemaVersionV2 adds run history.
const schemaVersionV2 = 2

// schemaV1 is kept for migration tests.
var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS query_configs (
	name       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// schemaV2 is the fresh-install DDL.
var schemaV2 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS query_configs (
	name       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	source       TEXT NOT NULL,
	config_name  TEXT,
	expression   TEXT NOT NULL,
	total        INTEGER NOT NULL,
	eligible     INTEGER NOT NULL,
	matched      INTEGER NOT NULL,
	partial      INTEGER NOT NULL,
	unmatched    INTEGER NOT NULL,
	matched_keys TEXT NOT NULL,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// migrationV1ToV2 adds the runs table to a v1 database.
var migrationV1ToV2 = `
CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	source       TEXT NOT NULL,
	config_name  TEXT,
	expression   TEXT NOT NULL,
	total        INTEGER NOT NULL,
	eligible     INTEGER NOT NULL,
	matched      INTEGER NOT NULL,
	partial      INTEGER NOT NULL,
	unmatched    INTEGER NOT NULL,
	matched_keys TEXT NOT NULL,
	created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
UPDATE schema_version SET version = 2;
`
