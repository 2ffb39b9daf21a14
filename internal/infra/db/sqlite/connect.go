package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the sqlite database, enables WAL and creates the schema.
func Connect(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// sqlite handles one writer at a time
	db.SetMaxOpenConns(1)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx2, `PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate(ctx2, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS analyses (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  triggered_at TIMESTAMP NOT NULL,
  sector TEXT NOT NULL,
  status TEXT NOT NULL,
  model TEXT NOT NULL DEFAULT '',
  companies INTEGER NOT NULL DEFAULT 0,
  researched INTEGER NOT NULL DEFAULT 0,
  rejected INTEGER NOT NULL DEFAULT 0,
  chosen TEXT NOT NULL DEFAULT '',
  decision_summary TEXT NOT NULL DEFAULT '',
  artifact_trending TEXT NOT NULL DEFAULT '',
  artifact_research TEXT NOT NULL DEFAULT '',
  artifact_decision TEXT NOT NULL DEFAULT '',
  duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_analyses_tenant_time ON analyses(tenant_id, triggered_at DESC);

CREATE TABLE IF NOT EXISTS long_term_memories (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  tenant_id TEXT NOT NULL,
  analysis_id TEXT NOT NULL,
  sector TEXT NOT NULL,
  task TEXT NOT NULL,
  chosen TEXT NOT NULL DEFAULT '',
  score REAL NOT NULL DEFAULT 0,
  metadata TEXT NOT NULL DEFAULT '',
  datetime REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ltm_tenant ON long_term_memories(tenant_id, datetime DESC);

CREATE TABLE IF NOT EXISTS run_errors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  tenant_id TEXT NOT NULL,
  analysis_id TEXT NOT NULL,
  sector TEXT NOT NULL DEFAULT '',
  stage TEXT NOT NULL DEFAULT '',
  message TEXT NOT NULL,
  details_json TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_errors_analysis ON run_errors(tenant_id, analysis_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}
