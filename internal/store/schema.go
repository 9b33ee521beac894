package store

// Schema v1 - rename journal
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per applied rename batch
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  dir TEXT NOT NULL,
  started_at DATETIME NOT NULL,
  finished_at DATETIME,
  renamed INTEGER DEFAULT 0,
  skipped INTEGER DEFAULT 0,
  failed INTEGER DEFAULT 0,
  undone_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

-- Every move performed by a run, in the order it happened
CREATE TABLE IF NOT EXISTS renames (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  kind TEXT NOT NULL DEFAULT 'audio',
  old_path TEXT NOT NULL,
  new_path TEXT NOT NULL,
  renamed_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_renames_run_id ON renames(run_id);
`
