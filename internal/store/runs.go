package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/franz/cloudbuccaneer/internal/util"
	"github.com/google/uuid"
)

// Kinds of journal entries
const (
	KindAudio = "audio"
	KindCover = "cover"
)

// Run is one applied rename batch
type Run struct {
	ID         string
	Dir        string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Renamed    int
	Skipped    int
	Failed     int
	UndoneAt   sql.NullTime
}

// Undone reports whether the run has been reverted
func (r *Run) Undone() bool {
	return r.UndoneAt.Valid
}

// Entry is one move recorded by a run
type Entry struct {
	ID      int64
	RunID   string
	Kind    string
	OldPath string
	NewPath string
}

// BeginRun records the start of a batch and returns it with a fresh id
func (s *Store) BeginRun(dir string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Dir:       dir,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (id, dir, started_at) VALUES (?, ?, ?)
	`, run.ID, run.Dir, run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// FinishRun stores the batch totals
func (s *Store) FinishRun(runID string, renamed, skipped, failed int) error {
	_, err := s.db.Exec(`
		UPDATE runs SET finished_at = ?, renamed = ?, skipped = ?, failed = ?
		WHERE id = ?
	`, time.Now().UTC(), renamed, skipped, failed, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// RecordRename appends a completed move to a run
func (s *Store) RecordRename(runID, kind, oldPath, newPath string) error {
	_, err := s.db.Exec(`
		INSERT INTO renames (run_id, kind, old_path, new_path) VALUES (?, ?, ?, ?)
	`, runID, kind, oldPath, newPath)
	if err != nil {
		return fmt.Errorf("failed to record rename: %w", err)
	}
	return nil
}

const runColumns = `id, dir, started_at, finished_at, renamed, skipped, failed, undone_at`

func scanRun(row interface{ Scan(...any) error }) (*Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.Dir, &r.StartedAt, &r.FinishedAt, &r.Renamed, &r.Skipped, &r.Failed, &r.UndoneAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT `+runColumns+` FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun looks a run up by id or unique id prefix. The prefix is compared
// literally, so "%" or "_" never act as wildcards.
func (s *Store) GetRun(id string) (*Run, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty run id", util.ErrNotFound)
	}
	rows, err := s.db.Query(`
		SELECT `+runColumns+` FROM runs
		WHERE substr(id, 1, length(?)) = ?
		ORDER BY (id = ?) DESC
		LIMIT 2
	`, id, id, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(runs) == 0:
		return nil, fmt.Errorf("%w: run %s", util.ErrNotFound, id)
	case runs[0].ID == id || len(runs) == 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("%w: run prefix %s is ambiguous", util.ErrConflict, id)
	}
}

// LastRun returns the most recent run that has not been undone
func (s *Store) LastRun() (*Run, error) {
	row := s.db.QueryRow(`
		SELECT ` + runColumns + ` FROM runs
		WHERE undone_at IS NULL
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no run to undo", util.ErrNotFound)
	}
	return r, err
}

// RunEntries returns the moves of a run in the order they happened
func (s *Store) RunEntries(runID string) ([]*Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, kind, old_path, new_path FROM renames
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RunID, &e.Kind, &e.OldPath, &e.NewPath); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// MarkUndone flags a run as reverted
func (s *Store) MarkUndone(runID string) error {
	res, err := s.db.Exec(`UPDATE runs SET undone_at = ? WHERE id = ?`, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("failed to mark run undone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: run %s", util.ErrNotFound, runID)
	}
	return nil
}

// CountRuns returns how many runs the journal holds
func (s *Store) CountRuns() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count)
	return count, err
}
