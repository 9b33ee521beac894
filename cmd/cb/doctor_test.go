package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/franz/cloudbuccaneer/internal/store"
)

func TestCheckSQLite(t *testing.T) {
	result := checkSQLite()

	if result.error {
		t.Errorf("SQLite check failed: %s", result.message)
	}
	if result.message == "" {
		t.Error("expected version information in message")
	}
}

func TestCheckJournal(t *testing.T) {
	tmpDir := t.TempDir()

	// Disabled journal is only a warning
	if result := checkJournal(""); result.error || !result.warning {
		t.Errorf("empty path should warn, got %+v", result)
	}

	// Missing journal will be created later
	missing := filepath.Join(tmpDir, "missing.db")
	if result := checkJournal(missing); result.error || result.warning {
		t.Errorf("missing journal should pass, got %+v", result)
	}

	// Existing journal
	dbPath := filepath.Join(tmpDir, "journal.db")
	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create journal: %v", err)
	}
	db.Close()

	if result := checkJournal(dbPath); result.error {
		t.Errorf("existing journal check failed: %s", result.message)
	}

	// Directory instead of a file
	if result := checkJournal(tmpDir); !result.error {
		t.Error("expected error for a directory")
	}
}

func TestCheckMusicDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "song.mp3"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	result := checkMusicDirectory(tmpDir)
	if result.error {
		t.Errorf("music directory check failed: %s", result.message)
	}

	if result := checkMusicDirectory(filepath.Join(tmpDir, "nope")); !result.error {
		t.Error("expected error for a missing directory")
	}
}

func TestCheckNoReplace(t *testing.T) {
	tmpDir := t.TempDir()

	result := checkNoReplace(tmpDir)
	if result.error || result.warning {
		t.Errorf("no-clobber rename check failed: %s", result.message)
	}

	entries, _ := os.ReadDir(tmpDir)
	if len(entries) != 0 {
		t.Errorf("check files left behind: %d", len(entries))
	}
}
