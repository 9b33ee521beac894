package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestRenameNoReplace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp3")
	dst := filepath.Join(dir, "b.mp3")
	writeFile(t, src, "a")

	if err := RenameNoReplace(src, dst); err != nil {
		t.Fatalf("RenameNoReplace failed: %v", err)
	}
	if Exists(src) || !Exists(dst) {
		t.Error("file was not moved")
	}
}

func TestRenameNoReplace_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp3")
	dst := filepath.Join(dir, "b.mp3")
	writeFile(t, src, "a")
	writeFile(t, dst, "b")

	err := RenameNoReplace(src, dst)
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("Expected ErrExist, got %v", err)
	}

	content, _ := os.ReadFile(dst)
	if string(content) != "b" {
		t.Errorf("target was overwritten: %q", content)
	}
	if !Exists(src) {
		t.Error("source disappeared")
	}
}

func TestRenameNoReplace_MissingSource(t *testing.T) {
	dir := t.TempDir()

	err := RenameNoReplace(filepath.Join(dir, "missing.mp3"), filepath.Join(dir, "b.mp3"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
}

func TestGuardedRename(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp3")
	dst := filepath.Join(dir, "b.mp3")
	writeFile(t, src, "a")
	writeFile(t, dst, "b")

	if err := guardedRename(src, dst); !errors.Is(err, fs.ErrExist) {
		t.Errorf("Expected ErrExist, got %v", err)
	}

	os.Remove(dst)
	if err := guardedRename(src, dst); err != nil {
		t.Errorf("guardedRename failed: %v", err)
	}
}

func TestSameFileAndExists(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp3")
	b := filepath.Join(dir, "b.mp3")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	if !SameFile(a, a) {
		t.Error("a path should be the same file as itself")
	}
	if SameFile(a, b) {
		t.Error("different files reported as same")
	}
	if SameFile(a, filepath.Join(dir, "missing")) {
		t.Error("missing file reported as same")
	}

	link := filepath.Join(dir, "dangling")
	if err := os.Symlink(filepath.Join(dir, "nowhere"), link); err == nil && !Exists(link) {
		t.Error("dangling symlink should count as existing")
	}
}
