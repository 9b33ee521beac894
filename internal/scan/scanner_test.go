package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/cloudbuccaneer/internal/util"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
}

func TestIsAudioFile(t *testing.T) {
	scanner := New(nil)

	tests := []struct {
		path     string
		expected bool
	}{
		{"test.mp3", true},
		{"test.MP3", true}, // Case insensitive
		{"test.flac", true},
		{"test.m4a", true},
		{"test.ogg", true},
		{"test.aiff", true},
		{"test.au", true},
		{"test.opus", true},
		{"test.WMA", true},
		{"test.wav", true},
		{"test.aac", false},
		{"test.txt", false},
		{"test.jpg", false},
		{"test", false},
	}

	for _, tt := range tests {
		if got := scanner.IsAudioFile(tt.path); got != tt.expected {
			t.Errorf("IsAudioFile(%s) = %v, expected %v", tt.path, got, tt.expected)
		}
	}
}

func TestScanNonRecursive(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, filepath.Join(tmpDir, "b.mp3"))
	touch(t, filepath.Join(tmpDir, "a.FLAC"))
	touch(t, filepath.Join(tmpDir, "cover.jpg"))
	touch(t, filepath.Join(tmpDir, "sub", "nested.mp3"))
	if err := os.Mkdir(filepath.Join(tmpDir, "folder.mp3"), 0755); err != nil {
		t.Fatal(err)
	}

	result, err := New(nil).Scan(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	expected := []string{filepath.Join(tmpDir, "a.FLAC"), filepath.Join(tmpDir, "b.mp3")}
	if len(result.Files) != len(expected) {
		t.Fatalf("Scan found %v, expected %v", result.Files, expected)
	}
	for i := range expected {
		if result.Files[i] != expected[i] {
			t.Errorf("Files[%d] = %s, expected %s", i, result.Files[i], expected[i])
		}
	}
}

func TestScanRecursive(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, filepath.Join(tmpDir, "top.mp3"))
	touch(t, filepath.Join(tmpDir, "Set", "01 - a.opus"))
	touch(t, filepath.Join(tmpDir, "Set", "notes.txt"))

	result, err := New(&Config{Recursive: true}).Scan(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Files) != 2 {
		t.Errorf("expected 2 files, got %v", result.Files)
	}
}

func TestScanInvalidDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "file.mp3")
	touch(t, file)

	for _, dir := range []string{filepath.Join(tmpDir, "missing"), file} {
		_, err := New(nil).Scan(context.Background(), dir)
		if !errors.Is(err, util.ErrInvalidDirectory) {
			t.Errorf("Scan(%s) error = %v, expected ErrInvalidDirectory", dir, err)
		}
	}
}

func TestFindCover(t *testing.T) {
	tmpDir := t.TempDir()
	audio := filepath.Join(tmpDir, "Song.mp3")
	touch(t, audio)

	if got := FindCover(audio); got != "" {
		t.Errorf("FindCover with no image = %q, expected empty", got)
	}

	touch(t, filepath.Join(tmpDir, "Song.png"))
	touch(t, filepath.Join(tmpDir, "Song.jpg"))
	if got := FindCover(audio); got != filepath.Join(tmpDir, "Song.jpg") {
		t.Errorf("FindCover = %q, expected the .jpg to win", got)
	}

	other := filepath.Join(tmpDir, "Other.flac")
	touch(t, other)
	touch(t, filepath.Join(tmpDir, "Other.WEBP"))
	if got := FindCover(other); !strings.EqualFold(got, filepath.Join(tmpDir, "Other.WEBP")) {
		t.Errorf("FindCover = %q, expected upper-case extension to match", got)
	}
}
