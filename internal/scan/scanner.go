package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/franz/cloudbuccaneer/internal/util"
)

// AudioExtensions is the fixed set of extensions the renamer touches
var AudioExtensions = []string{
	".mp3",
	".wav",
	".flac",
	".m4a",
	".ogg",
	".aiff",
	".au",
	".opus",
	".wma",
}

// CoverExtensions are image files that travel with a renamed track
var CoverExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// Scanner lists audio files in a directory
type Scanner struct {
	extensions map[string]bool
	recursive  bool
}

// Config holds scanner configuration
type Config struct {
	// Recursive descends into subdirectories; off by default
	Recursive bool
}

// New creates a new Scanner
func New(cfg *Config) *Scanner {
	if cfg == nil {
		cfg = &Config{}
	}

	extMap := make(map[string]bool, len(AudioExtensions))
	for _, ext := range AudioExtensions {
		extMap[strings.ToLower(ext)] = true
	}

	return &Scanner{
		extensions: extMap,
		recursive:  cfg.Recursive,
	}
}

// Result represents a scan result
type Result struct {
	Files  []string // sorted paths of audio files
	Errors []error  // unreadable subdirectories, recursive mode only
}

// Scan lists audio files under dir. It fails only when dir itself is
// missing, unreadable or not a directory.
func (s *Scanner) Scan(ctx context.Context, dir string) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", util.ErrInvalidDirectory, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", util.ErrInvalidDirectory, dir)
	}

	result := &Result{}
	if !s.recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", util.ErrInvalidDirectory, dir, err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() && s.IsAudioFile(e.Name()) {
				result.Files = append(result.Files, filepath.Join(dir, e.Name()))
			}
		}
		util.DebugLog("Scan: %d audio files in %s", len(result.Files), dir)
		return result, nil
	}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			util.WarnLog("Error accessing path %s: %v", path, err)
			result.Errors = append(result.Errors, fmt.Errorf("access error: %s: %w", path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && s.IsAudioFile(path) {
			result.Files = append(result.Files, path)
		}
		return nil
	})
	if walkErr != nil {
		return result, fmt.Errorf("walk error: %w", walkErr)
	}

	sort.Strings(result.Files)
	util.DebugLog("Scan: %d audio files under %s", len(result.Files), dir)
	return result, nil
}

// IsAudioFile checks if a file has a supported audio extension (case-insensitive)
func (s *Scanner) IsAudioFile(path string) bool {
	return s.extensions[strings.ToLower(filepath.Ext(path))]
}

// FindCover returns the first existing image next to audioPath sharing its
// stem, or "" when there is none
func FindCover(audioPath string) string {
	stem := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	for _, ext := range CoverExtensions {
		for _, candidate := range []string{stem + ext, stem + strings.ToUpper(ext)} {
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate
			}
		}
	}
	return ""
}
