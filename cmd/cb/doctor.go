package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/franz/cloudbuccaneer/internal/meta"
	"github.com/franz/cloudbuccaneer/internal/scan"
	"github.com/franz/cloudbuccaneer/internal/store"
	"github.com/franz/cloudbuccaneer/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [dir]",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure cb can operate correctly.

This command checks:
- Configuration (junk markers and patterns compile)
- SQLite version
- Journal accessibility and integrity
- Music directory permissions and no-clobber rename support

Use this command to troubleshoot issues before renaming.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== cb doctor ===")

	results := []checkResult{
		checkConfig(),
		checkSQLite(),
		checkJournal(viper.GetString("db")),
	}
	if len(args) == 1 {
		results = append(results, checkMusicDirectory(args[0]), checkNoReplace(args[0]))
	}

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	if hasErrors {
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings. Review them before renaming.")
	} else {
		util.SuccessLog("All checks passed")
	}

	return nil
}

// checkConfig builds the engine from the effective configuration
func checkConfig() checkResult {
	cfg, err := engineConfig()
	if err == nil {
		var engine *meta.Engine
		engine, err = meta.NewEngine(cfg)
		if err == nil {
			return checkResult{
				name:    "Configuration",
				message: fmt.Sprintf("%d junk markers, artist window %v", len(engine.Markers()), cfg.ArtistWindow),
			}
		}
	}
	return checkResult{name: "Configuration", error: true, message: err.Error()}
}

// checkSQLite verifies the embedded SQLite works
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkJournal verifies the undo journal is usable
func checkJournal(dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Journal",
			warning: true,
			message: "disabled (renames cannot be undone)",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Journal",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Journal",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Journal",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Journal",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Journal",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	runs, _ := db.CountRuns()
	return checkResult{
		name:    "Journal",
		message: fmt.Sprintf("%s (%d runs)", dbPath, runs),
	}
}

// checkMusicDirectory verifies the directory is readable and writable
func checkMusicDirectory(path string) checkResult {
	result, err := scan.New(nil).Scan(context.Background(), path)
	if err != nil {
		return checkResult{
			name:    "Music directory",
			error:   true,
			message: err.Error(),
		}
	}

	testFile := filepath.Join(path, ".cb_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Music directory",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Music directory",
		message: fmt.Sprintf("%s (%d audio files, writable)", path, len(result.Files)),
	}
}

// checkNoReplace makes sure a rename onto an existing name is refused
func checkNoReplace(dir string) checkResult {
	src := filepath.Join(dir, ".cb_check_src")
	dst := filepath.Join(dir, ".cb_check_dst")
	defer os.Remove(src)
	defer os.Remove(dst)

	for _, p := range []string{src, dst} {
		if err := os.WriteFile(p, []byte(filepath.Base(p)), 0644); err != nil {
			return checkResult{
				name:    "No-clobber rename",
				warning: true,
				message: fmt.Sprintf("cannot create check files: %v", err),
			}
		}
	}

	err := util.RenameNoReplace(src, dst)
	if errors.Is(err, fs.ErrExist) {
		return checkResult{name: "No-clobber rename", message: "existing files are never overwritten"}
	}
	if err == nil {
		return checkResult{
			name:    "No-clobber rename",
			error:   true,
			message: "rename replaced an existing file",
		}
	}
	return checkResult{
		name:    "No-clobber rename",
		warning: true,
		message: fmt.Sprintf("check failed: %v", err),
	}
}
