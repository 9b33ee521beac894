package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/franz/cloudbuccaneer/internal/execute"
	"github.com/franz/cloudbuccaneer/internal/store"
	"github.com/franz/cloudbuccaneer/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var undoCmd = &cobra.Command{
	Use:   "undo [run-id]",
	Short: "Revert the last applied rename batch",
	Long: `Revert a rename batch recorded in the journal, newest move first.

Without an argument the most recent batch that has not been undone is reverted.
A run id (or a unique prefix, see 'cb history') selects another one. Files that
were moved or deleted since, and original names that are taken again, are left
alone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUndo,
}

func init() {
	undoCmd.Flags().Bool("dry-run", false, "show what would be restored")
	rootCmd.AddCommand(undoCmd)
}

func runUndo(cmd *cobra.Command, args []string) error {
	runID := ""
	if len(args) == 1 {
		runID = args[0]
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	dbPath := viper.GetString("db")
	if dbPath == "" {
		return fmt.Errorf("undo needs a journal (--db)")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	journal, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	logger := eventLogger()
	defer logger.Close()

	renamer := execute.New(&execute.Config{
		DryRun:      dryRun,
		Journal:     journal,
		Logger:      logger,
		RetryConfig: retryConfig(),
	})

	rep, err := renamer.Undo(ctx, runID)
	if rep == nil {
		return err
	}

	rows := make([][]string, 0, len(rep.Renamed)+len(rep.Skipped)+len(rep.Errors))
	for _, d := range rep.Renamed {
		rows = append(rows, []string{filepath.Base(d.OriginalPath), filepath.Base(d.NewPath), "restored"})
	}
	for _, s := range rep.Skipped {
		rows = append(rows, []string{filepath.Base(s.Path), "", s.Reason})
	}
	for _, f := range rep.Errors {
		rows = append(rows, []string{filepath.Base(f.Path), "", f.Err.Error()})
	}
	if len(rows) > 0 {
		fmt.Println(renderTable([]string{"Current name", "Restored name", "Status"}, rows, nil))
	}

	if err != nil {
		return err
	}
	if !rep.Success() {
		return fmt.Errorf("%d files could not be restored; run undo again once fixed", len(rep.Errors))
	}
	if dryRun {
		util.InfoLog("Dry run: nothing was moved")
	} else {
		util.SuccessLog("Run %s undone", rep.RunID)
	}
	return nil
}
