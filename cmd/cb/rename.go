package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/franz/cloudbuccaneer/internal/execute"
	"github.com/franz/cloudbuccaneer/internal/meta"
	"github.com/franz/cloudbuccaneer/internal/report"
	"github.com/franz/cloudbuccaneer/internal/store"
	"github.com/franz/cloudbuccaneer/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renameCmd = &cobra.Command{
	Use:   "rename [dir]",
	Short: "Normalize audio filenames to \"Artist - Title\"",
	Long: `Normalize the filenames of the audio files in a directory (default: current).

For every file the name is cleaned of download junk, matched against the known
filename shapes and the most confident artist/title reading wins:

  01 - The Weeknd - Blinding Lights.mp3        -> The Weeknd - Blinding Lights.mp3
  Stay (feat. Kid LAROI) [Official Audio].mp3  -> Kid LAROI - Stay.mp3

Nothing is overwritten: a taken name gets " (2)", " (3)", ... appended.
Without --apply the command only shows what it would do.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRename,
}

func init() {
	renameCmd.Flags().Bool("apply", false, "rename the files (default is a dry run)")
	renameCmd.Flags().Bool("json", false, "print the JSON summary instead of tables")
	renameCmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories")
	renameCmd.Flags().Bool("ascii", false, "fold accents and drop non-ASCII characters")
	renameCmd.Flags().Bool("keep-track", false, "keep a detected track number as \"NN - \" prefix")
	renameCmd.Flags().Bool("move-covers", false, "rename cover images sharing the audio file's name")
	renameCmd.Flags().Float64("artist-window", meta.DefaultArtistWindow, "confidence gap an artist-bearing reading may trail by (negative disables)")

	viper.BindPFlag("rename.recursive", renameCmd.Flags().Lookup("recursive"))
	viper.BindPFlag("rename.ascii", renameCmd.Flags().Lookup("ascii"))
	viper.BindPFlag("rename.keep_track", renameCmd.Flags().Lookup("keep-track"))
	viper.BindPFlag("rename.move_covers", renameCmd.Flags().Lookup("move-covers"))
	viper.BindPFlag("rename.artist_window", renameCmd.Flags().Lookup("artist-window"))

	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	apply, _ := cmd.Flags().GetBool("apply")
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		// keep stdout clean for the summary
		util.SetQuiet(true)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engineCfg, err := engineConfig()
	if err != nil {
		return err
	}
	engine, err := meta.NewEngine(engineCfg)
	if err != nil {
		return err
	}

	var journal *store.Store
	if dbPath := viper.GetString("db"); apply && dbPath != "" {
		journal, err = store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer journal.Close()
	}

	logger := eventLogger()
	defer logger.Close()

	progress, finishProgress := newProgress(!asJSON)
	renamer := execute.New(&execute.Config{
		Engine:      engine,
		Recursive:   viper.GetBool("rename.recursive"),
		DryRun:      !apply,
		MoveCovers:  viper.GetBool("rename.move_covers"),
		Journal:     journal,
		Logger:      logger,
		RetryConfig: retryConfig(),
		Progress:    progress,
	})

	startTime := time.Now()
	rep, err := renamer.Rename(ctx, dir)
	finishProgress()
	if rep == nil {
		return err
	}
	if err != nil {
		util.WarnLog("Interrupted: %v", err)
	}

	if asJSON {
		data, jsonErr := rep.JSON()
		if jsonErr != nil {
			return fmt.Errorf("failed to encode summary: %w", jsonErr)
		}
		fmt.Println(string(data))
	} else {
		printRenameReport(rep, time.Since(startTime))
	}

	if err != nil {
		return err
	}
	if !rep.Success() {
		return fmt.Errorf("%d of %d files failed", len(rep.Errors), rep.Total())
	}
	return nil
}

// newProgress returns a Progress callback drawing a bar on terminals, and a
// function that clears it
func newProgress(enabled bool) (func(done, total int), func()) {
	if !enabled || !util.StdoutIsTerminal() || util.IsQuiet() {
		return nil, func() {}
	}

	var bar *progressbar.ProgressBar
	update := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Renaming"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetItsString("files"),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Set(done)
	}
	finish := func() {
		if bar != nil {
			bar.Finish()
		}
	}
	return update, finish
}

func printRenameReport(rep *report.RenameReport, elapsed time.Duration) {
	if len(rep.Renamed) > 0 {
		rows := make([][]string, 0, len(rep.Renamed))
		for _, d := range rep.Renamed {
			rows = append(rows, []string{
				filepath.Base(d.OriginalPath),
				filepath.Base(d.NewPath),
				d.Rule,
				strconv.FormatFloat(d.Confidence, 'f', 2, 64),
			})
		}
		fmt.Println(renderTable(
			[]string{"Current name", "New name", "Rule", "Conf"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
		))
	}

	var problems [][]string
	for _, s := range rep.Skipped {
		if s.Reason != report.ReasonNoOp {
			problems = append(problems, []string{filepath.Base(s.Path), "skipped", s.Reason})
		}
	}
	for _, f := range rep.Errors {
		problems = append(problems, []string{filepath.Base(f.Path), "failed", f.Err.Error()})
	}
	if len(problems) > 0 {
		fmt.Println(renderTable([]string{"File", "Status", "Reason"}, problems, nil))
	}

	verb := "Renamed"
	if rep.DryRun {
		verb = "Would rename"
	}
	util.SuccessLog("%s %d of %d files (%d skipped, %d failed) in %v",
		verb, rep.Count(), rep.Total(), len(rep.Skipped), len(rep.Errors), elapsed.Round(time.Millisecond))
	if rep.DryRun && rep.Count() > 0 {
		util.InfoLog("Dry run: re-run with --apply to rename")
	}
	if rep.RunID != "" {
		util.InfoLog("Run %s recorded; `cb undo` reverts it", rep.RunID)
	}
}
