package execute

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/franz/cloudbuccaneer/internal/report"
	"github.com/franz/cloudbuccaneer/internal/store"
	"github.com/franz/cloudbuccaneer/internal/util"
)

// Undo reverts a journaled run, newest move first. An empty runID selects
// the most recent run that has not been undone. Entries whose renamed file
// is gone, or whose original name is now taken, are skipped. The run is
// marked undone once every entry went back without error.
func (r *Renamer) Undo(ctx context.Context, runID string) (*report.RenameReport, error) {
	if r.journal == nil {
		return nil, fmt.Errorf("%w: undo needs a journal", util.ErrInvalidConfig)
	}

	var run *store.Run
	var err error
	if runID == "" {
		run, err = r.journal.LastRun()
	} else {
		run, err = r.journal.GetRun(runID)
	}
	if err != nil {
		return nil, err
	}
	if run.Undone() {
		return nil, fmt.Errorf("%w: run %s was already undone", util.ErrConflict, run.ID)
	}

	entries, err := r.journal.RunEntries(run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read run %s: %w", run.ID, err)
	}

	rep := &report.RenameReport{RunID: run.ID, Dir: run.Dir, DryRun: r.dryRun}
	util.InfoLog("Undoing run %s (%d moves in %s)", run.ID, len(entries), run.Dir)

	for i := len(entries) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		e := entries[i]

		if !util.Exists(e.NewPath) {
			rep.Skipped = append(rep.Skipped, report.Skip{Path: e.NewPath, Reason: report.ReasonMissing})
			util.WarnLog("Undo: %s no longer exists", e.NewPath)
			continue
		}
		if util.Exists(e.OldPath) && !util.SameFile(e.OldPath, e.NewPath) {
			rep.Skipped = append(rep.Skipped, report.Skip{Path: e.NewPath, Reason: report.ReasonOccupied})
			util.WarnLog("Undo: %s is taken, leaving %s", e.OldPath, filepath.Base(e.NewPath))
			continue
		}

		if !r.dryRun {
			err := util.Retry(r.retryConfig, func() error {
				return util.RenameNoReplace(e.NewPath, e.OldPath)
			}, "undo "+filepath.Base(e.NewPath))
			if err != nil {
				fsErr := &util.FilesystemError{Op: "undo", Path: e.NewPath, Err: err}
				rep.Errors = append(rep.Errors, report.Failure{Path: e.NewPath, Err: fsErr})
				r.logger.LogUndo(run.ID, e.NewPath, e.OldPath, fsErr)
				util.ErrorLog("Undo failed for %s: %v", filepath.Base(e.NewPath), fsErr)
				continue
			}
		}

		if e.Kind == store.KindAudio {
			rep.Renamed = append(rep.Renamed, report.Decision{OriginalPath: e.NewPath, NewPath: e.OldPath})
		}
		r.logger.LogUndo(run.ID, e.NewPath, e.OldPath, nil)
	}

	if !r.dryRun && len(rep.Errors) == 0 {
		if err := r.journal.MarkUndone(run.ID); err != nil {
			return rep, err
		}
	}
	util.InfoLog("Undo complete: %d restored, %d skipped, %d failed", rep.Count(), len(rep.Skipped), len(rep.Errors))
	return rep, nil
}
