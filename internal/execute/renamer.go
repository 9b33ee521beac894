package execute

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/franz/cloudbuccaneer/internal/meta"
	"github.com/franz/cloudbuccaneer/internal/report"
	"github.com/franz/cloudbuccaneer/internal/scan"
	"github.com/franz/cloudbuccaneer/internal/store"
	"github.com/franz/cloudbuccaneer/internal/util"
)

// maxSuffix bounds the " (N)" search for a free name
const maxSuffix = 9999

// Renamer applies engine decisions to a directory of audio files
type Renamer struct {
	engine      *meta.Engine
	scanner     *scan.Scanner
	dryRun      bool
	moveCovers  bool
	journal     *store.Store
	logger      *report.EventLogger
	retryConfig *util.RetryConfig
	progress    func(done, total int)
}

// Config holds renamer configuration
type Config struct {
	Engine      *meta.Engine // nil = built-in rules and junk markers
	Recursive   bool
	DryRun      bool
	MoveCovers  bool                  // carry "<stem>.jpg" and friends along
	Journal     *store.Store          // nil = no undo journal
	Logger      *report.EventLogger   // nil = no audit trail
	RetryConfig *util.RetryConfig     // nil = single attempt
	Progress    func(done, total int) // called after every file
}

// New creates a new Renamer
func New(cfg *Config) *Renamer {
	if cfg == nil {
		cfg = &Config{}
	}
	engine := cfg.Engine
	if engine == nil {
		var err error
		engine, err = meta.NewEngine(meta.DefaultEngineConfig())
		if err != nil {
			panic(fmt.Sprintf("built-in engine config is invalid: %v", err))
		}
	}
	retryConfig := cfg.RetryConfig
	if retryConfig == nil {
		retryConfig = util.SingleAttempt()
	}

	return &Renamer{
		engine:      engine,
		scanner:     scan.New(&scan.Config{Recursive: cfg.Recursive}),
		dryRun:      cfg.DryRun,
		moveCovers:  cfg.MoveCovers,
		journal:     cfg.Journal,
		logger:      cfg.Logger,
		retryConfig: retryConfig,
		progress:    cfg.Progress,
	}
}

// batch is the state shared by the files of one Rename call
type batch struct {
	runID   string
	report  *report.RenameReport
	claimed map[string]bool // targets handed out so far
}

// Rename normalizes every audio filename in dir. Per-file problems land in
// the report; the error is non-nil only for an invalid dir (nil report) or
// a cancelled ctx (partial report, completed renames stay).
func (r *Renamer) Rename(ctx context.Context, dir string) (*report.RenameReport, error) {
	scanned, err := r.scanner.Scan(ctx, dir)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &report.RenameReport{Dir: dir, DryRun: r.dryRun}, ctxErr
		}
		return nil, err
	}

	b := &batch{
		report:  &report.RenameReport{Dir: dir, DryRun: r.dryRun},
		claimed: make(map[string]bool),
	}
	for _, scanErr := range scanned.Errors {
		b.report.Errors = append(b.report.Errors, report.Failure{Path: dir, Err: scanErr})
	}

	if r.journal != nil && !r.dryRun {
		run, err := r.journal.BeginRun(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to start journal run: %w", err)
		}
		b.runID = run.ID
		b.report.RunID = run.ID
	}

	total := len(scanned.Files)
	util.InfoLog("Renaming %d audio files in %s", total, dir)
	if r.dryRun {
		util.InfoLog("DRY-RUN mode: no files will be renamed")
	}

	for i, path := range scanned.Files {
		if err := ctx.Err(); err != nil {
			r.finish(b)
			return b.report, err
		}
		r.renameFile(b, path)
		if r.progress != nil {
			r.progress(i+1, total)
		}
	}

	r.finish(b)
	return b.report, nil
}

func (r *Renamer) finish(b *batch) {
	rep := b.report
	if b.runID != "" {
		if err := r.journal.FinishRun(b.runID, rep.Count(), len(rep.Skipped), len(rep.Errors)); err != nil {
			util.WarnLog("Journal: %v", err)
		}
	}
	util.InfoLog("Rename complete: %d renamed, %d skipped, %d failed", rep.Count(), len(rep.Skipped), len(rep.Errors))
}

// renameFile runs the pipeline for one file and records the outcome
func (r *Renamer) renameFile(b *batch, src string) {
	dir := filepath.Dir(src)
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	ext = strings.ToLower(ext)

	res, err := r.engine.Resolve(stem)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, util.ErrAmbiguousName) {
			reason = report.ReasonAmbiguous
		}
		r.skip(b, src, reason)
		return
	}

	if meta.FitFilename(res.Stem, "", ext) == base {
		b.claimed[src] = true
		r.skip(b, src, report.ReasonNoOp)
		return
	}

	// Look the cover up before the audio file moves away from it
	cover := ""
	if r.moveCovers {
		cover = scan.FindCover(src)
	}

	wanted := filepath.Join(dir, meta.FitFilename(res.Stem, "", ext))
	var dest string
	for {
		dest, err = r.freeTarget(b, src, res.Stem, ext)
		if err != nil {
			r.fail(b, src, &util.FilesystemError{Op: "rename", Path: src, Err: err})
			return
		}
		if dest == src {
			b.claimed[src] = true
			r.skip(b, src, report.ReasonNoOp)
			return
		}
		if r.dryRun {
			break
		}

		err = util.Retry(r.retryConfig, func() error {
			return util.RenameNoReplace(src, dest)
		}, "rename "+base)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			r.fail(b, src, &util.FilesystemError{Op: "rename", Path: src, Err: err})
			return
		}
		// Lost a race for dest; try the next suffix
		util.DebugLog("Rename: %s appeared while renaming %s", dest, base)
		b.claimed[dest] = true
	}
	b.claimed[dest] = true

	if dest != wanted {
		util.WarnLog("Name taken, using %s for %s", filepath.Base(dest), base)
		r.logger.LogConflict(b.runID, src, wanted, dest)
	}

	decision := report.Decision{
		OriginalPath: src,
		NewPath:      dest,
		Artist:       res.Chosen.Artist,
		Title:        res.Chosen.Title,
		Rule:         res.Chosen.Rule,
		Confidence:   res.Chosen.Confidence,
	}
	b.report.Renamed = append(b.report.Renamed, decision)
	r.logger.LogRename(b.runID, decision, res.Chosen.Rule, res.Chosen.Confidence, r.dryRun)
	util.DebugLog("Rename: %s -> %s (%s, %.2f)", base, filepath.Base(dest), res.Chosen.Rule, res.Chosen.Confidence)

	if b.runID != "" {
		if err := r.journal.RecordRename(b.runID, store.KindAudio, src, dest); err != nil {
			util.WarnLog("Journal: %v", err)
		}
	}

	if cover != "" {
		r.moveCover(b, cover, dest)
	}
}

// freeTarget returns the first of "stem.ext", "stem (2).ext", ... that is
// neither on disk (as a different file) nor claimed earlier in the batch.
// It returns src itself when src already carries a candidate name.
func (r *Renamer) freeTarget(b *batch, src, stem, ext string) (string, error) {
	dir := filepath.Dir(src)
	for n := 1; n <= maxSuffix; n++ {
		suffix := ""
		if n > 1 {
			suffix = fmt.Sprintf(" (%d)", n)
		}
		candidate := filepath.Join(dir, meta.FitFilename(stem, suffix, ext))
		if candidate == src {
			return src, nil
		}
		if b.claimed[candidate] {
			continue
		}
		if util.Exists(candidate) && !util.SameFile(candidate, src) {
			continue
		}
		return candidate, nil
	}
	return "", fmt.Errorf("%w: no free name for %s", util.ErrConflict, stem+ext)
}

// moveCover renames a sibling image to follow its audio file
func (r *Renamer) moveCover(b *batch, cover, audioDest string) {
	ext := strings.ToLower(filepath.Ext(cover))
	stem := strings.TrimSuffix(filepath.Base(audioDest), filepath.Ext(audioDest))

	var dest string
	var err error
	for {
		dest, err = r.freeTarget(b, cover, stem, ext)
		if err != nil || dest == cover || r.dryRun {
			break
		}
		err = util.Retry(r.retryConfig, func() error {
			return util.RenameNoReplace(cover, dest)
		}, "rename "+filepath.Base(cover))
		if !errors.Is(err, fs.ErrExist) {
			break
		}
		b.claimed[dest] = true
	}
	if err != nil {
		r.fail(b, cover, &util.FilesystemError{Op: "rename", Path: cover, Err: err})
		return
	}
	if dest == cover {
		return
	}
	b.claimed[dest] = true

	r.logger.LogCover(b.runID, cover, dest)
	util.DebugLog("Cover: %s -> %s", filepath.Base(cover), filepath.Base(dest))
	if b.runID != "" {
		if err := r.journal.RecordRename(b.runID, store.KindCover, cover, dest); err != nil {
			util.WarnLog("Journal: %v", err)
		}
	}
}

func (r *Renamer) skip(b *batch, path, reason string) {
	b.report.Skipped = append(b.report.Skipped, report.Skip{Path: path, Reason: reason})
	r.logger.LogSkip(b.runID, path, reason)
	if reason != report.ReasonNoOp {
		util.DebugLog("Skip: %s (%s)", filepath.Base(path), reason)
	}
}

func (r *Renamer) fail(b *batch, path string, err error) {
	b.report.Errors = append(b.report.Errors, report.Failure{Path: path, Err: err})
	r.logger.LogError(b.runID, path, err)
	util.ErrorLog("Failed to rename %s: %v", filepath.Base(path), err)
}
