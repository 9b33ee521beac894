package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/cloudbuccaneer/internal/execute"
	"github.com/franz/cloudbuccaneer/internal/meta"
	"github.com/franz/cloudbuccaneer/internal/report"
	"github.com/franz/cloudbuccaneer/internal/store"
	"github.com/franz/cloudbuccaneer/internal/util"
	"github.com/gin-gonic/gin"
)

type renameRequest struct {
	Folder string `json:"folder" binding:"required"`
	DryRun bool   `json:"dry_run"`
}

type undoRequest struct {
	RunID string `json:"run_id"`
}

// handleRename renames the audio files of one folder and returns the summary
func (s *Server) handleRename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.reject(c, http.StatusBadRequest, "folder is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	renamer, closeJournal, err := s.renamer(req.DryRun)
	if err != nil {
		s.reject(c, statusFor(err), err.Error())
		return
	}
	defer closeJournal()

	start := time.Now()
	rep, err := renamer.Rename(c.Request.Context(), expandHome(req.Folder))
	if err != nil && rep == nil {
		s.reject(c, statusFor(err), err.Error())
		return
	}
	s.metrics.duration.Observe(time.Since(start).Seconds())
	s.metrics.observe(rep)

	c.JSON(http.StatusOK, rep.Summary())
}

// handleUndo reverts the last journaled batch, or the one named in the body
func (s *Server) handleUndo(c *gin.Context) {
	var req undoRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.reject(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if s.cfg.JournalPath == "" {
		s.reject(c, http.StatusNotImplemented, "undo needs a journal")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	renamer, closeJournal, err := s.renamer(false)
	if err != nil {
		s.reject(c, statusFor(err), err.Error())
		return
	}
	defer closeJournal()

	rep, err := renamer.Undo(c.Request.Context(), req.RunID)
	if err != nil && rep == nil {
		s.reject(c, statusFor(err), err.Error())
		return
	}
	c.JSON(http.StatusOK, rep.Summary())
}

// handleConfig shows the effective rename configuration
func (s *Server) handleConfig(c *gin.Context) {
	rules := s.cfg.EngineConfig.Rules
	if len(rules) == 0 {
		rules = meta.DefaultRules()
	}
	ruleList := make([]gin.H, 0, len(rules))
	for _, r := range rules {
		ruleList = append(ruleList, gin.H{"name": r.Name, "confidence": r.Confidence})
	}

	c.JSON(http.StatusOK, gin.H{
		"junk_markers":  s.engine.Markers(),
		"rules":         ruleList,
		"artist_window": s.cfg.EngineConfig.ArtistWindow,
		"ascii":         s.cfg.EngineConfig.Name.ASCIIOnly,
		"keep_track":    s.cfg.EngineConfig.Name.KeepTrack,
		"move_covers":   s.cfg.MoveCovers,
		"recursive":     s.cfg.Recursive,
		"journal":       s.cfg.JournalPath != "",
	})
}

// renamer opens the journal for the duration of one request
func (s *Server) renamer(dryRun bool) (*execute.Renamer, func(), error) {
	cfg := &execute.Config{
		Engine:      s.engine,
		Recursive:   s.cfg.Recursive,
		DryRun:      dryRun,
		MoveCovers:  s.cfg.MoveCovers,
		Logger:      s.cfg.Logger,
		RetryConfig: s.cfg.RetryConfig,
	}
	closeJournal := func() {}
	if s.cfg.JournalPath != "" {
		journal, err := store.Open(s.cfg.JournalPath)
		if err != nil {
			return nil, nil, err
		}
		cfg.Journal = journal
		closeJournal = func() {
			if err := journal.Close(); err != nil {
				util.WarnLog("Journal: %v", err)
			}
		}
	}
	return execute.New(cfg), closeJournal, nil
}

func (s *Server) reject(c *gin.Context, status int, msg string) {
	s.metrics.batches.WithLabelValues("rejected").Inc()
	c.JSON(status, report.Summary{
		Renamed: []report.RenamedEntry{},
		Skipped: []report.SkippedEntry{},
		Errors:  []report.ErrorEntry{{ErrorMessage: msg}},
		Success: false,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, util.ErrInvalidDirectory):
		return http.StatusBadRequest
	case errors.Is(err, util.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, util.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// expandHome resolves a leading "~/" the way a shell would
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
