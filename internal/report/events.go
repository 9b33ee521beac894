package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventRename   EventType = "rename"
	EventPlan     EventType = "plan" // dry-run rename
	EventSkip     EventType = "skip"
	EventConflict EventType = "conflict"
	EventCover    EventType = "cover"
	EventUndo     EventType = "undo"
	EventError    EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// Event is one line of the audit trail
type Event struct {
	Timestamp  time.Time         `json:"ts"`
	Level      EventLevel        `json:"level"`
	Event      EventType         `json:"event"`
	RunID      string            `json:"run_id,omitempty"`
	SrcPath    string            `json:"src_path,omitempty"`
	DestPath   string            `json:"dest_path,omitempty"`
	Artist     string            `json:"artist,omitempty"`
	Title      string            `json:"title,omitempty"`
	Rule       string            `json:"rule,omitempty"`
	Confidence float64           `json:"confidence,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Error      string            `json:"error,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file. A nil *EventLogger is valid
// and discards everything.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates events-<timestamp>.jsonl in outputDir.
// Events below minLevel are dropped.
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("events-%s.jsonl", timestamp))

	// Append so two runs within the same second share one file
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

// LogRename logs a completed rename, or a planned one when dryRun is set
func (l *EventLogger) LogRename(runID string, d Decision, rule string, confidence float64, dryRun bool) error {
	event := EventRename
	if dryRun {
		event = EventPlan
	}
	return l.Log(&Event{
		Level:      LevelInfo,
		Event:      event,
		RunID:      runID,
		SrcPath:    d.OriginalPath,
		DestPath:   d.NewPath,
		Artist:     d.Artist,
		Title:      d.Title,
		Rule:       rule,
		Confidence: confidence,
	})
}

// LogSkip logs a file left untouched
func (l *EventLogger) LogSkip(runID, srcPath, reason string) error {
	level := LevelDebug
	if reason != ReasonNoOp {
		level = LevelInfo
	}
	return l.Log(&Event{
		Level:   level,
		Event:   EventSkip,
		RunID:   runID,
		SrcPath: srcPath,
		Reason:  reason,
	})
}

// LogConflict logs a collision resolved with a numeric suffix
func (l *EventLogger) LogConflict(runID, srcPath, wantedPath, chosenPath string) error {
	return l.Log(&Event{
		Level:    LevelWarning,
		Event:    EventConflict,
		RunID:    runID,
		SrcPath:  srcPath,
		DestPath: chosenPath,
		Reason:   "target exists",
		Extra: map[string]string{
			"wanted": wantedPath,
		},
	})
}

// LogCover logs a cover image moved alongside its track
func (l *EventLogger) LogCover(runID, srcPath, destPath string) error {
	return l.Log(&Event{
		Level:    LevelInfo,
		Event:    EventCover,
		RunID:    runID,
		SrcPath:  srcPath,
		DestPath: destPath,
	})
}

// LogUndo logs a reverted rename
func (l *EventLogger) LogUndo(runID, srcPath, destPath string, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level:    level,
		Event:    EventUndo,
		RunID:    runID,
		SrcPath:  srcPath,
		DestPath: destPath,
		Error:    errMsg,
	})
}

// LogError logs a per-file failure
func (l *EventLogger) LogError(runID, srcPath string, err error) error {
	return l.Log(&Event{
		Level:   LevelError,
		Event:   EventError,
		RunID:   runID,
		SrcPath: srcPath,
		Error:   err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
