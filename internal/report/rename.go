package report

import (
	"encoding/json"
	"path/filepath"
)

// Skip reasons
const (
	ReasonNoOp      = "no-op"
	ReasonAmbiguous = "cannot determine name"

	// undo
	ReasonMissing  = "renamed file no longer exists"
	ReasonOccupied = "original name is taken"
)

// Decision records one file that was (or, in dry-run, would be) renamed
type Decision struct {
	OriginalPath string
	NewPath      string
	Artist       string
	Title        string
	Rule         string
	Confidence   float64
}

// Skip records a file left untouched on purpose
type Skip struct {
	Path   string
	Reason string
}

// Failure records a file the rename could not be applied to
type Failure struct {
	Path string
	Err  error
}

// RenameReport is the outcome of one batch, in processing order
type RenameReport struct {
	RunID   string
	Dir     string
	DryRun  bool
	Renamed []Decision
	Skipped []Skip
	Errors  []Failure
}

// Count returns the number of renamed files
func (r *RenameReport) Count() int {
	return len(r.Renamed)
}

// Success reports whether no file failed
func (r *RenameReport) Success() bool {
	return len(r.Errors) == 0
}

// Total returns the number of files the batch looked at
func (r *RenameReport) Total() int {
	return len(r.Renamed) + len(r.Skipped) + len(r.Errors)
}

// RenamedEntry is one element of Summary.Renamed
type RenamedEntry struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// SkippedEntry is one element of Summary.Skipped
type SkippedEntry struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ErrorEntry is one element of Summary.Errors
type ErrorEntry struct {
	Name         string `json:"name"`
	ErrorMessage string `json:"error_message"`
}

// Summary is the JSON shape returned by the API and `rename --json`.
// Names are base names; directories never leave the host.
type Summary struct {
	Renamed []RenamedEntry `json:"renamed"`
	Count   int            `json:"count"`
	Skipped []SkippedEntry `json:"skipped"`
	Errors  []ErrorEntry   `json:"errors"`
	Success bool           `json:"success"`
	DryRun  bool           `json:"dry_run,omitempty"`
	RunID   string         `json:"run_id,omitempty"`
}

// Summary converts the report to its JSON shape. Slices are never nil so
// they encode as [] rather than null.
func (r *RenameReport) Summary() Summary {
	s := Summary{
		Renamed: make([]RenamedEntry, 0, len(r.Renamed)),
		Count:   r.Count(),
		Skipped: make([]SkippedEntry, 0, len(r.Skipped)),
		Errors:  make([]ErrorEntry, 0, len(r.Errors)),
		Success: r.Success(),
		DryRun:  r.DryRun,
		RunID:   r.RunID,
	}
	for _, d := range r.Renamed {
		s.Renamed = append(s.Renamed, RenamedEntry{
			OldName: filepath.Base(d.OriginalPath),
			NewName: filepath.Base(d.NewPath),
		})
	}
	for _, sk := range r.Skipped {
		s.Skipped = append(s.Skipped, SkippedEntry{Name: filepath.Base(sk.Path), Reason: sk.Reason})
	}
	for _, f := range r.Errors {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		s.Errors = append(s.Errors, ErrorEntry{Name: filepath.Base(f.Path), ErrorMessage: msg})
	}
	return s
}

// JSON encodes the summary with indentation
func (r *RenameReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Summary(), "", "  ")
}
