package util

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Sentinel errors for the rename pipeline
var (
	// ErrAmbiguousName means no usable artist/title could be derived from a filename.
	// The file is skipped, not counted as a failure.
	ErrAmbiguousName = errors.New("cannot determine name")

	// ErrInvalidDirectory indicates the top-level input is missing or not a directory
	ErrInvalidDirectory = errors.New("invalid directory")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConflict indicates the rename target was taken concurrently
	ErrConflict = errors.New("destination conflict")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")
)

// FSErrorKind classifies a failed filesystem call
type FSErrorKind string

const (
	FSPermission  FSErrorKind = "permission"
	FSNameTooLong FSErrorKind = "path-too-long"
	FSCrossDevice FSErrorKind = "cross-device"
	FSNotExist    FSErrorKind = "not-exist"
	FSOther       FSErrorKind = "other"
)

// FilesystemError records a per-file filesystem failure. It never aborts a batch.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %s (%s)", e.Op, e.Path, rootCause(e.Err), e.Kind())
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// Kind classifies the underlying error
func (e *FilesystemError) Kind() FSErrorKind {
	switch {
	case errors.Is(e.Err, fs.ErrPermission):
		return FSPermission
	case errors.Is(e.Err, syscall.ENAMETOOLONG):
		return FSNameTooLong
	case errors.Is(e.Err, syscall.EXDEV):
		return FSCrossDevice
	case errors.Is(e.Err, fs.ErrNotExist):
		return FSNotExist
	default:
		return FSOther
	}
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
