package util

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// RenameNoReplace moves oldpath to newpath as a single filesystem call and
// refuses to overwrite an existing, different file at newpath. The returned
// error satisfies errors.Is(err, fs.ErrExist) when the target is taken.
func RenameNoReplace(oldpath, newpath string) error {
	err := renameNoReplace(oldpath, newpath)
	if err == nil || !errors.Is(err, fs.ErrExist) {
		return err
	}
	// Case-only renames on case-insensitive filesystems see the source as the target
	if SameFile(oldpath, newpath) {
		return os.Rename(oldpath, newpath)
	}
	return err
}

// SameFile reports whether both paths resolve to the same file on disk
func SameFile(path1, path2 string) bool {
	st1, err := os.Stat(path1)
	if err != nil {
		return false
	}
	st2, err := os.Stat(path2)
	if err != nil {
		return false
	}
	return os.SameFile(st1, st2)
}

// Exists reports whether anything (file, dir, dangling symlink) occupies path
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// guardedRename is the portable fallback: check, then rename. It leaves a
// small window between the check and the move.
func guardedRename(oldpath, newpath string) error {
	if Exists(newpath) {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EEXIST}
	}
	return os.Rename(oldpath, newpath)
}
