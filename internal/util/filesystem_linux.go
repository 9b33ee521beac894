//go:build linux

package util

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// renameNoReplace uses renameat2(RENAME_NOREPLACE) so the existence check and
// the move are one kernel operation
func renameNoReplace(oldpath, newpath string) error {
	err := unix.Renameat2(unix.AT_FDCWD, oldpath, unix.AT_FDCWD, newpath, unix.RENAME_NOREPLACE)
	if err == nil {
		return nil
	}
	// Older kernels and some filesystems (e.g. certain FUSE mounts) lack the flag
	if errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EINVAL) {
		return guardedRename(oldpath, newpath)
	}
	return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
}
