//go:build !linux

package util

func renameNoReplace(oldpath, newpath string) error {
	return guardedRename(oldpath, newpath)
}
