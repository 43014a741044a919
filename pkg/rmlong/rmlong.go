// Package rmlong removes files and directory trees whose paths may be
// longer than the traditional 260 character limit.
//
// Every path handed to the operating system carries the extended-length
// prefix on Windows; other platforms receive the path unchanged.
package rmlong

import (
	"rmlong/internal/extpath"
	"rmlong/internal/fsops"
	"rmlong/internal/remover"
	"rmlong/internal/walk"
)

// RemoveLongPathFile deletes a single file and reports whether the
// operating system accepted the request.
func RemoveLongPathFile(path string) bool {
	return remover.New(fsops.Native()).RemoveFile(path)
}

// RemoveLongPathTree deletes path and everything beneath it. Individual
// failures are skipped; the result is true when path no longer exists.
// A path that did not exist to begin with yields true.
func RemoveLongPathTree(path string) bool {
	return remover.New(fsops.Native()).RemoveTree(path)
}

// FindFilesAndDirs lists every file and directory beneath path. An
// unreadable or missing path yields two empty lists.
func FindFilesAndDirs(path string) (files, dirs []string) {
	res := walk.Enumerate(fsops.Native(), extpath.Escape(path))
	return res.Files, res.Dirs
}
