package fsops

// Entry is one item yielded by a directory cursor
type Entry struct {
	Name  string
	IsDir bool
	// Link is set for symlinks, junctions and other reparse points.
	// Linked directories are removed as entries, never descended into.
	Link bool
}

// Cursor walks the entries of one open directory listing
// The "." and ".." pseudo-entries may be yielded; callers skip them
type Cursor interface {
	Next() (Entry, bool)
	Close() error
}

// FS abstracts the native delete and listing primitives
// Paths passed in are expected to be escaped with extpath.Escape already,
// except for Exists which takes the ordinary form
type FS interface {
	DeleteFile(path string) error
	RemoveDirectory(path string) error
	OpenDir(path string) (Cursor, error)
	Exists(path string) bool
}

// Native returns the platform implementation of FS
func Native() FS {
	return nativeFS{}
}
