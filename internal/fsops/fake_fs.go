package fsops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rmlong/internal/extpath"
)

// ErrNotEmpty is returned by FakeFS when removing a directory with children
var ErrNotEmpty = errors.New("directory not empty")

// FakeFS implements FS in memory for testing
// Records every call and counts cursor opens/closes so tests can prove
// handles are always released. Paths are stored without any
// extended-length prefix, so escaped and plain forms address the same node.
type FakeFS struct {
	Calls  []string
	Opened int
	Closed int

	nodes  map[string]bool // path -> isDir
	locked map[string]bool
	denied map[string]bool
}

// NewFakeFS creates an empty in-memory filesystem
func NewFakeFS() *FakeFS {
	return &FakeFS{
		nodes:  make(map[string]bool),
		locked: make(map[string]bool),
		denied: make(map[string]bool),
	}
}

// MkdirAll creates a directory and any missing parents
func (f *FakeFS) MkdirAll(path string) {
	path = extpath.Strip(path)
	for p := path; p != ""; p = parentOf(p) {
		if _, ok := f.nodes[p]; ok {
			break
		}
		f.nodes[p] = true
	}
}

// WriteFile creates a file, creating parent directories as needed
func (f *FakeFS) WriteFile(path string) {
	path = extpath.Strip(path)
	if parent := parentOf(path); parent != "" {
		f.MkdirAll(parent)
	}
	f.nodes[path] = false
}

// Lock makes DeleteFile and RemoveDirectory fail for path
func (f *FakeFS) Lock(path string) {
	f.locked[extpath.Strip(path)] = true
}

// Deny makes OpenDir fail for path, as for an unreadable directory
func (f *FakeFS) Deny(path string) {
	f.denied[extpath.Strip(path)] = true
}

// Has reports whether path is present
func (f *FakeFS) Has(path string) bool {
	_, ok := f.nodes[extpath.Strip(path)]
	return ok
}

// Paths returns every stored path in sorted order
func (f *FakeFS) Paths() []string {
	out := make([]string, 0, len(f.nodes))
	for p := range f.nodes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (f *FakeFS) DeleteFile(path string) error {
	path = extpath.Strip(path)
	f.Calls = append(f.Calls, "rmfile:"+path)

	isDir, ok := f.nodes[path]
	switch {
	case !ok:
		return &os.PathError{Op: "deletefile", Path: path, Err: fs.ErrNotExist}
	case isDir:
		return &os.PathError{Op: "deletefile", Path: path, Err: fmt.Errorf("is a directory")}
	case f.locked[path]:
		return &os.PathError{Op: "deletefile", Path: path, Err: fs.ErrPermission}
	}
	delete(f.nodes, path)
	return nil
}

func (f *FakeFS) RemoveDirectory(path string) error {
	path = extpath.Strip(path)
	f.Calls = append(f.Calls, "rmdir:"+path)

	isDir, ok := f.nodes[path]
	switch {
	case !ok:
		return &os.PathError{Op: "removedirectory", Path: path, Err: fs.ErrNotExist}
	case !isDir:
		return &os.PathError{Op: "removedirectory", Path: path, Err: fmt.Errorf("not a directory")}
	case f.locked[path]:
		return &os.PathError{Op: "removedirectory", Path: path, Err: fs.ErrPermission}
	case len(f.children(path)) > 0:
		return &os.PathError{Op: "removedirectory", Path: path, Err: ErrNotEmpty}
	}
	delete(f.nodes, path)
	return nil
}

func (f *FakeFS) OpenDir(path string) (Cursor, error) {
	path = extpath.Strip(path)
	f.Calls = append(f.Calls, "open:"+path)

	isDir, ok := f.nodes[path]
	if !ok || !isDir {
		return nil, &os.PathError{Op: "opendir", Path: path, Err: fs.ErrNotExist}
	}
	if f.denied[path] {
		return nil, &os.PathError{Op: "opendir", Path: path, Err: fs.ErrPermission}
	}

	// Mimic FindFirstFile, which reports the pseudo-entries first
	entries := []Entry{{Name: ".", IsDir: true}, {Name: "..", IsDir: true}}
	for _, child := range f.children(path) {
		entries = append(entries, Entry{
			Name:  child[len(path)+1:],
			IsDir: f.nodes[child],
		})
	}
	f.Opened++
	return &fakeCursor{fs: f, entries: entries}, nil
}

func (f *FakeFS) Exists(path string) bool {
	return f.Has(path)
}

// children returns the direct children of dir in sorted order
func (f *FakeFS) children(dir string) []string {
	var out []string
	for p := range f.nodes {
		if p != dir && parentOf(p) == dir {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// parentOf returns "" at the top of a relative path or just below a volume root
func parentOf(path string) string {
	idx := strings.LastIndexByte(path, os.PathSeparator)
	if idx <= len(filepath.VolumeName(path)) {
		return ""
	}
	return path[:idx]
}

type fakeCursor struct {
	fs      *FakeFS
	entries []Entry
	closed  bool
}

func (c *fakeCursor) Next() (Entry, bool) {
	if c.closed || len(c.entries) == 0 {
		return Entry{}, false
	}
	e := c.entries[0]
	c.entries = c.entries[1:]
	return e, true
}

func (c *fakeCursor) Close() error {
	if c.closed {
		return errors.New("cursor already closed")
	}
	c.closed = true
	c.fs.Closed++
	return nil
}
