//go:build !windows

package fsops

import (
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

const readDirBatch = 128

type nativeFS struct{}

func (nativeFS) DeleteFile(path string) error {
	if err := unix.Unlink(path); err != nil {
		return &os.PathError{Op: "unlink", Path: path, Err: err}
	}
	return nil
}

func (nativeFS) RemoveDirectory(path string) error {
	if err := unix.Rmdir(path); err != nil {
		return &os.PathError{Op: "rmdir", Path: path, Err: err}
	}
	return nil
}

func (nativeFS) OpenDir(path string) (Cursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.IsDir() {
		f.Close()
		return nil, &os.PathError{Op: "opendir", Path: path, Err: unix.ENOTDIR}
	}
	return &dirCursor{f: f}, nil
}

func (nativeFS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// dirCursor streams entries from an open directory in batches
type dirCursor struct {
	f     *os.File
	batch []os.DirEntry
	done  bool
}

func (c *dirCursor) Next() (Entry, bool) {
	for len(c.batch) == 0 {
		if c.done {
			return Entry{}, false
		}
		entries, err := c.f.ReadDir(readDirBatch)
		if err != nil || len(entries) == 0 {
			c.done = true
		}
		c.batch = entries
	}

	e := c.batch[0]
	c.batch = c.batch[1:]
	return Entry{
		Name:  e.Name(),
		IsDir: e.IsDir(),
		Link:  e.Type()&fs.ModeSymlink != 0,
	}, true
}

func (c *dirCursor) Close() error {
	c.done = true
	c.batch = nil
	return c.f.Close()
}
