//go:build windows

package fsops

import (
	"os"

	"golang.org/x/sys/windows"

	"rmlong/internal/extpath"
)

type nativeFS struct{}

func (nativeFS) DeleteFile(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return &os.PathError{Op: "deletefile", Path: path, Err: err}
	}
	if err := windows.DeleteFile(p); err != nil {
		return &os.PathError{Op: "deletefile", Path: path, Err: err}
	}
	return nil
}

func (nativeFS) RemoveDirectory(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return &os.PathError{Op: "removedirectory", Path: path, Err: err}
	}
	if err := windows.RemoveDirectory(p); err != nil {
		return &os.PathError{Op: "removedirectory", Path: path, Err: err}
	}
	return nil
}

func (nativeFS) OpenDir(path string) (Cursor, error) {
	pattern, err := windows.UTF16PtrFromString(extpath.Join(path, "*"))
	if err != nil {
		return nil, &os.PathError{Op: "findfirstfile", Path: path, Err: err}
	}
	c := &findCursor{pending: true}
	c.handle, err = windows.FindFirstFile(pattern, &c.data)
	if err != nil {
		return nil, &os.PathError{Op: "findfirstfile", Path: path, Err: err}
	}
	return c, nil
}

func (nativeFS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// findCursor wraps a FindFirstFile/FindNextFile handle
type findCursor struct {
	handle  windows.Handle
	data    windows.Win32finddata
	pending bool // data holds an entry not yet returned
	done    bool
}

func (c *findCursor) Next() (Entry, bool) {
	if c.done {
		return Entry{}, false
	}
	if !c.pending {
		// ERROR_NO_MORE_FILES and real failures both end the listing
		if err := windows.FindNextFile(c.handle, &c.data); err != nil {
			c.done = true
			return Entry{}, false
		}
	}
	c.pending = false

	attrs := c.data.FileAttributes
	return Entry{
		Name:  windows.UTF16ToString(c.data.FileName[:]),
		IsDir: attrs&windows.FILE_ATTRIBUTE_DIRECTORY != 0,
		Link:  attrs&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0,
	}, true
}

func (c *findCursor) Close() error {
	c.done = true
	return windows.FindClose(c.handle)
}
