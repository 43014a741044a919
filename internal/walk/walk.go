// Package walk enumerates directory trees through an fsops.FS.
package walk

import (
	"rmlong/internal/extpath"
	"rmlong/internal/fsops"
)

// Result holds every descendant of an enumerated root.
// Both slices are in traversal order; Dirs is not sorted by depth.
type Result struct {
	Files []string
	Dirs  []string
}

// Enumerate lists every file and directory beneath root, depth first.
// A root that cannot be opened is treated as an empty subtree, so the
// result is whatever was gathered before the failure. root itself is
// never part of the result.
func Enumerate(fsys fsops.FS, root string) Result {
	var res Result

	cur, err := fsys.OpenDir(root)
	if err != nil {
		return res
	}
	defer cur.Close()

	for {
		entry, ok := cur.Next()
		if !ok {
			break
		}
		if entry.Name == "." || entry.Name == ".." {
			continue
		}

		full := extpath.Join(root, entry.Name)
		if !entry.IsDir {
			res.Files = append(res.Files, full)
			continue
		}

		res.Dirs = append(res.Dirs, full)
		if entry.Link {
			// junction or directory symlink: removed as an entry, not followed
			continue
		}
		child := Enumerate(fsys, full)
		res.Files = append(res.Files, child.Files...)
		res.Dirs = append(res.Dirs, child.Dirs...)
	}

	return res
}

// Count returns the number of entries in r.
func (r Result) Count() int {
	return len(r.Files) + len(r.Dirs)
}
