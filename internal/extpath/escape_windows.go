//go:build windows

package extpath

import "path/filepath"

// Escape prepares path for a native delete or listing call.
// Extended-length paths bypass normalization, so path is made absolute
// and cleaned before the prefix is added.
func Escape(path string) string {
	if path == "" || IsLong(path) {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return Long(path)
}
