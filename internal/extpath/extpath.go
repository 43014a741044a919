// Package extpath applies the Windows extended-length path convention.
//
// Paths handed to the native delete and listing primitives may exceed
// MaxPath. Prefixing them with `\\?\` asks the platform to skip its
// ordinary length check and path normalization.
package extpath

import (
	"os"
	"strings"
)

const (
	// Prefix marks a local extended-length path.
	Prefix = `\\?\`
	// UNCPrefix marks an extended-length network path.
	UNCPrefix = `\\?\UNC\`
	// MaxPath is the length limit of ordinary path APIs.
	MaxPath = 260
)

// Long returns path in extended-length form using Windows rules.
// It is a pure string transform and behaves the same on every platform;
// path must already be absolute and clean. Escape resolves it first.
func Long(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, Prefix) {
		return path
	}
	p := strings.ReplaceAll(path, "/", `\`)
	if strings.HasPrefix(p, Prefix) {
		return p
	}
	if strings.HasPrefix(p, `\\`) {
		return UNCPrefix + strings.TrimPrefix(p, `\\`)
	}
	return Prefix + p
}

// Strip removes an extended-length prefix added by Long.
func Strip(path string) string {
	switch {
	case strings.HasPrefix(path, UNCPrefix):
		return `\\` + strings.TrimPrefix(path, UNCPrefix)
	case strings.HasPrefix(path, Prefix):
		return strings.TrimPrefix(path, Prefix)
	default:
		return path
	}
}

// IsLong reports whether path already carries an extended-length prefix.
func IsLong(path string) bool {
	return strings.HasPrefix(path, Prefix)
}

// Exceeds reports whether path is too long for ordinary path APIs.
func Exceeds(path string) bool {
	return len(Strip(path)) >= MaxPath
}

// Join appends name to dir with the platform separator.
// Unlike filepath.Join it never cleans, so prefixed paths survive intact.
func Join(dir, name string) string {
	if dir == "" {
		return name
	}
	if os.IsPathSeparator(dir[len(dir)-1]) {
		return dir + name
	}
	return dir + string(os.PathSeparator) + name
}
