package safety

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"rmlong/internal/extpath"
)

var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrProtectedPath  = errors.New("protected path")
	ErrOutsideAllowed = errors.New("outside allowed roots")
	ErrTraversal      = errors.New("path traversal detected")
	ErrSymlinkEscape  = errors.New("symlink escape detected")
)

// Validator decides whether a removal target may be touched.
// Extended-length prefixes are stripped before any check.
type Validator struct {
	AllowedRoots   []string // empty means no root restriction
	ProtectedPaths []string
}

// NewValidator creates a validator with optional allowed roots and extra protected paths
func NewValidator(allowed []string, extraProtected []string) *Validator {
	return &Validator{
		AllowedRoots:   normalizeRoots(allowed),
		ProtectedPaths: append(defaultProtected(), normalizeRoots(extraProtected)...),
	}
}

// ValidateDeleteTarget returns a typed error when path must not be removed
func (v *Validator) ValidateDeleteTarget(path string) error {
	raw := extpath.Strip(path)

	p, err := NormalizePath(raw)
	if err != nil {
		return err
	}

	if DetectTraversal(raw) {
		return ErrTraversal
	}

	if IsProtectedPath(p, v.ProtectedPaths) {
		return ErrProtectedPath
	}

	if len(v.AllowedRoots) == 0 {
		return nil
	}

	if !IsWithinAllowedRoots(p, v.AllowedRoots) {
		return ErrOutsideAllowed
	}

	escaped, err := DetectSymlinkEscape(p, v.AllowedRoots)
	if err != nil {
		// a missing target has nothing to escape through
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if escaped {
		return ErrSymlinkEscape
	}

	return nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	return filepath.Clean(abs), nil
}

// DetectTraversal reports any ".." segment in raw input
func DetectTraversal(raw string) bool {
	raw = strings.ReplaceAll(raw, `\`, "/")
	for _, part := range strings.Split(raw, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// IsWithinAllowedRoots checks if path is within any allowed root
func IsWithinAllowedRoots(path string, allowedRoots []string) bool {
	p := filepath.Clean(path)
	for _, r := range allowedRoots {
		if hasPathPrefix(p, r) {
			return true
		}
	}
	return false
}

// DetectSymlinkEscape resolves symlinks and reports whether the target leaves the allowed roots
func DetectSymlinkEscape(cleanAbs string, allowedRoots []string) (bool, error) {
	resolved, err := filepath.EvalSymlinks(cleanAbs)
	if err != nil {
		return false, err
	}
	resolvedAbs, err := filepath.Abs(resolved)
	if err != nil {
		return false, err
	}

	// roots may themselves sit behind symlinks (e.g. /tmp on macOS)
	roots := make([]string, 0, len(allowedRoots)*2)
	for _, r := range allowedRoots {
		roots = append(roots, r)
		if rr, err := filepath.EvalSymlinks(r); err == nil {
			roots = append(roots, rr)
		}
	}
	return !IsWithinAllowedRoots(resolvedAbs, roots), nil
}

// IsProtectedPath reports whether path is a filesystem root or inside a protected path
func IsProtectedPath(path string, protected []string) bool {
	p := filepath.Clean(path)

	if isVolumeRoot(p) {
		return true
	}

	for _, prot := range protected {
		if hasPathPrefix(p, prot) {
			return true
		}
	}
	return false
}

func isVolumeRoot(p string) bool {
	return filepath.Dir(p) == p
}

// hasPathPrefix reports whether path equals prefix or lies beneath it
func hasPathPrefix(path, prefix string) bool {
	path = filepath.Clean(path)
	prefix = filepath.Clean(prefix)

	if path == prefix {
		return true
	}
	if isVolumeRoot(prefix) {
		return strings.HasPrefix(path, prefix)
	}
	return strings.HasPrefix(path, prefix+string(os.PathSeparator))
}

// normalizeRoots converts roots to absolute, cleaned paths
func normalizeRoots(roots []string) []string {
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		r = extpath.Strip(r)
		if strings.TrimSpace(r) == "" {
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		out = append(out, filepath.Clean(abs))
	}
	return out
}
