//go:build !windows

package extpath

// Escape prepares path for a native delete or listing call.
// Non-Windows kernels have no extended-length convention, so path is
// returned as is.
func Escape(path string) string {
	return path
}
