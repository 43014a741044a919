//go:build !windows

package safety

func defaultProtected() []string {
	return []string{
		"/bin",
		"/boot",
		"/dev",
		"/etc",
		"/lib",
		"/lib64",
		"/proc",
		"/sbin",
		"/sys",
		"/usr",
		"/var/lib/rmlong",
	}
}
