//go:build windows

package safety

import "os"

func defaultProtected() []string {
	systemRoot := os.Getenv("SystemRoot")
	if systemRoot == "" {
		systemRoot = `C:\Windows`
	}
	out := []string{systemRoot}
	for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)", "ProgramData"} {
		if v := os.Getenv(env); v != "" {
			out = append(out, v)
		}
	}
	return out
}
