package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmlong/internal/database"
	"rmlong/internal/exitcodes"
	"rmlong/internal/fsops"
)

type env struct {
	allowed string
	dbPath  string
	config  string
}

func newEnv(t *testing.T) env {
	t.Helper()

	dir := t.TempDir()
	e := env{
		allowed: filepath.Join(dir, "work"),
		dbPath:  filepath.Join(dir, "history.db"),
		config:  filepath.Join(dir, "rmlong.yaml"),
	}
	require.NoError(t, os.MkdirAll(e.allowed, 0755))

	yml := fmt.Sprintf("allowed_roots:\n  - '%s'\ndatabase_path: '%s'\nlogging:\n  level: error\n", e.allowed, e.dbPath)
	require.NoError(t, os.WriteFile(e.config, []byte(yml), 0644))
	return e
}

func (e env) tree(t *testing.T, name string) string {
	t.Helper()

	root := filepath.Join(e.allowed, name)
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(deep, "x.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "y.txt"), []byte("y"), 0644))
	return root
}

func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRootCmdSetup(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "rmlong", cmd.Use)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"tree", "file", "ls", "history", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "dry-run", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	code, out, _ := execute("version")
	assert.Equal(t, exitcodes.Success, code)
	assert.Contains(t, out, "rmlong version dev")
}

func TestTreeCommandRemoves(t *testing.T) {
	e := newEnv(t)
	root := e.tree(t, "build")

	code, out, errOut := execute("--config", e.config, "tree", root)
	require.Equal(t, exitcodes.Success, code, errOut)
	assert.Contains(t, out, "REMOVED")
	assert.NoDirExists(t, root)
}

func TestTreeCommandJSON(t *testing.T) {
	e := newEnv(t)
	root := e.tree(t, "build")
	missing := filepath.Join(e.allowed, "missing")

	code, out, _ := execute("--config", e.config, "tree", "--json", root, missing)
	require.Equal(t, exitcodes.Success, code)

	var results []treeResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.True(t, results[0].Removed)
	assert.Equal(t, 2, results[0].FilesRemoved)
	assert.Equal(t, 4, results[0].DirsRemoved)
	assert.True(t, results[1].Removed, "missing trees count as removed")
}

func TestTreeCommandDryRun(t *testing.T) {
	e := newEnv(t)
	root := e.tree(t, "build")

	code, out, _ := execute("--config", e.config, "--dry-run", "tree", root)
	assert.Equal(t, exitcodes.Success, code)
	assert.Contains(t, out, "DRY RUN")
	assert.DirExists(t, root)
}

func TestTreeCommandRejected(t *testing.T) {
	e := newEnv(t)
	outside := t.TempDir()

	code, out, errOut := execute("--config", e.config, "tree", outside)
	assert.Equal(t, exitcodes.SafetyViolation, code)
	assert.Contains(t, out, "REJECTED")
	assert.Contains(t, errOut, "outside allowed roots")
	assert.DirExists(t, outside)
}

func TestTreeCommandIncomplete(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs POSIX permissions enforced for the current user")
	}

	e := newEnv(t)
	root := e.tree(t, "build")
	locked := filepath.Join(root, "a", "b")
	require.NoError(t, os.Chmod(locked, 0555))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	code, out, _ := execute("--config", e.config, "tree", root)
	assert.Equal(t, exitcodes.Incomplete, code)
	assert.Contains(t, out, "INCOMPLETE")
	assert.NoFileExists(t, filepath.Join(root, "y.txt"))
	assert.DirExists(t, filepath.Join(locked, "c"))
}

func TestTreeCommandIncompleteExitCode(t *testing.T) {
	e := newEnv(t)
	root := filepath.Join(e.allowed, "build")
	keep := filepath.Join(root, "in-use.dll")
	gone := filepath.Join(root, "sub", "obj.o")

	f := fsops.NewFakeFS()
	f.WriteFile(keep)
	f.WriteFile(gone)
	f.Lock(keep)

	openFS = func() fsops.FS { return f }
	t.Cleanup(func() { openFS = fsops.Native })

	code, out, errOut := execute("--config", e.config, "tree", root)
	assert.Equal(t, exitcodes.Incomplete, code)
	assert.Contains(t, out, "INCOMPLETE")
	assert.Contains(t, errOut, "1 of 1 trees not fully removed")
	assert.True(t, f.Has(keep))
	assert.False(t, f.Has(gone))
	assert.False(t, f.Has(filepath.Join(root, "sub")))

	code, out, _ = execute("--config", e.config, "file", keep)
	assert.Equal(t, exitcodes.Incomplete, code)
	assert.Contains(t, out, "FAILED")
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dir_order: sideways\n"), 0644))

	code, _, errOut := execute("--config", path, "tree", t.TempDir())
	assert.Equal(t, exitcodes.InvalidConfig, code)
	assert.NotEmpty(t, errOut)

	code, _, _ = execute("--config", filepath.Join(t.TempDir(), "missing.yaml"), "tree", "x")
	assert.Equal(t, exitcodes.InvalidConfig, code)

	e := newEnv(t)
	code, _, _ = execute("--config", e.config, "--log-level", "loud", "tree", "x")
	assert.Equal(t, exitcodes.InvalidConfig, code)
}

func TestFileCommand(t *testing.T) {
	e := newEnv(t)
	file := filepath.Join(e.allowed, "one.txt")
	require.NoError(t, os.WriteFile(file, []byte("1"), 0644))

	code, out, _ := execute("--config", e.config, "file", file)
	assert.Equal(t, exitcodes.Success, code)
	assert.Contains(t, out, "REMOVED")
	assert.NoFileExists(t, file)

	code, out, _ = execute("--config", e.config, "file", file)
	assert.Equal(t, exitcodes.Incomplete, code)
	assert.Contains(t, out, "FAILED")
}

func TestListCommand(t *testing.T) {
	e := newEnv(t)
	root := e.tree(t, "build")

	code, out, _ := execute("ls", "--json", root)
	require.Equal(t, exitcodes.Success, code)

	var l listing
	require.NoError(t, json.Unmarshal([]byte(out), &l))
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "a", "b", "c", "x.txt"),
		filepath.Join(root, "y.txt"),
	}, l.Files)
	assert.Equal(t, []string{
		filepath.Join(root, "a", "b", "c"),
		filepath.Join(root, "a", "b"),
		filepath.Join(root, "a"),
	}, l.Dirs)

	code, out, _ = execute("ls", "--order", "topological", root)
	require.Equal(t, exitcodes.Success, code)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "2 files, 3 directories"), out)

	code, _, _ = execute("ls", "--order", "random", root)
	assert.Equal(t, exitcodes.InvalidConfig, code)
}

func TestHistoryCommand(t *testing.T) {
	e := newEnv(t)
	root := e.tree(t, "build")

	code, _, _ := execute("--config", e.config, "tree", root)
	require.Equal(t, exitcodes.Success, code)

	code, out, _ := execute("--config", e.config, "history", "--json", "--root", root)
	require.Equal(t, exitcodes.Success, code)

	var records []database.RemovalRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Len(t, records, 6)
	for _, r := range records {
		assert.Equal(t, database.ActionDelete, r.Action)
	}

	code, out, _ = execute("history", "--db", e.dbPath, "--stats", "--days", "1")
	require.Equal(t, exitcodes.Success, code)
	assert.Contains(t, out, "Removed:   6")

	code, out, _ = execute("history", "--db", e.dbPath, "--action", database.ActionError)
	require.Equal(t, exitcodes.Success, code)
	assert.Contains(t, out, "No records found")
}

func TestHistoryWithoutDatabase(t *testing.T) {
	t.Setenv(configEnv, "")

	code, _, errOut := execute("history")
	assert.Equal(t, exitcodes.InvalidConfig, code)
	assert.Contains(t, errOut, "no database")
}
