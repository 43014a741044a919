package fsops

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmlong/internal/extpath"
)

func drain(t *testing.T, c Cursor) []Entry {
	t.Helper()
	var out []Entry
	for {
		e, ok := c.Next()
		if !ok {
			break
		}
		if e.Name == "." || e.Name == ".." {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func TestNativeOpenDirListsEntries(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	c, err := Native().OpenDir(extpath.Escape(root))
	require.NoError(t, err)
	entries := drain(t, c)
	require.NoError(t, c.Close())

	assert.Equal(t, []Entry{
		{Name: "a.txt", IsDir: false},
		{Name: "sub", IsDir: true},
	}, entries)
}

func TestNativeOpenDirMissing(t *testing.T) {
	c, err := Native().OpenDir(extpath.Escape(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, err)
	assert.Nil(t, c)
}

func TestNativeOpenDirOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := Native().OpenDir(extpath.Escape(file))
	assert.Error(t, err)
}

func TestNativeDeleteFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "victim.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	nfs := Native()
	require.True(t, nfs.Exists(file))
	require.NoError(t, nfs.DeleteFile(extpath.Escape(file)))
	assert.False(t, nfs.Exists(file))

	assert.Error(t, nfs.DeleteFile(extpath.Escape(file)), "second delete must fail")
}

func TestNativeRemoveDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "d")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), nil, 0o644))

	nfs := Native()
	assert.Error(t, nfs.RemoveDirectory(extpath.Escape(dir)), "non-empty directory must not be removed")

	require.NoError(t, os.Remove(filepath.Join(dir, "f")))
	require.NoError(t, nfs.RemoveDirectory(extpath.Escape(dir)))
	assert.False(t, nfs.Exists(dir))
}
