//go:build !windows

package integration

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmlong/internal/config"
	"rmlong/internal/database"
	"rmlong/internal/fsops"
	"rmlong/internal/limiter"
	"rmlong/internal/logging"
	"rmlong/internal/metrics"
	"rmlong/internal/remover"
	"rmlong/internal/safety"
)

func init() {
	// Initialize metrics once for all integration tests
	metrics.Init()
}

type fixture struct {
	allowedDir   string
	protectedDir string
	junkFile     string
	longTree     string
	longLeaf     string
	keepFile     string
	dirLink      string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	tmpRoot := t.TempDir()
	fx := fixture{
		allowedDir:   filepath.Join(tmpRoot, "allowed"),
		protectedDir: filepath.Join(tmpRoot, "protected"),
	}

	require.NoError(t, os.MkdirAll(fx.allowedDir, 0755))
	require.NoError(t, os.MkdirAll(fx.protectedDir, 0755))

	fx.junkFile = filepath.Join(fx.allowedDir, "junk.log")
	require.NoError(t, os.WriteFile(fx.junkFile, []byte("deletable content"), 0644))

	// nested deep enough that the full path passes 260 characters
	fx.longTree = filepath.Join(fx.allowedDir, "node_modules")
	deep := fx.longTree
	for len(deep) < 300 {
		deep = filepath.Join(deep, "nested-package-directory")
	}
	require.NoError(t, os.MkdirAll(deep, 0755))
	fx.longLeaf = filepath.Join(deep, "index.js")
	require.NoError(t, os.WriteFile(fx.longLeaf, []byte("module.exports = 1"), 0644))

	fx.keepFile = filepath.Join(fx.protectedDir, "keep.txt")
	require.NoError(t, os.WriteFile(fx.keepFile, []byte("MUST KEEP"), 0644))

	// a directory symlink inside the tree pointing outside of it
	fx.dirLink = filepath.Join(fx.longTree, "link_to_protected")
	require.NoError(t, os.Symlink(fx.protectedDir, fx.dirLink))

	return fx
}

func (fx fixture) writeConfig(t *testing.T, dryRun bool) *config.Config {
	t.Helper()

	dir := t.TempDir()
	yml := fmt.Sprintf(`allowed_roots:
  - '%s'
protected_paths:
  - '%s'
dry_run: %t
dir_order: topological
database_path: '%s'
resource_limits:
  max_deletes_per_second: 10000
  burst: 100
`, fx.allowedDir, fx.protectedDir, dryRun, filepath.Join(dir, "state", "history.db"))

	path := filepath.Join(dir, "rmlong.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	return cfg
}

func newRemover(t *testing.T, cfg *config.Config, logs *bytes.Buffer) (*remover.Remover, *database.RemovalDB) {
	t.Helper()

	db, err := database.NewRemovalDB(cfg.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	r := remover.New(fsops.Native(),
		remover.WithLogger(logging.NewWithWriter(logs, zerolog.DebugLevel)),
		remover.WithValidator(safety.NewValidator(cfg.AllowedRoots, cfg.ProtectedPaths)),
		remover.WithRecorder(db),
		remover.WithLimiter(limiter.New(cfg.ResourceLimits.MaxDeletesPerSecond, cfg.ResourceLimits.Burst)),
		remover.WithDryRun(cfg.DryRun),
		remover.WithDirOrder(cfg.Order()),
	)
	return r, db
}

// TestRemovalSafetyIntegration verifies the removal and safety contract on a real filesystem
func TestRemovalSafetyIntegration(t *testing.T) {
	fx := newFixture(t)

	t.Run("DryRun_NoFilesystemChanges", func(t *testing.T) {
		var logs bytes.Buffer
		r, db := newRemover(t, fx.writeConfig(t, true), &logs)

		assert.False(t, r.RemoveTree(fx.longTree))
		assert.False(t, r.RemoveFile(fx.junkFile))

		assert.FileExists(t, fx.longLeaf)
		assert.FileExists(t, fx.junkFile)
		assert.Contains(t, logs.String(), "[DRY RUN]")

		dry, err := db.GetByAction(database.ActionDryRun, 1000)
		require.NoError(t, err)
		assert.NotEmpty(t, dry)
	})

	t.Run("ProtectedAndOutsideTargetsRejected", func(t *testing.T) {
		var logs bytes.Buffer
		r, db := newRemover(t, fx.writeConfig(t, false), &logs)

		rep := r.RemoveTreeReport(fx.protectedDir)
		assert.False(t, rep.Removed)
		assert.ErrorIs(t, rep.Rejected, safety.ErrProtectedPath)

		rep = r.RemoveTreeReport(filepath.Dir(fx.allowedDir))
		assert.ErrorIs(t, rep.Rejected, safety.ErrOutsideAllowed)

		assert.False(t, r.RemoveFile(fx.keepFile))
		assert.FileExists(t, fx.keepFile)

		skipped, err := db.GetByAction(database.ActionSkip, 1000)
		require.NoError(t, err)
		assert.Len(t, skipped, 3)
	})

	t.Run("RealRun_RemovesLongTreeOnly", func(t *testing.T) {
		var logs bytes.Buffer
		r, db := newRemover(t, fx.writeConfig(t, false), &logs)

		removedBefore := testutil.ToFloat64(metrics.TreesTotal.WithLabelValues(remover.ResultRemoved))

		rep := r.RemoveTreeReport(fx.longTree)
		require.True(t, rep.Removed, "failures: %v", rep.Failures)
		assert.Empty(t, rep.Failures)
		assert.NoDirExists(t, fx.longTree)

		// the symlink went, its target did not
		assert.FileExists(t, fx.keepFile)
		assert.DirExists(t, fx.protectedDir)

		assert.True(t, r.RemoveFile(fx.junkFile))
		assert.NoFileExists(t, fx.junkFile)
		assert.DirExists(t, fx.allowedDir)

		assert.Equal(t, removedBefore+1, testutil.ToFloat64(metrics.TreesTotal.WithLabelValues(remover.ResultRemoved)))

		history, err := db.GetByRoot(fx.longTree, 10000)
		require.NoError(t, err)
		for _, rec := range history {
			assert.Equal(t, database.ActionDelete, rec.Action, rec.Path)
			assert.True(t, strings.HasPrefix(rec.Path, fx.longTree), rec.Path)
		}
		assert.Equal(t, rep.FilesRemoved+rep.DirsRemoved, len(history))
	})

	t.Run("MissingTreeCountsAsRemoved", func(t *testing.T) {
		var logs bytes.Buffer
		r, _ := newRemover(t, fx.writeConfig(t, false), &logs)

		assert.True(t, r.RemoveTree(filepath.Join(fx.allowedDir, "never-existed")))
	})
}
