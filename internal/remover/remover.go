// Package remover deletes single files and whole directory trees through
// an fsops.FS, passing every path through the extended-length prefix.
//
// Removal is best effort: individual delete failures are absorbed so the
// rest of the tree still goes, and the outcome of a tree removal is judged
// by whether the root is gone afterwards.
package remover

import (
	"errors"
	"io/fs"
	"time"

	"github.com/rs/zerolog"

	"rmlong/internal/database"
	"rmlong/internal/extpath"
	"rmlong/internal/fsops"
	"rmlong/internal/metrics"
	"rmlong/internal/walk"
)

// Failure kinds
const (
	KindFile = "file"
	KindDir  = "dir"
	KindRoot = "root"
)

// Tree results used as the metrics label
const (
	ResultRemoved    = "removed"
	ResultIncomplete = "incomplete"
	ResultRejected   = "rejected"
	ResultDryRun     = "dry_run"
)

// Validator rejects paths that must never be removed
type Validator interface {
	ValidateDeleteTarget(path string) error
}

// Recorder persists removal events
type Recorder interface {
	RecordRemoval(action, root, path, objectType, errorMsg string) error
}

// Throttler blocks until the next delete may proceed
type Throttler interface {
	Throttle()
}

// Failure is one delete call that did not succeed
type Failure struct {
	Path string
	Kind string
	Err  error
}

// Report describes the outcome of one tree removal
type Report struct {
	Root         string
	FilesRemoved int
	DirsRemoved  int
	Failures     []Failure
	Removed      bool
	Rejected     error
	Duration     time.Duration
}

// Remover removes files and trees. It holds no per-call state and may be
// reused, but is not meant for concurrent use.
type Remover struct {
	fs        fsops.FS
	logger    zerolog.Logger
	validator Validator
	recorder  Recorder
	limiter   Throttler
	dryRun    bool
	order     walk.Order
}

// New creates a Remover over fsys
func New(fsys fsops.FS, opts ...Option) *Remover {
	r := &Remover{
		fs:     fsys,
		logger: zerolog.Nop(),
		order:  walk.OrderLength,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RemoveFile deletes a single file and reports whether the native call
// succeeded. There is no retry.
func (r *Remover) RemoveFile(path string) bool {
	if err := r.validate(path); err != nil {
		r.logger.Warn().Str("path", path).Err(err).Msg("refusing to remove file")
		r.record(database.ActionSkip, path, path, database.ObjectFile, err)
		return false
	}

	if r.dryRun {
		r.logger.Info().Str("path", path).Msg("[DRY RUN] would delete file")
		r.record(database.ActionDryRun, path, path, database.ObjectFile, nil)
		return false
	}

	err := r.deleteFile(path, path)
	return err == nil
}

// RemoveTree deletes path and everything beneath it and reports whether
// the root is gone afterwards.
func (r *Remover) RemoveTree(path string) bool {
	return r.RemoveTreeReport(path).Removed
}

// RemoveTreeReport is RemoveTree with a per-entry account of what happened
func (r *Remover) RemoveTreeReport(path string) Report {
	start := time.Now()
	rep := Report{Root: path}

	logger := r.logger.With().Str("root", path).Logger()

	if err := r.validate(path); err != nil {
		logger.Warn().Err(err).Msg("refusing to remove tree")
		r.record(database.ActionSkip, path, path, database.ObjectRoot, err)
		rep.Rejected = err
		rep.Duration = time.Since(start)
		metrics.RecordTree(ResultRejected, rep.Duration.Seconds())
		return rep
	}

	entries := walk.Enumerate(r.fs, extpath.Escape(path))
	metrics.RecordEnumerated(entries.Count())
	logger.Debug().
		Int("files", len(entries.Files)).
		Int("dirs", len(entries.Dirs)).
		Msg("enumerated tree")

	dirs := r.order.Sort(entries.Dirs)

	if r.dryRun {
		for _, f := range entries.Files {
			r.wouldDelete(logger, path, f, database.ObjectFile)
		}
		for _, d := range dirs {
			r.wouldDelete(logger, path, d, database.ObjectDirectory)
		}
		r.wouldDelete(logger, path, extpath.Escape(path), database.ObjectRoot)

		rep.Removed = !r.fs.Exists(path)
		rep.Duration = time.Since(start)
		metrics.RecordTree(ResultDryRun, rep.Duration.Seconds())
		return rep
	}

	for _, f := range entries.Files {
		if err := r.deleteFile(path, f); err != nil {
			rep.fail(f, KindFile, err)
			continue
		}
		rep.FilesRemoved++
	}

	for _, d := range dirs {
		if err := r.removeDir(path, d, database.ObjectDirectory); err != nil {
			rep.fail(d, KindDir, err)
			continue
		}
		rep.DirsRemoved++
	}

	if err := r.removeDir(path, extpath.Escape(path), database.ObjectRoot); err != nil {
		rep.fail(path, KindRoot, err)
	} else {
		rep.DirsRemoved++
	}

	// judged on the ordinary path form
	rep.Removed = !r.fs.Exists(path)
	rep.Duration = time.Since(start)

	result := ResultRemoved
	if !rep.Removed {
		result = ResultIncomplete
	}
	metrics.RecordTree(result, rep.Duration.Seconds())

	event := logger.Info()
	if !rep.Removed {
		event = logger.Warn()
	}
	event.
		Bool("removed", rep.Removed).
		Int("files_removed", rep.FilesRemoved).
		Int("dirs_removed", rep.DirsRemoved).
		Int("failures", len(rep.Failures)).
		Dur("duration", rep.Duration).
		Msg("tree removal finished")

	return rep
}

func (r *Remover) validate(path string) error {
	if r.validator == nil {
		return nil
	}
	return r.validator.ValidateDeleteTarget(path)
}

func (r *Remover) throttle() {
	if r.limiter != nil {
		r.limiter.Throttle()
	}
}

func (r *Remover) deleteFile(root, path string) error {
	r.throttle()

	err := r.fs.DeleteFile(extpath.Escape(path))
	if err != nil {
		r.failed(root, path, database.ObjectFile, KindFile, err)
		return err
	}

	metrics.IncFilesRemoved()
	r.logger.Debug().Str("path", extpath.Strip(path)).Msg("deleted file")
	r.record(database.ActionDelete, root, path, database.ObjectFile, nil)
	return nil
}

func (r *Remover) removeDir(root, path, objectType string) error {
	r.throttle()

	err := r.fs.RemoveDirectory(extpath.Escape(path))
	if err != nil {
		kind := KindDir
		if objectType == database.ObjectRoot {
			kind = KindRoot
		}
		r.failed(root, path, objectType, kind, err)
		return err
	}

	metrics.IncDirsRemoved()
	r.logger.Debug().Str("path", extpath.Strip(path)).Msg("removed directory")
	r.record(database.ActionDelete, root, path, objectType, nil)
	return nil
}

func (r *Remover) failed(root, path, objectType, kind string, err error) {
	// already gone: nothing left to fail on
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug().Str("path", extpath.Strip(path)).Msg("already absent")
		return
	}
	metrics.RecordFailure(kind)
	r.logger.Warn().Str("path", extpath.Strip(path)).Str("kind", kind).Err(err).Msg("delete failed, continuing")
	r.record(database.ActionError, root, path, objectType, err)
}

func (r *Remover) wouldDelete(logger zerolog.Logger, root, path, objectType string) {
	logger.Info().Str("path", extpath.Strip(path)).Str("object", objectType).Msg("[DRY RUN] would delete")
	r.record(database.ActionDryRun, root, path, objectType, nil)
}

func (r *Remover) record(action, root, path, objectType string, err error) {
	if r.recorder == nil {
		return
	}
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if dbErr := r.recorder.RecordRemoval(action, extpath.Strip(root), extpath.Strip(path), objectType, msg); dbErr != nil {
		// history is best effort, like the removal itself
		metrics.IncErrors()
		r.logger.Error().Err(dbErr).Msg("failed to record removal history")
	}
}

func (rep *Report) fail(path, kind string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	rep.Failures = append(rep.Failures, Failure{Path: extpath.Strip(path), Kind: kind, Err: err})
}
