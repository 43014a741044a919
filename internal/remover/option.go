package remover

import (
	"github.com/rs/zerolog"

	"rmlong/internal/walk"
)

// Option is a functional option for configuring a Remover.
type Option func(*Remover)

// WithLogger sets the logger used for per-entry and summary events.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Remover) {
		r.logger = logger
	}
}

// WithValidator rejects targets before anything is touched.
func WithValidator(v Validator) Option {
	return func(r *Remover) {
		r.validator = v
	}
}

// WithRecorder writes every delete attempt to a history store.
func WithRecorder(rec Recorder) Option {
	return func(r *Remover) {
		r.recorder = rec
	}
}

// WithLimiter throttles native delete calls.
func WithLimiter(t Throttler) Option {
	return func(r *Remover) {
		r.limiter = t
	}
}

// WithDryRun enumerates and logs without deleting anything.
func WithDryRun(dryRun bool) Option {
	return func(r *Remover) {
		r.dryRun = dryRun
	}
}

// WithDirOrder selects how directories are sequenced for removal.
func WithDirOrder(order walk.Order) Option {
	return func(r *Remover) {
		r.order = order
	}
}
