package xlsheet

import (
	"io"
	"log/slog"
)

// Options holds configuration for a Manager.
type Options struct {
	logger        *slog.Logger
	strictSave    bool
	dirtyOnly     bool
	preserveTypes bool
	preSave       func(*Manager) error
}

func defaultOptions() *Options {
	return &Options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures a Manager.
type Option func(*Options)

// WithLogger sets the logger used for load and save diagnostics (default: discard).
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStrictSave makes Save fail with ErrNotFound when a tracked sheet has no
// matching worksheet part in the package, instead of skipping it.
func WithStrictSave(strict bool) Option {
	return func(o *Options) { o.strictSave = strict }
}

// WithDirtyOnly makes Save rewrite only the sheets changed since the last load or save.
func WithDirtyOnly(dirty bool) Option {
	return func(o *Options) { o.dirtyOnly = dirty }
}

// WithPreserveTypes writes cells still typed Number or Boolean back with their
// original type tag instead of normalizing everything to text.
func WithPreserveTypes(preserve bool) Option {
	return func(o *Options) { o.preserveTypes = preserve }
}

// WithPreSave sets a callback executed before the package is written.
// A non-nil error aborts the save and leaves the file untouched.
func WithPreSave(fn func(*Manager) error) Option {
	return func(o *Options) { o.preSave = fn }
}
