// Package resource holds expensive collaborators, such as model runtimes,
// that are loaded on first use and can be released between runs.
package resource

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"voxreel/internal/logging"
)

// LoadFunc creates the underlying value.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// ReleaseFunc disposes of a loaded value.
type ReleaseFunc[T any] func(T) error

// Handle loads a value on the first Acquire and keeps it until Release.
// Acquire is idempotent; Release on an unloaded handle is a no-op.
type Handle[T any] struct {
	name    string
	load    LoadFunc[T]
	release ReleaseFunc[T]
	logger  *slog.Logger

	mu     sync.Mutex
	value  T
	loaded bool
}

// NewHandle creates a handle. release may be nil.
func NewHandle[T any](name string, load LoadFunc[T], release ReleaseFunc[T], logger *slog.Logger) *Handle[T] {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handle[T]{name: name, load: load, release: release, logger: logger}
}

// Acquire returns the loaded value, loading it when necessary.
// A failed load leaves the handle unloaded so a later call can retry.
func (h *Handle[T]) Acquire(ctx context.Context) (T, error) {
	var zero T
	if h == nil || h.load == nil {
		return zero, errors.New("resource handle has no loader")
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded {
		return h.value, nil
	}
	started := time.Now()
	value, err := h.load(ctx)
	if err != nil {
		return zero, err
	}
	h.value = value
	h.loaded = true
	h.logger.Debug("resource loaded",
		logging.String("resource", h.name),
		logging.Duration("elapsed", time.Since(started)),
	)
	return value, nil
}

// Release drops the loaded value, running the release hook if one is set.
func (h *Handle[T]) Release() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.loaded {
		return nil
	}
	var zero T
	value := h.value
	h.value = zero
	h.loaded = false
	h.logger.Debug("resource released", logging.String("resource", h.name))
	if h.release != nil {
		return h.release(value)
	}
	return nil
}

// Loaded reports whether the value is currently held.
func (h *Handle[T]) Loaded() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loaded
}

// Name returns the label used in logs.
func (h *Handle[T]) Name() string {
	if h == nil {
		return ""
	}
	return h.name
}
