// Package moderation keeps a local copy of a remote collection and applies
// moderator actions to it optimistically.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrNotFound is returned when no record has the requested identity.
var ErrNotFound = errors.New("record not found on board")

// Remote is the authoritative collection behind a Board.
type Remote[T any] interface {
	List(ctx context.Context) ([]T, error)
	Save(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
}

// Funcs adapts plain functions to Remote.
type Funcs[T any] struct {
	ListFn   func(ctx context.Context) ([]T, error)
	SaveFn   func(ctx context.Context, item T) error
	DeleteFn func(ctx context.Context, id string) error
}

// List calls ListFn.
func (f Funcs[T]) List(ctx context.Context) ([]T, error) { return f.ListFn(ctx) }

// Save calls SaveFn.
func (f Funcs[T]) Save(ctx context.Context, item T) error { return f.SaveFn(ctx, item) }

// Delete calls DeleteFn.
func (f Funcs[T]) Delete(ctx context.Context, id string) error { return f.DeleteFn(ctx, id) }

// Outcome describes how a failed remote write was reconciled.
type Outcome string

const (
	OutcomeRefetched Outcome = "refetched"
	OutcomeReverted  Outcome = "reverted"
)

// WriteError is returned when a remote write fails after the local copy
// was updated. The local copy has already been reconciled.
type WriteError struct {
	Op      string
	ID      string
	Outcome Outcome
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Board is a local, optimistically updated copy of a remote collection.
// INVARIANT: after any failed write the local copy matches a fresh fetch,
// or the pre-write state of the affected record when the fetch also fails
type Board[T any] struct {
	name     string
	remote   Remote[T]
	identity func(T) string

	mu       sync.RWMutex
	items    []T
	loadedAt time.Time
	degraded bool
}

// NewBoard creates an empty board; call Load before reading.
// PRE: remote and identity are non-nil
func NewBoard[T any](name string, remote Remote[T], identity func(T) string) *Board[T] {
	return &Board[T]{name: name, remote: remote, identity: identity}
}

// Load replaces the local copy with a fresh fetch.
// On failure the board is emptied and marked degraded, and the error is
// returned so callers may log it; readers still see an empty collection.
// PRE: ctx is valid
// POST: loadedAt is updated either way
func (b *Board[T]) Load(ctx context.Context) error {
	items, err := b.remote.List(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadedAt = time.Now()
	if err != nil {
		b.items = nil
		b.degraded = true
		slog.Error("moderation_event", "event", "load_failed", "board", b.name, "error", err)
		return fmt.Errorf("load %s: %w", b.name, err)
	}
	b.items = items
	b.degraded = false
	return nil
}

// EnsureFresh reloads if the local copy is older than maxAge or was never loaded.
func (b *Board[T]) EnsureFresh(ctx context.Context, maxAge time.Duration) error {
	b.mu.RLock()
	stale := b.loadedAt.IsZero() || time.Since(b.loadedAt) > maxAge
	b.mu.RUnlock()
	if !stale {
		return nil
	}
	return b.Load(ctx)
}

// Items returns a copy of the local collection.
func (b *Board[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Degraded reports whether the last Load failed.
func (b *Board[T]) Degraded() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.degraded
}

// Get looks up a record by identity in the local copy.
func (b *Board[T]) Get(id string) (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.indexOf(id); i >= 0 {
		return b.items[i], true
	}
	var zero T
	return zero, false
}

// Mutate applies fn to record id locally, then saves it remotely.
// If fn returns an error nothing changes. If the save fails the board is
// reconciled and a *WriteError is returned.
// PRE: fn does not retain the pointer
// POST: On success the returned record is both local and remote
func (b *Board[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var zero T

	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return zero, fmt.Errorf("%s %s: %w", b.name, id, ErrNotFound)
	}
	before := b.items[i]
	after := before
	if err := fn(&after); err != nil {
		b.mu.Unlock()
		return zero, err
	}
	b.items[i] = after
	b.mu.Unlock()

	if err := b.remote.Save(ctx, after); err != nil {
		outcome := b.reconcile(ctx, func() {
			if j := b.indexOf(id); j >= 0 {
				b.items[j] = before
			}
		})
		slog.Warn("moderation_event", "event", "save_failed", "board", b.name, "id", id, "outcome", outcome, "error", err)
		return zero, &WriteError{Op: "save", ID: id, Outcome: outcome, Err: err}
	}

	slog.Info("moderation_event", "event", "saved", "board", b.name, "id", id)
	return after, nil
}

// Remove deletes record id locally, then remotely.
// If the delete fails the board is reconciled and a *WriteError is returned.
func (b *Board[T]) Remove(ctx context.Context, id string) error {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return fmt.Errorf("%s %s: %w", b.name, id, ErrNotFound)
	}
	removed := b.items[i]
	b.items = append(b.items[:i:i], b.items[i+1:]...)
	b.mu.Unlock()

	if err := b.remote.Delete(ctx, id); err != nil {
		outcome := b.reconcile(ctx, func() {
			if b.indexOf(id) >= 0 {
				return
			}
			pos := i
			if pos > len(b.items) {
				pos = len(b.items)
			}
			restored := make([]T, 0, len(b.items)+1)
			restored = append(restored, b.items[:pos]...)
			restored = append(restored, removed)
			b.items = append(restored, b.items[pos:]...)
		})
		slog.Warn("moderation_event", "event", "delete_failed", "board", b.name, "id", id, "outcome", outcome, "error", err)
		return &WriteError{Op: "delete", ID: id, Outcome: outcome, Err: err}
	}

	slog.Info("moderation_event", "event", "deleted", "board", b.name, "id", id)
	return nil
}

// Insert adds a record to the local copy only, for records that were
// written elsewhere (e.g. a fresh registration).
func (b *Board[T]) Insert(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(b.identity(item)); i >= 0 {
		b.items[i] = item
		return
	}
	b.items = append(b.items, item)
}

// reconcile refetches the collection, or runs revert under the lock when
// the refetch fails too.
func (b *Board[T]) reconcile(ctx context.Context, revert func()) Outcome {
	items, err := b.remote.List(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.items = items
		b.loadedAt = time.Now()
		b.degraded = false
		return OutcomeRefetched
	}
	slog.Error("moderation_event", "event", "refetch_failed", "board", b.name, "error", err)
	revert()
	return OutcomeReverted
}

// indexOf requires b.mu to be held.
func (b *Board[T]) indexOf(id string) int {
	for i, item := range b.items {
		if b.identity(item) == id {
			return i
		}
	}
	return -1
}
