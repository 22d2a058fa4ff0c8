// Package txtest provides an in-memory tx.Manager for service tests.
package txtest

import (
	"context"
	"sync"

	"bakerypos/internal/core/tx"
)

type txKey struct{}

// Manager runs fn in a pretend transaction. When a snapshot func is set it is
// taken before the outermost fn and its restore func runs on failure, which
// lets in-memory fakes behave like a rolled back database.
type Manager struct {
	mu        sync.Mutex
	snapshot  func() (restore func())
	Commits   int
	Rollbacks int
}

var _ tx.ReadOnlyManager = (*Manager)(nil)

// New returns a Manager without rollback emulation.
func New() *Manager {
	return &Manager{}
}

// WithSnapshot returns a Manager that restores state on rollback.
func WithSnapshot(snapshot func() (restore func())) *Manager {
	return &Manager{snapshot: snapshot}
}

// RunInTransaction implements tx.Manager. Nested calls join the outer one.
func (m *Manager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	var restore func()
	if m.snapshot != nil {
		restore = m.snapshot()
	}

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		if restore != nil {
			restore()
		}
		m.mu.Lock()
		m.Rollbacks++
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.Commits++
	m.mu.Unlock()
	return nil
}

// ReadOnly implements tx.ReadOnlyManager.
func (m *Manager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}

// InTx reports whether ctx is inside a RunInTransaction call.
func InTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}
