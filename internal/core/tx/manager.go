// Package tx provides transaction management abstractions.
// Domain services depend on Manager; the pgx implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a unit of work inside one database transaction.
//
// The transaction travels in the context passed to fn. Repositories pick it up
// from there, so every write issued inside fn commits or rolls back together.
// Nested calls reuse the outer transaction.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction (consistent snapshot for reports).
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
