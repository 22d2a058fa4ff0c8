package supplierledger

import (
	"context"
	"time"

	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
)

// Repository persists ledger entries. Aggregates are computed in SQL with
// the same rule as Summarize.
type Repository interface {
	Create(ctx context.Context, p *Payment) error

	// Outstanding returns max(0, purchases - payments) for one supplier.
	Outstanding(ctx context.Context, supplierID id.ID) (types.Money, error)

	Summary(ctx context.Context, supplierID id.ID) (Summary, error)

	// SuppliersWithBalances lists every supplier with its totals, by name.
	SuppliersWithBalances(ctx context.Context) ([]SupplierBalance, error)

	// Payments returns a supplier's entries, newest first.
	Payments(ctx context.Context, supplierID id.ID) ([]*Payment, error)

	// PaymentsByDateRange returns entries dated within [from, to], newest first.
	PaymentsByDateRange(ctx context.Context, from, to time.Time) ([]PaymentView, error)
}

// SupplierChecker verifies supplier references.
type SupplierChecker interface {
	Exists(ctx context.Context, supplierID id.ID) (bool, error)
}
