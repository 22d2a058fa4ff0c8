package order

import (
	"context"

	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/documents/bill"
)

// Repository persists orders and their lines.
type Repository interface {
	// Create inserts the order and all its lines. A taken order number is
	// reported as apperror CodeNumberConflict.
	Create(ctx context.Context, o *Order) error

	// MaxSequence returns the highest numeric suffix among order numbers of
	// the form stem+digits, or 0 when none exist.
	MaxSequence(ctx context.Context, stem string) (int64, error)

	// GetByID returns the order with lines.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// GetForUpdate returns the order with lines and locks its row until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)

	// UpdateStatus stores a new status.
	UpdateStatus(ctx context.Context, orderID id.ID, status Status) error

	// AddPayment increments advance_amount by amount and recomputes balance
	// and payment status in one statement. It returns the updated row.
	AddPayment(ctx context.Context, orderID id.ID, amount types.Money) (*Order, error)

	// Pending returns pending and in-progress orders, earliest due first.
	Pending(ctx context.Context) ([]*Order, error)

	// PendingCount counts pending and in-progress orders.
	PendingCount(ctx context.Context) (int64, error)

	// List returns orders without lines, newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error)
}

// BillCreator is the billing engine as seen by order completion.
type BillCreator interface {
	CreateBill(ctx context.Context, in bill.Input, cashierID *id.ID, opts bill.Options) (*bill.Result, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}

var _ BillCreator = (*bill.Service)(nil)
