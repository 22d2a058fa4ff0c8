package bill

import (
	"context"

	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
)

// Repository persists bills and their lines.
type Repository interface {
	// Create inserts the bill and all its lines. A taken bill number is
	// reported as apperror CodeNumberConflict.
	Create(ctx context.Context, b *Bill) error

	// MaxSequence returns the highest numeric suffix among bill numbers of
	// the form stem+digits, or 0 when none exist.
	MaxSequence(ctx context.Context, stem string) (int64, error)

	// GetByID returns the bill with lines.
	GetByID(ctx context.Context, billID id.ID) (*Bill, error)

	// GetByNumber returns the bill with lines.
	GetByNumber(ctx context.Context, number string) (*Bill, error)

	// ExistsByNumber reports whether a bill carries number.
	ExistsByNumber(ctx context.Context, number string) (bool, error)

	// UpdateStatus moves a bill from one status to another. It reports false
	// when the bill was not in the from status.
	UpdateStatus(ctx context.Context, billID id.ID, from, to Status) (bool, error)

	// List returns bills without lines, newest first.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Bill], error)
}

// ReceiptRenderer renders a printable receipt.
type ReceiptRenderer interface {
	Render(ctx context.Context, b *Bill) ([]byte, error)
}
