package stock

import (
	"context"
	"time"

	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
)

// Repository persists the ledger. Every delta is applied as one atomic
// "col = col +/- delta" statement, never read-modify-write.
type Repository interface {
	// AddStock upserts the (product, day) row, adding qty to quantity and balance.
	AddStock(ctx context.Context, productID id.ID, qty types.Quantity, day time.Time, addedBy *id.ID) (*Stock, error)

	// ReduceStock subtracts qty from the day's balance. A missing row is created
	// with quantity 0 and a negative balance.
	ReduceStock(ctx context.Context, productID id.ID, qty types.Quantity, day time.Time) error

	// ClearBalance sets the balance of a row to 0. NotFound when missing.
	ClearBalance(ctx context.Context, stockID id.ID) (*Stock, error)

	// AddStockItemQuantity and ReduceStockItemQuantity adjust the running
	// quantity of a stock item. NotFound when missing.
	AddStockItemQuantity(ctx context.Context, itemID id.ID, qty types.Quantity) error
	ReduceStockItemQuantity(ctx context.Context, itemID id.ID, qty types.Quantity) error

	// CurrentStock lists the day's rows with a positive balance.
	CurrentStock(ctx context.Context, day time.Time) ([]StockView, error)

	// DayStock lists all rows of the day.
	DayStock(ctx context.Context, day time.Time) ([]StockView, error)

	// ProductHistory returns the latest rows of one product, newest first.
	ProductHistory(ctx context.Context, productID id.ID, limit int) ([]Stock, error)

	// Report aggregates rows per product over [from, to].
	Report(ctx context.Context, from, to time.Time) ([]ReportRow, error)
}

// ProductChecker tells whether a product exists.
type ProductChecker interface {
	Exists(ctx context.Context, productID id.ID) (bool, error)
}
