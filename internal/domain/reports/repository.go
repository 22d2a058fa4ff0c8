package reports

import (
	"context"
	"time"

	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/catalogs/stockitem"
	"bakerypos/internal/domain/registers/stock"
)

// Repository defines report data access interface. Periods are instants;
// day grouping uses tz.
type Repository interface {
	// Sales reports
	SalesSummary(ctx context.Context, p Period) (DailySummary, error)
	SalesByDay(ctx context.Context, p Period, tz string) ([]DayRow, error)
	TopItems(ctx context.Context, p Period, limit int) ([]TopItem, error)

	// Order reports
	OrderStats(ctx context.Context, p Period) ([]OrderStatusStat, error)
}

// PendingCounter counts open orders.
type PendingCounter interface {
	PendingCount(ctx context.Context) (int64, error)
}

// LowStocker lists stock items running low.
type LowStocker interface {
	LowStock(ctx context.Context, threshold *types.Quantity) ([]*stockitem.StockItem, error)
}

// CurrentStocker returns product balances of a day.
type CurrentStocker interface {
	CurrentStock(ctx context.Context, day time.Time) ([]stock.StockView, error)
}
