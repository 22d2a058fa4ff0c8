package product

import (
	"context"
	"time"

	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/catalogs/stockitem"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// ListForPOS returns active products with brand name and the stock
	// balance of day, ordered by brand then name.
	ListForPOS(ctx context.Context, day time.Time) ([]POSRow, error)
}

// BrandChecker verifies brand references.
type BrandChecker interface {
	Exists(ctx context.Context, brandID id.ID) (bool, error)
}

// SellableLister lists stock items offered on the till.
type SellableLister interface {
	ListSellable(ctx context.Context) ([]*stockitem.StockItem, error)
}

// POSCache stores built POS catalogs. Implementations are expected to expire
// entries on their own after a short TTL.
type POSCache interface {
	Get(ctx context.Context, key string) (*POSCatalog, bool, error)
	Set(ctx context.Context, key string, catalog *POSCatalog) error
	Invalidate(ctx context.Context) error
}
