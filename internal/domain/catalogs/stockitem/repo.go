package stockitem

import (
	"context"

	"bakerypos/internal/core/types"
	"bakerypos/internal/domain"
)

// Repository defines the interface for StockItem persistence.
// Quantity changes go through the stock register, not Update.
type Repository interface {
	domain.CatalogRepository[*StockItem]

	// LowStock returns active items with quantity <= threshold, lowest first.
	LowStock(ctx context.Context, threshold types.Quantity) ([]*StockItem, error)

	// ListSellable returns active sellable items ordered by name.
	ListSellable(ctx context.Context) ([]*StockItem, error)
}
