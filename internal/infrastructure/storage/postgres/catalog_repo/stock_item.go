package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/catalogs/stockitem"
	"bakerypos/internal/infrastructure/storage/postgres"
)

const stockItemTable = "stock_items"

var _ stockitem.Repository = (*StockItemRepo)(nil)

// StockItemRepo implements stockitem.Repository.
type StockItemRepo struct {
	*BaseCatalogRepo[*stockitem.StockItem]
}

// NewStockItemRepo creates a new stock item repository.
func NewStockItemRepo(txManager *postgres.TxManager) *StockItemRepo {
	return &StockItemRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			stockItemTable, "stock item",
			postgres.ExtractDBColumns[stockitem.StockItem](),
			func() *stockitem.StockItem { return new(stockitem.StockItem) },
		),
	}
}

func (r *StockItemRepo) lowStockQuery(threshold types.Quantity) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"status": entity.StatusActive}).
		Where(squirrel.LtOrEq{"quantity": threshold}).
		OrderBy("quantity ASC", "name ASC")
}

// LowStock returns active items with quantity <= threshold, lowest first.
func (r *StockItemRepo) LowStock(ctx context.Context, threshold types.Quantity) ([]*stockitem.StockItem, error) {
	return r.FindAll(ctx, r.lowStockQuery(threshold))
}

// ListSellable returns active sellable items ordered by name.
func (r *StockItemRepo) ListSellable(ctx context.Context) ([]*stockitem.StockItem, error) {
	return r.FindAll(ctx, r.baseSelect().
		Where(squirrel.Eq{"status": entity.StatusActive, "is_sellable": true}).
		OrderBy("name ASC"))
}
