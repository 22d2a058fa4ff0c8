package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakerypos/internal/core/entity"
	"bakerypos/internal/domain/catalogs/product"
	"bakerypos/internal/infrastructure/storage/postgres"
)

const productTable = "products"

var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			productTable, "product",
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return new(product.Product) },
		),
	}
}

func (r *ProductRepo) posQuery(day time.Time) squirrel.SelectBuilder {
	return r.Builder().
		Select(r.columns("p")...).
		Columns("b.name AS brand_name", "COALESCE(s.quantity_balance, 0) AS stock").
		From(productTable+" p").
		LeftJoin(brandTable+" b ON b.id = p.brand_id").
		LeftJoin("stock s ON s.product_id = p.id AND s.stock_date = ?", day).
		Where(squirrel.Eq{"p.status": entity.StatusActive}).
		OrderBy("b.name ASC NULLS LAST", "p.name ASC")
}

// ListForPOS returns active products with brand name and the stock balance
// of day, ordered by brand then name.
func (r *ProductRepo) ListForPOS(ctx context.Context, day time.Time) ([]product.POSRow, error) {
	sql, args, err := r.posQuery(day).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []product.POSRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list products for pos: %w", err)
	}
	return rows, nil
}
