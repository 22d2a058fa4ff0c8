package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakerypos/internal/core/entity"
	"bakerypos/internal/domain"
	"bakerypos/internal/domain/catalogs/brand"
	"bakerypos/internal/infrastructure/storage/postgres"
)

const brandTable = "brands"

var _ brand.Repository = (*BrandRepo)(nil)

// BrandRepo implements brand.Repository.
type BrandRepo struct {
	*BaseCatalogRepo[*brand.Brand]
}

// NewBrandRepo creates a new brand repository.
func NewBrandRepo(txManager *postgres.TxManager) *BrandRepo {
	return &BrandRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			brandTable, "brand",
			postgres.ExtractDBColumns[brand.Brand](),
			func() *brand.Brand { return new(brand.Brand) },
		),
	}
}

// FindByName retrieves a brand by exact name.
func (r *BrandRepo) FindByName(ctx context.Context, name string) (*brand.Brand, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"name": name}).Limit(1))
}

func (r *BrandRepo) productCountQuery(filter domain.ListFilter) squirrel.SelectBuilder {
	q := r.Builder().
		Select(r.columns("b")...).
		Column("COUNT(p.id) AS product_count").
		From(brandTable+" b").
		LeftJoin(productTable+" p ON p.brand_id = b.id AND p.status = ?", entity.StatusActive).
		GroupBy("b.id").
		OrderBy("b.name ASC")
	return paginate(r.listQuery(q, filter, "b"), filter.Limit, filter.Offset)
}

// ListWithProductCount returns brands with their active product count.
func (r *BrandRepo) ListWithProductCount(ctx context.Context, filter domain.ListFilter) ([]brand.WithProductCount, error) {
	sql, args, err := r.productCountQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []brand.WithProductCount
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list brands with product count: %w", err)
	}
	return rows, nil
}
