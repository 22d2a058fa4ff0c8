package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"bakerypos/internal/core/entity"
	"bakerypos/internal/domain/catalogs/supplier"
	"bakerypos/internal/infrastructure/storage/postgres"
)

const supplierTable = "suppliers"

var _ supplier.Repository = (*SupplierRepo)(nil)

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txManager *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			supplierTable, "supplier",
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return new(supplier.Supplier) },
		),
	}
}

// FindByName retrieves an active supplier by exact name.
func (r *SupplierRepo) FindByName(ctx context.Context, name string) (*supplier.Supplier, error) {
	return r.FindOne(ctx, r.baseSelect().
		Where(squirrel.Eq{"name": name, "status": entity.StatusActive}).
		Limit(1))
}
