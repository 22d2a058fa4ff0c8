// Package brand provides the Brand catalog that groups products on the till.
package brand

import (
	"context"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
)

// Brand groups products (e.g. an in-house line or a reseller's range).
type Brand struct {
	entity.Catalog

	Description *string `db:"description" json:"description,omitempty"`
	Image       *string `db:"image" json:"image,omitempty"`
}

// NewBrand creates an active Brand.
func NewBrand(name string) *Brand {
	return &Brand{Catalog: entity.NewCatalog(name)}
}

// Validate implements entity.Validatable interface.
func (b *Brand) Validate(ctx context.Context) error {
	if err := b.Catalog.Validate(ctx); err != nil {
		return err
	}
	if len(b.Name) > 100 {
		return apperror.NewValidation("name is too long").
			WithDetail("field", "name").
			WithDetail("max", 100)
	}
	return nil
}

// WithProductCount is a brand row with the number of its active products.
type WithProductCount struct {
	Brand
	ProductCount int64 `db:"product_count" json:"productCount"`
}
