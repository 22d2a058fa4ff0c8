// Package product provides the Product catalog: bakery goods tracked by daily
// stock and priced by the time-of-day policy.
package product

import (
	"context"
	"time"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/documents"
	"bakerypos/internal/domain/pricing"
)

// Product is a bakery good.
type Product struct {
	entity.Catalog

	BrandID *id.ID `db:"brand_id" json:"brandId,omitempty"`

	Price        types.Money  `db:"price" json:"price"`
	SpecialPrice *types.Money `db:"special_price" json:"specialPrice,omitempty"`

	// IsSpecialPricing enables SpecialPrice during the evening window.
	IsSpecialPricing bool `db:"is_special_pricing" json:"isSpecialPricing"`

	Size        *string `db:"size" json:"size,omitempty"`
	Description *string `db:"description" json:"description,omitempty"`
	Image       *string `db:"image" json:"image,omitempty"`
}

// NewProduct creates an active Product.
func NewProduct(name string, price types.Money) *Product {
	return &Product{
		Catalog: entity.NewCatalog(name),
		Price:   price,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !p.Price.IsPositive() {
		return apperror.NewValidation("price must be positive").
			WithDetail("field", "price")
	}

	if p.SpecialPrice != nil && !p.SpecialPrice.IsPositive() {
		return apperror.NewValidation("special price must be positive").
			WithDetail("field", "specialPrice")
	}

	return nil
}

// Rate is the pricing view of the product.
func (p *Product) Rate() pricing.Rate {
	return pricing.Rate{
		Price:            p.Price,
		SpecialPrice:     p.SpecialPrice,
		IsSpecialPricing: p.IsSpecialPricing,
	}
}

// POSRow is an active product with its brand and today's balance.
type POSRow struct {
	Product
	BrandName *string        `db:"brand_name"`
	Stock     types.Quantity `db:"stock"`
}

// POSItem is one tile on the till.
type POSItem struct {
	ItemType      documents.ItemType `json:"itemType"`
	ID            id.ID              `json:"id"`
	Name          string             `json:"name"`
	BrandID       *id.ID             `json:"brandId,omitempty"`
	BrandName     *string            `json:"brandName,omitempty"`
	Size          *string            `json:"size,omitempty"`
	Image         *string            `json:"image,omitempty"`
	Unit          string             `json:"unit,omitempty"`
	Price         types.Money        `json:"price"`
	CurrentPrice  types.Money        `json:"currentPrice"`
	SpecialActive bool               `json:"specialActive"`
	Stock         types.Quantity     `json:"stock"`
}

// POSCatalog is everything the till can sell right now.
type POSCatalog struct {
	GeneratedAt   time.Time `json:"generatedAt"`
	SpecialWindow bool      `json:"specialWindow"`
	Items         []POSItem `json:"items"`
}
