// Package catalogs joins the catalog packages for consumers that need more
// than one of them.
package catalogs

import (
	"context"

	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/domain/catalogs/product"
	"bakerypos/internal/domain/catalogs/stockitem"
	"bakerypos/internal/domain/pricing"
)

// ProductReader loads products by id.
type ProductReader interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// StockItemReader loads stock items by id.
type StockItemReader interface {
	GetByID(ctx context.Context, itemID id.ID) (*stockitem.StockItem, error)
}

// ItemSource serves cart pricing from the product and stock item catalogs.
type ItemSource struct {
	products   ProductReader
	stockItems StockItemReader
}

var _ pricing.ItemSource = (*ItemSource)(nil)

// NewItemSource creates an ItemSource.
func NewItemSource(products ProductReader, stockItems StockItemReader) *ItemSource {
	return &ItemSource{products: products, stockItems: stockItems}
}

// ProductInfo implements pricing.ItemSource.
func (s *ItemSource) ProductInfo(ctx context.Context, productID id.ID) (pricing.ProductInfo, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return pricing.ProductInfo{}, err
	}
	return pricing.ProductInfo{
		ID:     p.ID,
		Name:   p.Name,
		Rate:   p.Rate(),
		Active: p.Status == entity.StatusActive,
	}, nil
}

// StockItemInfo implements pricing.ItemSource.
func (s *ItemSource) StockItemInfo(ctx context.Context, itemID id.ID) (pricing.StockItemInfo, error) {
	it, err := s.stockItems.GetByID(ctx, itemID)
	if err != nil {
		return pricing.StockItemInfo{}, err
	}
	return pricing.StockItemInfo{
		ID:        it.ID,
		Name:      it.Name,
		UnitPrice: it.UnitPrice,
		Sellable:  it.IsSellable,
		Active:    it.Status == entity.StatusActive,
	}, nil
}
