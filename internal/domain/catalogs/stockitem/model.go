// Package stockitem provides the StockItem catalog: secondary goods such as
// drinks, candles or packaging, tracked by a single running quantity.
package stockitem

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/types"
)

// DefaultUnit is used when no unit is given.
const DefaultUnit = "pcs"

// DefaultLowStockThreshold is the LowStock threshold when none is given.
var DefaultLowStockThreshold = decimal.NewFromInt(10)

// StockItem is a good with a running quantity and no daily dimension.
type StockItem struct {
	entity.Catalog

	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Quantity is the running balance. It may go negative on oversell.
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	Unit string `db:"unit" json:"unit"`

	// IsSellable puts the item on the till.
	IsSellable bool `db:"is_sellable" json:"isSellable"`
}

// NewStockItem creates an active StockItem.
func NewStockItem(name string, unitPrice types.Money, sellable bool) *StockItem {
	return &StockItem{
		Catalog:    entity.NewCatalog(name),
		UnitPrice:  unitPrice,
		Unit:       DefaultUnit,
		IsSellable: sellable,
	}
}

// Validate implements entity.Validatable interface.
func (s *StockItem) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	s.Unit = strings.TrimSpace(s.Unit)
	if s.Unit == "" {
		s.Unit = DefaultUnit
	}

	if s.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative").
			WithDetail("field", "unitPrice")
	}

	// A sellable item must carry a price for the till.
	if s.IsSellable && !s.UnitPrice.IsPositive() {
		return apperror.NewValidation("sellable item needs a positive unit price").
			WithDetail("field", "unitPrice")
	}

	return nil
}
