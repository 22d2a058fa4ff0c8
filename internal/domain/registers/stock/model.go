// Package stock is the inventory ledger: per-product daily stock rows and
// the running quantity of stock items.
package stock

import (
	"time"

	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
)

// Stock is one row per (product, calendar day). Quantity is everything added
// that day, QuantityBalance what is left to sell. The balance is not floored
// and goes negative on oversale.
type Stock struct {
	ID              id.ID          `db:"id" json:"id"`
	ProductID       id.ID          `db:"product_id" json:"productId"`
	StockDate       time.Time      `db:"stock_date" json:"stockDate"`
	Quantity        types.Quantity `db:"quantity" json:"quantity"`
	QuantityBalance types.Quantity `db:"quantity_balance" json:"quantityBalance"`
	AddedBy         *id.ID         `db:"added_by" json:"addedBy,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// Sold returns how much of the day's stock has been sold.
func (s Stock) Sold() types.Quantity {
	return s.Quantity.Sub(s.QuantityBalance)
}

// StockView is a stock row joined with catalog names for listings.
type StockView struct {
	Stock
	ProductName string      `db:"product_name" json:"productName"`
	BrandName   *string     `db:"brand_name" json:"brandName,omitempty"`
	Price       types.Money `db:"price" json:"price"`
}

// ReportRow aggregates one product over a date range.
type ReportRow struct {
	ProductID      id.ID          `db:"product_id" json:"productId"`
	ProductName    string         `db:"product_name" json:"productName"`
	TotalAdded     types.Quantity `db:"total_added" json:"totalAdded"`
	TotalSold      types.Quantity `db:"total_sold" json:"totalSold"`
	TotalRemaining types.Quantity `db:"total_remaining" json:"totalRemaining"`
}

// DefaultHistoryLimit is the number of days returned by ProductHistory.
const DefaultHistoryLimit = 30
