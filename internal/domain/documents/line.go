// Package documents holds what bills and orders share: priced line items,
// cart validation and the routing of inventory reductions by item type.
package documents

import (
	"github.com/shopspring/decimal"

	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
)

// ItemType tells which inventory ledger a line draws from.
type ItemType string

const (
	// ItemProduct lines reduce the product's daily stock row.
	ItemProduct ItemType = "product"
	// ItemStockItem lines reduce the stock item's running quantity.
	ItemStockItem ItemType = "stock_item"
)

// IsValid reports whether t is a known item type.
func (t ItemType) IsValid() bool {
	return t == ItemProduct || t == ItemStockItem
}

// CartLine is an unpriced cart entry as sent by the till.
type CartLine struct {
	ItemType ItemType       `json:"itemType" validate:"required,oneof=product stock_item"`
	ItemID   id.ID          `json:"itemId" validate:"required"`
	Quantity types.Quantity `json:"quantity" validate:"gt=0"`
	Notes    string         `json:"notes,omitempty" validate:"max=500"`
}

// LineItem is a priced, persisted line of a bill or order.
// Name and price are captured at sale time and never joined back to the catalog.
type LineItem struct {
	LineNumber int            `db:"line_number" json:"lineNumber"`
	ItemType   ItemType       `db:"item_type" json:"itemType" validate:"required,oneof=product stock_item"`
	ItemID     id.ID          `db:"item_id" json:"itemId" validate:"required"`
	ItemName   string         `db:"item_name" json:"itemName" validate:"required,max=255"`
	Quantity   types.Quantity `db:"quantity" json:"quantity" validate:"gt=0"`
	UnitPrice  types.Money    `db:"unit_price" json:"unitPrice" validate:"gt=0"`
	TotalPrice types.Money    `db:"total_price" json:"totalPrice"`
	Notes      string         `db:"notes" json:"notes,omitempty" validate:"max=500"`
}

// Priced fills TotalPrice and LineNumber for every line and returns the
// subtotal. The subtotal is the exact sum of quantity × unit price rounded
// once, so it can differ by a cent from the sum of the rounded line totals.
func Priced(lines []LineItem) types.Money {
	subtotal := decimal.Zero
	for i := range lines {
		amount := lines[i].Quantity.Mul(lines[i].UnitPrice)
		lines[i].LineNumber = i + 1
		lines[i].TotalPrice = types.RoundMoney(amount)
		subtotal = subtotal.Add(amount)
	}
	return types.RoundMoney(subtotal)
}

// CloneLines copies lines so a caller can reuse them for another document.
func CloneLines(lines []LineItem) []LineItem {
	out := make([]LineItem, len(lines))
	copy(out, lines)
	return out
}
