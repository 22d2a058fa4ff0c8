package documents

import (
	"context"
	"fmt"
	"time"

	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
)

// InventoryReducer is the part of the inventory ledger documents consume.
type InventoryReducer interface {
	ReduceStock(ctx context.Context, productID id.ID, qty types.Quantity, day time.Time) error
	ReduceStockItemQuantity(ctx context.Context, itemID id.ID, qty types.Quantity) error
}

// ReduceInventory routes each line to the ledger of its item type.
// Must run inside the document's transaction.
func ReduceInventory(ctx context.Context, inv InventoryReducer, lines []LineItem, day time.Time) error {
	for _, line := range lines {
		var err error
		switch line.ItemType {
		case ItemProduct:
			err = inv.ReduceStock(ctx, line.ItemID, line.Quantity, day)
		case ItemStockItem:
			err = inv.ReduceStockItemQuantity(ctx, line.ItemID, line.Quantity)
		default:
			err = fmt.Errorf("unknown item type %q", line.ItemType)
		}
		if err != nil {
			return fmt.Errorf("reduce inventory for line %d: %w", line.LineNumber, err)
		}
	}
	return nil
}
