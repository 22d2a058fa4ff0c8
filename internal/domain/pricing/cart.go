package pricing

import (
	"context"
	"time"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/documents"
)

// ProductInfo is what cart pricing needs to know about a product.
type ProductInfo struct {
	ID     id.ID
	Name   string
	Rate   Rate
	Active bool
}

// StockItemInfo is what cart pricing needs to know about a stock item.
type StockItemInfo struct {
	ID        id.ID
	Name      string
	UnitPrice types.Money
	Sellable  bool
	Active    bool
}

// ItemSource looks up catalog records for pricing. A missing record is
// reported as an apperror NotFound.
type ItemSource interface {
	ProductInfo(ctx context.Context, productID id.ID) (ProductInfo, error)
	StockItemInfo(ctx context.Context, itemID id.ID) (StockItemInfo, error)
}

// PriceCart turns till cart lines into priced line items. Products are priced
// by the quote, stock items at their unit price. Names are captured now.
func PriceCart(ctx context.Context, quote Quote, cart []documents.CartLine, src ItemSource) ([]documents.LineItem, error) {
	if err := documents.ValidateCart(cart); err != nil {
		return nil, err
	}

	lines := make([]documents.LineItem, 0, len(cart))
	for _, c := range cart {
		line := documents.LineItem{
			ItemType: c.ItemType,
			ItemID:   c.ItemID,
			Quantity: c.Quantity,
			Notes:    c.Notes,
		}

		switch c.ItemType {
		case documents.ItemProduct:
			p, err := src.ProductInfo(ctx, c.ItemID)
			if err != nil {
				return nil, err
			}
			if !p.Active {
				return nil, apperror.NewNotFound("product", c.ItemID.String())
			}
			line.ItemName = p.Name
			line.UnitPrice = quote.Price(p.Rate)

		case documents.ItemStockItem:
			si, err := src.StockItemInfo(ctx, c.ItemID)
			if err != nil {
				return nil, err
			}
			if !si.Active {
				return nil, apperror.NewNotFound("stock item", c.ItemID.String())
			}
			if !si.Sellable {
				return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "stock item is not sellable").
					WithDetail("itemId", c.ItemID.String()).
					WithDetail("name", si.Name)
			}
			line.ItemName = si.Name
			line.UnitPrice = si.UnitPrice
		}

		lines = append(lines, line)
	}

	documents.Priced(lines)
	return lines, nil
}

// Pricer prices till carts at the moment of the sale.
type Pricer struct {
	policy *Policy
	src    ItemSource
	now    func() time.Time
}

// NewPricer creates a Pricer. now defaults to time.Now.
func NewPricer(policy *Policy, src ItemSource, now func() time.Time) *Pricer {
	if now == nil {
		now = time.Now
	}
	return &Pricer{policy: policy, src: src, now: now}
}

// Price snapshots the policy now and prices cart with it.
func (p *Pricer) Price(ctx context.Context, cart []documents.CartLine) ([]documents.LineItem, error) {
	return PriceCart(ctx, p.policy.Snapshot(ctx, p.now()), cart, p.src)
}
