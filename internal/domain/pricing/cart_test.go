package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/documents"
)

type memSource struct {
	products   map[id.ID]ProductInfo
	stockItems map[id.ID]StockItemInfo
}

func (m *memSource) ProductInfo(_ context.Context, productID id.ID) (ProductInfo, error) {
	p, ok := m.products[productID]
	if !ok {
		return ProductInfo{}, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (m *memSource) StockItemInfo(_ context.Context, itemID id.ID) (StockItemInfo, error) {
	si, ok := m.stockItems[itemID]
	if !ok {
		return StockItemInfo{}, apperror.NewNotFound("stock item", itemID.String())
	}
	return si, nil
}

func newSource() (*memSource, id.ID, id.ID) {
	productID, itemID := id.New(), id.New()
	special := types.MustMoney("40")
	return &memSource{
		products: map[id.ID]ProductInfo{
			productID: {ID: productID, Name: "Fish bun", Active: true, Rate: Rate{
				Price: types.MustMoney("50"), SpecialPrice: &special, IsSpecialPricing: true,
			}},
		},
		stockItems: map[id.ID]StockItemInfo{
			itemID: {ID: itemID, Name: "Candle", UnitPrice: types.MustMoney("30"), Sellable: true, Active: true},
		},
	}, productID, itemID
}

func quoteAt(t *testing.T, hour int) Quote {
	p, err := NewPolicy(Config{StartHour: 19})
	require.NoError(t, err)
	return p.Snapshot(context.Background(), time.Date(2026, 10, 19, hour, 0, 0, 0, time.UTC))
}

func TestPriceCart(t *testing.T) {
	src, productID, itemID := newSource()
	cart := []documents.CartLine{
		{ItemType: documents.ItemProduct, ItemID: productID, Quantity: types.MustMoney("2")},
		{ItemType: documents.ItemStockItem, ItemID: itemID, Quantity: types.MustMoney("1"), Notes: "birthday"},
	}

	lines, err := PriceCart(context.Background(), quoteAt(t, 10), cart, src)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "Fish bun", lines[0].ItemName)
	assert.Equal(t, "50", lines[0].UnitPrice.String())
	assert.Equal(t, "100.00", lines[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "Candle", lines[1].ItemName)
	assert.Equal(t, "30", lines[1].UnitPrice.String())
	assert.Equal(t, "birthday", lines[1].Notes)
	assert.Equal(t, 2, lines[1].LineNumber)

	evening, err := PriceCart(context.Background(), quoteAt(t, 20), cart, src)
	require.NoError(t, err)
	assert.Equal(t, "40", evening[0].UnitPrice.String())
	assert.Equal(t, "30", evening[1].UnitPrice.String())
}

func TestPriceCart_Rejects(t *testing.T) {
	src, productID, itemID := newSource()

	t.Run("empty cart", func(t *testing.T) {
		_, err := PriceCart(context.Background(), quoteAt(t, 10), nil, src)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := PriceCart(context.Background(), quoteAt(t, 10), []documents.CartLine{
			{ItemType: documents.ItemProduct, ItemID: id.New(), Quantity: types.MustMoney("1")},
		}, src)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("inactive product", func(t *testing.T) {
		p := src.products[productID]
		p.Active = false
		src.products[productID] = p
		defer func() { p.Active = true; src.products[productID] = p }()

		_, err := PriceCart(context.Background(), quoteAt(t, 10), []documents.CartLine{
			{ItemType: documents.ItemProduct, ItemID: productID, Quantity: types.MustMoney("1")},
		}, src)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("not sellable", func(t *testing.T) {
		si := src.stockItems[itemID]
		si.Sellable = false
		src.stockItems[itemID] = si

		_, err := PriceCart(context.Background(), quoteAt(t, 10), []documents.CartLine{
			{ItemType: documents.ItemStockItem, ItemID: itemID, Quantity: types.MustMoney("1")},
		}, src)
		assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
	})
}

func TestPricer_UsesClock(t *testing.T) {
	src, productID, _ := newSource()
	policy, err := NewPolicy(Config{StartHour: 19})
	require.NoError(t, err)

	at := time.Date(2026, 10, 19, 18, 59, 0, 0, time.UTC)
	pricer := NewPricer(policy, src, func() time.Time { return at })
	cart := []documents.CartLine{{ItemType: documents.ItemProduct, ItemID: productID, Quantity: types.MustMoney("2")}}

	lines, err := pricer.Price(context.Background(), cart)
	require.NoError(t, err)
	assert.True(t, lines[0].UnitPrice.Equal(types.MustMoney("50")))

	at = at.Add(time.Minute)
	lines, err = pricer.Price(context.Background(), cart)
	require.NoError(t, err)
	assert.True(t, lines[0].UnitPrice.Equal(types.MustMoney("40")))
	assert.True(t, lines[0].TotalPrice.Equal(types.MustMoney("80")))
}
