package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
)

func line(t ItemType, qty, price string) LineItem {
	return LineItem{
		ItemType:  t,
		ItemID:    id.New(),
		ItemName:  "item",
		Quantity:  types.MustMoney(qty),
		UnitPrice: types.MustMoney(price),
	}
}

func TestPriced(t *testing.T) {
	lines := []LineItem{
		line(ItemProduct, "2", "50"),
		line(ItemStockItem, "1", "30"),
		line(ItemProduct, "0.5", "12.25"),
	}

	subtotal := Priced(lines)

	assert.Equal(t, "136.13", subtotal.StringFixed(2))
	assert.Equal(t, 1, lines[0].LineNumber)
	assert.Equal(t, 3, lines[2].LineNumber)
	assert.Equal(t, "100.00", lines[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "6.13", lines[2].TotalPrice.StringFixed(2))
}

func TestPriced_RoundsSubtotalOnce(t *testing.T) {
	lines := []LineItem{
		line(ItemProduct, "0.5", "0.25"),
		line(ItemProduct, "0.5", "0.25"),
	}

	subtotal := Priced(lines)

	assert.Equal(t, "0.25", subtotal.StringFixed(2))
	assert.Equal(t, "0.13", lines[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "0.13", lines[1].TotalPrice.StringFixed(2))
}

func TestValidateLines(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		err := ValidateLines(nil)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		err := ValidateLines([]LineItem{line(ItemProduct, "1", "10"), line(ItemProduct, "0", "10")})
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
		assert.Equal(t, 2, appErr.Details["line"])
		assert.Equal(t, "quantity", appErr.Details["field"])
	})

	t.Run("non-positive price", func(t *testing.T) {
		err := ValidateLines([]LineItem{line(ItemStockItem, "1", "-5")})
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "unitPrice", appErr.Details["field"])
	})

	t.Run("unknown item type", func(t *testing.T) {
		err := ValidateLines([]LineItem{line("gift_card", "1", "5")})
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	})

	t.Run("missing item id", func(t *testing.T) {
		l := line(ItemProduct, "1", "5")
		l.ItemID = id.ID{}
		err := ValidateLines([]LineItem{l})
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "itemId", appErr.Details["field"])
	})

	t.Run("fractional quantity", func(t *testing.T) {
		assert.NoError(t, ValidateLines([]LineItem{line(ItemProduct, "0.25", "80")}))
	})
}

func TestValidateCart(t *testing.T) {
	assert.Error(t, ValidateCart([]CartLine{}))
	assert.NoError(t, ValidateCart([]CartLine{{ItemType: ItemProduct, ItemID: id.New(), Quantity: decimal.NewFromInt(1)}}))
	assert.Error(t, ValidateCart([]CartLine{{ItemType: ItemProduct, ItemID: id.New(), Quantity: decimal.NewFromInt(-1)}}))
}

type reduceCall struct {
	kind ItemType
	id   id.ID
	qty  string
	day  time.Time
}

type recordingReducer struct {
	calls  []reduceCall
	failOn ItemType
}

func (r *recordingReducer) ReduceStock(_ context.Context, productID id.ID, qty types.Quantity, day time.Time) error {
	if r.failOn == ItemProduct {
		return errors.New("stock row locked")
	}
	r.calls = append(r.calls, reduceCall{ItemProduct, productID, qty.String(), day})
	return nil
}

func (r *recordingReducer) ReduceStockItemQuantity(_ context.Context, itemID id.ID, qty types.Quantity) error {
	if r.failOn == ItemStockItem {
		return errors.New("stock item missing")
	}
	r.calls = append(r.calls, reduceCall{ItemStockItem, itemID, qty.String(), time.Time{}})
	return nil
}

func TestReduceInventory_RoutesByItemType(t *testing.T) {
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	lines := []LineItem{line(ItemProduct, "2", "50"), line(ItemStockItem, "1", "30")}
	Priced(lines)

	r := &recordingReducer{}
	require.NoError(t, ReduceInventory(context.Background(), r, lines, day))

	require.Len(t, r.calls, 2)
	assert.Equal(t, ItemProduct, r.calls[0].kind)
	assert.Equal(t, lines[0].ItemID, r.calls[0].id)
	assert.Equal(t, "2", r.calls[0].qty)
	assert.Equal(t, day, r.calls[0].day)
	assert.Equal(t, ItemStockItem, r.calls[1].kind)
	assert.Equal(t, "1", r.calls[1].qty)
}

func TestReduceInventory_PropagatesFailure(t *testing.T) {
	lines := []LineItem{line(ItemStockItem, "1", "30")}
	Priced(lines)

	err := ReduceInventory(context.Background(), &recordingReducer{failOn: ItemStockItem}, lines, time.Now())
	assert.ErrorContains(t, err, "line 1")
}
