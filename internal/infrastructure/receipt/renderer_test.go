package receipt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/domain/documents"
	"bakerypos/internal/domain/documents/bill"
	"bakerypos/internal/domain/shop"
)

type staticProfile func(context.Context) (*shop.Profile, error)

func (f staticProfile) Profile(ctx context.Context) (*shop.Profile, error) { return f(ctx) }

func profileOf(p shop.Profile) staticProfile {
	return func(context.Context) (*shop.Profile, error) { return &p, nil }
}

func TestRenderer_Money(t *testing.T) {
	r := NewRenderer(profileOf(shop.Profile{}), nil)

	assert.Equal(t, "Rs. 1,234.50", r.Money("Rs.", decimal.RequireFromString("1234.5")))
	assert.Equal(t, "Rs. 0.00", r.Money("Rs.", decimal.Zero))
	assert.Equal(t, "12.00", r.Money("", decimal.NewFromInt(12)))
}

func TestRenderer_RenderProducesPDF(t *testing.T) {
	r := NewRenderer(profileOf(shop.Profile{Name: "Corner Bakery", Address: "12 Galle Rd", ReceiptFooter: "Thank you!"}), time.UTC)

	pdf, err := r.Render(context.Background(), sampleBill())
	require.NoError(t, err)
	require.Greater(t, len(pdf), 4)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestRenderer_ProfileErrorFailsRender(t *testing.T) {
	boom := errors.New("db down")
	r := NewRenderer(staticProfile(func(context.Context) (*shop.Profile, error) { return nil, boom }), time.UTC)

	pdf, err := r.Render(context.Background(), sampleBill())
	require.ErrorIs(t, err, boom)
	assert.Nil(t, pdf)
}

func sampleBill() *bill.Bill {
	return &bill.Bill{
		Document:       entity.NewDocument(),
		BillNumber:     "B-20260310-0001",
		Subtotal:       decimal.NewFromInt(260),
		DiscountAmount: decimal.Zero,
		Total:          decimal.NewFromInt(260),
		PaymentMethod:  bill.PaymentCash,
		AmountPaid:     decimal.NewFromInt(500),
		ChangeAmount:   decimal.NewFromInt(240),
		Status:         bill.StatusCompleted,
		Lines: []documents.LineItem{{
			LineNumber: 1,
			ItemType:   documents.ItemProduct,
			ItemID:     id.New(),
			ItemName:   "Fish bun",
			Quantity:   decimal.NewFromInt(2),
			UnitPrice:  decimal.NewFromInt(130),
			TotalPrice: decimal.NewFromInt(260),
		}},
	}
}
