// Package bill is the billing engine: a priced cart becomes a persisted bill
// with its lines and inventory reductions in one transaction.
package bill

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/documents"
)

// Status of a bill. Bills are born completed; a POS sale has no pending state.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PaymentMethod accepted at the till.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// IsValid reports whether m is accepted.
func (m PaymentMethod) IsValid() bool {
	return m == PaymentCash || m == PaymentCard
}

var maxDiscount = decimal.NewFromInt(100)

// Bill is a completed sale.
type Bill struct {
	entity.Document

	BillNumber      string        `db:"bill_number" json:"billNumber"`
	Subtotal        types.Money   `db:"subtotal" json:"subtotal"`
	DiscountPercent types.Money   `db:"discount_percent" json:"discountPercent"`
	DiscountAmount  types.Money   `db:"discount_amount" json:"discountAmount"`
	TaxAmount       types.Money   `db:"tax_amount" json:"taxAmount"`
	Total           types.Money   `db:"total" json:"total"`
	PaymentMethod   PaymentMethod `db:"payment_method" json:"paymentMethod"`
	AmountPaid      types.Money   `db:"amount_paid" json:"amountPaid"`
	ChangeAmount    types.Money   `db:"change_amount" json:"changeAmount"`
	CashierID       *id.ID        `db:"cashier_id" json:"cashierId,omitempty"`
	Status          Status        `db:"status" json:"status"`

	Lines []documents.LineItem `db:"-" json:"items"`
}

// Input is what the caller supplies for a new bill. Lines must already carry
// the unit prices to charge.
type Input struct {
	DiscountPercent types.Money
	PaymentMethod   PaymentMethod
	AmountPaid      *types.Money // defaults to the total
	Notes           string
	Lines           []documents.LineItem
}

// Validate checks the input before any transaction begins.
func (in *Input) Validate(_ context.Context) error {
	if err := documents.ValidateLines(in.Lines); err != nil {
		return err
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(maxDiscount) {
		return apperror.NewValidation("discount must be between 0 and 100").
			WithDetail("field", "discountPercent").
			WithDetail("value", in.DiscountPercent.String())
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = PaymentCash
	}
	if !in.PaymentMethod.IsValid() {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(in.PaymentMethod))
	}
	if in.AmountPaid != nil && in.AmountPaid.IsNegative() {
		return apperror.NewValidation("amount paid must not be negative").
			WithDetail("field", "amountPaid")
	}
	return nil
}

// Options tune CreateBill for callers other than the till.
type Options struct {
	// UpdateInventory reduces stock per line (false for order completion,
	// which reduces inventory itself).
	UpdateInventory bool

	// ForcedNumber replaces the generated number (order completion reuses
	// the order number so the receipt traces back to the order).
	ForcedNumber string
}

// DefaultOptions is a till sale.
func DefaultOptions() Options {
	return Options{UpdateInventory: true}
}

// Totals is the money side of a bill.
type Totals struct {
	Subtotal       types.Money
	DiscountAmount types.Money
	Total          types.Money
}

// ComputeTotals prices lines in place and applies the discount.
// Amounts are rounded half up to 2 decimals.
func ComputeTotals(lines []documents.LineItem, discountPercent types.Money) Totals {
	subtotal := documents.Priced(lines)
	discount := types.PercentOf(subtotal, discountPercent)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          types.RoundMoney(subtotal.Sub(discount)),
	}
}

// Result is returned by CreateBill.
type Result struct {
	BillID         id.ID                `json:"billId"`
	BillNumber     string               `json:"billNumber"`
	Subtotal       types.Money          `json:"subtotal"`
	DiscountAmount types.Money          `json:"discountAmount"`
	Total          types.Money          `json:"total"`
	AmountPaid     types.Money          `json:"amountPaid"`
	ChangeAmount   types.Money          `json:"changeAmount"`
	CreatedAt      time.Time            `json:"createdAt"`
	Items          []documents.LineItem `json:"items"`
}

func resultOf(b *Bill) *Result {
	return &Result{
		BillID:         b.ID,
		BillNumber:     b.BillNumber,
		Subtotal:       b.Subtotal,
		DiscountAmount: b.DiscountAmount,
		Total:          b.Total,
		AmountPaid:     b.AmountPaid,
		ChangeAmount:   b.ChangeAmount,
		CreatedAt:      b.CreatedAt,
		Items:          b.Lines,
	}
}

// ListFilter narrows ListBills.
type ListFilter struct {
	From      *time.Time
	To        *time.Time // inclusive day
	Status    Status
	CashierID *id.ID
	Limit     int
	Offset    int
}
