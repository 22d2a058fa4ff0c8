// Package supplierledger keeps one signed stream of entries per supplier.
// A negative amount records a purchase (the bakery owes more), a positive
// amount records a payment made to the supplier.
package supplierledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
)

// PaymentMethod of a ledger entry.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheque       PaymentMethod = "cheque"
)

// IsValid reports whether m is a known method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodCard, MethodBankTransfer, MethodCheque:
		return true
	}
	return false
}

// Payment is one ledger entry.
type Payment struct {
	ID              id.ID         `db:"id" json:"id"`
	SupplierID      id.ID         `db:"supplier_id" json:"supplierId"`
	Amount          types.Money   `db:"amount" json:"amount"`
	PaymentDate     time.Time     `db:"payment_date" json:"paymentDate"`
	PaymentMethod   PaymentMethod `db:"payment_method" json:"paymentMethod"`
	ReferenceNumber *string       `db:"reference_number" json:"referenceNumber,omitempty"`
	Notes           *string       `db:"notes" json:"notes,omitempty"`
	CreatedBy       *id.ID        `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt       time.Time     `db:"created_at" json:"createdAt"`
}

// IsPurchase reports whether the entry records goods bought.
func (p *Payment) IsPurchase() bool {
	return p.Amount.IsNegative()
}

// PaymentView is an entry joined with its supplier name.
type PaymentView struct {
	Payment
	SupplierName string `db:"supplier_name" json:"supplierName"`
}

// PaymentInput is what the caller supplies for a new entry.
type PaymentInput struct {
	SupplierID id.ID
	Amount     types.Money
	Date       *time.Time // defaults to today
	Method     PaymentMethod
	Reference  string
	Notes      string
}

// Validate checks the input.
func (in *PaymentInput) Validate(_ context.Context) error {
	if id.IsNil(in.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if in.Amount.IsZero() {
		return apperror.NewValidation("amount must not be zero").
			WithDetail("field", "amount")
	}
	if in.Method == "" {
		in.Method = MethodCash
	}
	if !in.Method.IsValid() {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(in.Method))
	}
	if len(in.Reference) > 100 {
		return apperror.NewValidation("reference is too long").
			WithDetail("field", "referenceNumber")
	}
	return nil
}

// Summary totals a supplier's ledger.
type Summary struct {
	SupplierID     id.ID       `db:"supplier_id" json:"supplierId"`
	TotalPurchases types.Money `db:"total_purchases" json:"totalPurchases"`
	TotalPaid      types.Money `db:"total_paid" json:"totalPaid"`
	Outstanding    types.Money `db:"outstanding" json:"outstanding"`
	EntryCount     int64       `db:"entry_count" json:"entryCount"`
}

// SupplierBalance is a supplier row with its ledger totals.
type SupplierBalance struct {
	Summary
	Name   string `db:"name" json:"name"`
	Status string `db:"status" json:"status"`
}

// Summarize applies the ledger rule to a list of signed amounts:
// outstanding = max(0, sum of purchases - sum of payments).
func Summarize(amounts []types.Money) Summary {
	purchases, paid := decimal.Zero, decimal.Zero
	for _, a := range amounts {
		if a.IsNegative() {
			purchases = purchases.Add(a.Abs())
		} else {
			paid = paid.Add(a)
		}
	}
	return Summary{
		TotalPurchases: purchases,
		TotalPaid:      paid,
		Outstanding:    types.MaxZero(purchases.Sub(paid)),
		EntryCount:     int64(len(amounts)),
	}
}

// Balance is the outstanding amount for a list of signed amounts.
func Balance(amounts []types.Money) types.Money {
	return Summarize(amounts).Outstanding
}
