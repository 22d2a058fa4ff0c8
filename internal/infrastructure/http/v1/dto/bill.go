package dto

import (
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/documents"
	"bakerypos/internal/domain/documents/bill"
)

// CreateBillRequest is a till checkout. Prices are resolved server-side.
type CreateBillRequest struct {
	Items           []documents.CartLine `json:"items" binding:"required,min=1"`
	DiscountPercent types.Money          `json:"discountPercent"`
	PaymentMethod   bill.PaymentMethod   `json:"paymentMethod" binding:"omitempty,oneof=cash card"`
	AmountPaid      *types.Money         `json:"amountPaid"`
	Notes           string               `json:"notes" binding:"max=500"`
}

// ToInput builds the billing input from priced lines.
func (r *CreateBillRequest) ToInput(lines []documents.LineItem) bill.Input {
	return bill.Input{
		DiscountPercent: r.DiscountPercent,
		PaymentMethod:   r.PaymentMethod,
		AmountPaid:      r.AmountPaid,
		Notes:           r.Notes,
		Lines:           lines,
	}
}

// BillListQuery filters the bill list. Dates are YYYY-MM-DD in shop time.
type BillListQuery struct {
	PageQuery
	From      string `form:"from"`
	To        string `form:"to"`
	Status    string `form:"status" binding:"omitempty,oneof=completed cancelled"`
	CashierID string `form:"cashierId" binding:"omitempty,uuid"`
}

// CancelBillResponse reports whether the call changed the bill.
type CancelBillResponse struct {
	Cancelled bool `json:"cancelled"`
}
