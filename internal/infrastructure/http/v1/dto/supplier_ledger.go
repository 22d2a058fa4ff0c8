package dto

import (
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/registers/supplierledger"
)

// SupplierPaymentRequest records a ledger entry. A negative amount is a
// purchase on credit, a positive one a payment.
type SupplierPaymentRequest struct {
	Amount          types.Money                  `json:"amount"`
	PaymentDate     string                       `json:"paymentDate"`
	PaymentMethod   supplierledger.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=cash card bank_transfer cheque"`
	ReferenceNumber string                       `json:"referenceNumber" binding:"max=100"`
	Notes           string                       `json:"notes" binding:"max=1000"`
}

// ToInput converts to domain input; the date is parsed by the handler.
func (r *SupplierPaymentRequest) ToInput(supplierID id.ID) supplierledger.PaymentInput {
	return supplierledger.PaymentInput{
		SupplierID: supplierID,
		Amount:     r.Amount,
		Method:     r.PaymentMethod,
		Reference:  r.ReferenceNumber,
		Notes:      r.Notes,
	}
}
