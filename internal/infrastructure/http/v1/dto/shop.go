package dto

import "bakerypos/internal/domain/shop"

// UpdateShopRequest edits the shop profile printed on receipts.
type UpdateShopRequest struct {
	Name          *string `json:"name" binding:"omitempty,max=200"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
	Phone         *string `json:"phone" binding:"omitempty,max=30"`
	Email         *string `json:"email" binding:"omitempty,max=255"`
	Currency      *string `json:"currency" binding:"omitempty,max=10"`
	ReceiptFooter *string `json:"receiptFooter" binding:"omitempty,max=500"`
	Version       int     `json:"version" binding:"min=0"`
}

// ToInput converts to domain input.
func (r *UpdateShopRequest) ToInput() shop.UpdateInput {
	return shop.UpdateInput{
		Name:          r.Name,
		Address:       r.Address,
		Phone:         r.Phone,
		Email:         r.Email,
		Currency:      r.Currency,
		ReceiptFooter: r.ReceiptFooter,
		Version:       r.Version,
	}
}
