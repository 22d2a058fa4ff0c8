package dto

import (
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/documents"
	"bakerypos/internal/domain/documents/order"
)

// CreateOrderRequest is a customer pre-order with client-priced lines.
type CreateOrderRequest struct {
	CustomerName  string               `json:"customerName" binding:"required,max=255"`
	CustomerPhone string               `json:"customerPhone" binding:"max=20"`
	OrderDate     string               `json:"orderDate"`
	DeliveryDate  string               `json:"deliveryDate"`
	AdvanceAmount types.Money          `json:"advanceAmount"`
	Notes         string               `json:"notes" binding:"max=1000"`
	Items         []documents.LineItem `json:"items" binding:"required,min=1"`
}

// ToInput converts to domain input; dates are parsed by the handler.
func (r *CreateOrderRequest) ToInput() order.Input {
	return order.Input{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		AdvanceAmount: r.AdvanceAmount,
		Notes:         r.Notes,
		Lines:         r.Items,
	}
}

// UpdateOrderStatusRequest moves an order along its workflow.
type UpdateOrderStatusRequest struct {
	Status order.Status `json:"status" binding:"required,oneof=pending in_progress ready completed cancelled"`
}

// OrderPaymentRequest adds to an order's advance.
type OrderPaymentRequest struct {
	Amount types.Money `json:"amount"`
}

// OrderListQuery filters the order list.
type OrderListQuery struct {
	PageQuery
	Status   string `form:"status" binding:"omitempty,oneof=pending in_progress ready completed cancelled"`
	From     string `form:"from"`
	To       string `form:"to"`
	Customer string `form:"customer"`
}

// PendingOrdersResponse is the open order queue.
type PendingOrdersResponse struct {
	Items []*order.Order `json:"items"`
	Count int64          `json:"count"`
}
