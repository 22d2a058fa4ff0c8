// Package order is the order engine: customer pre-orders with advance
// payments whose completion reduces inventory and hands off to billing.
package order

import (
	"context"
	"strings"
	"time"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/documents"
)

// Status is the order workflow state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusReady      Status = "ready"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// rank orders the forward workflow. Cancelled sits outside it.
var rank = map[Status]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusReady:      2,
	StatusCompleted:  3,
}

// IsValid reports whether s is one of the five statuses.
func (s Status) IsValid() bool {
	_, ok := rank[s]
	return ok || s == StatusCancelled
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the workflow allows s -> to.
// Steps may be skipped; moving backwards is not allowed.
func (s Status) CanTransition(to Status) bool {
	if s.IsTerminal() || !to.IsValid() || s == to {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return rank[to] > rank[s]
}

// PaymentStatus is derived from advance against total.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// DerivePaymentStatus: paid once advance covers total, partial for any
// positive advance below it, pending otherwise.
func DerivePaymentStatus(advance, total types.Money) PaymentStatus {
	switch {
	case advance.GreaterThanOrEqual(total):
		return PaymentPaid
	case advance.IsPositive():
		return PaymentPartial
	default:
		return PaymentPending
	}
}

// Order is a customer pre-order.
type Order struct {
	entity.Document

	OrderNumber   string        `db:"order_number" json:"orderNumber"`
	CustomerName  string        `db:"customer_name" json:"customerName"`
	CustomerPhone string        `db:"customer_phone" json:"customerPhone,omitempty"`
	OrderDate     time.Time     `db:"order_date" json:"orderDate"`
	DeliveryDate  *time.Time    `db:"delivery_date" json:"deliveryDate,omitempty"`
	TotalAmount   types.Money   `db:"total_amount" json:"totalAmount"`
	AdvanceAmount types.Money   `db:"advance_amount" json:"advanceAmount"`
	BalanceAmount types.Money   `db:"balance_amount" json:"balanceAmount"`
	Status        Status        `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
	CreatedBy     *id.ID        `db:"created_by" json:"createdBy,omitempty"`

	Lines []documents.LineItem `db:"-" json:"items"`
}

// Input is what the caller supplies for a new order.
type Input struct {
	CustomerName  string
	CustomerPhone string
	OrderDate     *time.Time // defaults to today
	DeliveryDate  *time.Time
	AdvanceAmount types.Money
	Notes         string
	Lines         []documents.LineItem
}

// Validate checks the input before any transaction begins.
func (in *Input) Validate(_ context.Context) error {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	if in.CustomerName == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "customerName")
	}
	if len(in.CustomerName) > 255 {
		return apperror.NewValidation("customer name is too long").
			WithDetail("field", "customerName")
	}
	if err := documents.ValidateLines(in.Lines); err != nil {
		return err
	}
	if in.AdvanceAmount.IsNegative() {
		return apperror.NewValidation("advance amount must not be negative").
			WithDetail("field", "advanceAmount")
	}
	if in.OrderDate != nil && in.DeliveryDate != nil && in.DeliveryDate.Before(*in.OrderDate) {
		return apperror.NewValidation("delivery date is before order date").
			WithDetail("field", "deliveryDate")
	}
	return nil
}

// Result is returned by CreateOrder.
type Result struct {
	OrderID       id.ID                `json:"orderId"`
	OrderNumber   string               `json:"orderNumber"`
	OrderDate     time.Time            `json:"orderDate"`
	DeliveryDate  *time.Time           `json:"deliveryDate,omitempty"`
	CustomerName  string               `json:"customerName"`
	TotalAmount   types.Money          `json:"totalAmount"`
	AdvanceAmount types.Money          `json:"advanceAmount"`
	BalanceAmount types.Money          `json:"balanceAmount"`
	PaymentStatus PaymentStatus        `json:"paymentStatus"`
	Items         []documents.LineItem `json:"items"`
}

func resultOf(o *Order) *Result {
	return &Result{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		OrderDate:     o.OrderDate,
		DeliveryDate:  o.DeliveryDate,
		CustomerName:  o.CustomerName,
		TotalAmount:   o.TotalAmount,
		AdvanceAmount: o.AdvanceAmount,
		BalanceAmount: o.BalanceAmount,
		PaymentStatus: o.PaymentStatus,
		Items:         o.Lines,
	}
}

// ListFilter narrows ListOrders.
type ListFilter struct {
	Status   Status
	From     *time.Time
	To       *time.Time
	Customer string // substring of name or phone
	Limit    int
	Offset   int
}
