package domain

import (
	"context"

	"bakerypos/internal/core/id"
)

// AuditAction names an audited operation.
type AuditAction string

const (
	AuditCreate     AuditAction = "create"
	AuditUpdate     AuditAction = "update"
	AuditDeactivate AuditAction = "deactivate"
	AuditCancel     AuditAction = "cancel"
	AuditStatus     AuditAction = "status"
	AuditComplete   AuditAction = "complete"
	AuditPayment    AuditAction = "payment"
)

// Auditor stores a snapshot of an entity after a state change.
// Called inside the business transaction; a failure rolls the change back.
type Auditor interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action AuditAction, snapshot any) error
}

// Event is a domain event written to the transactional outbox.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// EventPublisher enqueues events in the current transaction.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Event types.
const (
	EventBillCreated       = "BillCreated"
	EventBillCancelled     = "BillCancelled"
	EventOrderCreated      = "OrderCreated"
	EventOrderStatus       = "OrderStatusChanged"
	EventOrderCompleted    = "OrderCompleted"
	EventOrderPayment      = "OrderPaymentAdded"
	EventSupplierPayment   = "SupplierPaymentAdded"
	EventStockAdded        = "StockAdded"
	EventStockBalanceClear = "StockBalanceCleared"
)
