package main

import (
	"context"

	"bakerypos/internal/domain"
	"bakerypos/internal/infrastructure/storage/postgres"
	"bakerypos/pkg/logger"
)

// catalogInvalidator drops cached POS catalogs.
type catalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

// EventHandler consumes outbox messages. Events that move stock balances
// invalidate the cached POS catalog, which shows them.
type EventHandler struct {
	log     *logger.Logger
	catalog catalogInvalidator // nil without Redis
}

var _ postgres.OutboxHandler = (*EventHandler)(nil)

// Handle implements postgres.OutboxHandler.
func (h *EventHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	h.log.Infow("event",
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"retry", msg.RetryCount)

	if h.catalog == nil || !movesStock(msg.EventType) {
		return nil
	}
	return h.catalog.Invalidate(ctx)
}

func movesStock(eventType string) bool {
	switch eventType {
	case domain.EventBillCreated, domain.EventOrderCompleted,
		domain.EventStockAdded, domain.EventStockBalanceClear:
		return true
	}
	return false
}
