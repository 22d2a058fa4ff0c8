package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
	"bakerypos/pkg/logger"
)

var _ domain.EventPublisher = (*OutboxPublisher)(nil)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// maxOutboxRetries is the number of handler failures after which a message is parked as failed.
const maxOutboxRetries = 5

// OutboxMessage represents a message in the transactional outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	AggregateType string       `db:"aggregate_type"` // bill, order, supplier_payment, stock
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"` // BillCreated, OrderCompleted, ...
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

// OutboxPublisher writes domain events to sys_outbox in the business transaction.
type OutboxPublisher struct {
	txManager *TxManager
}

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txManager: txManager}
}

// Publish writes an event to the outbox within the current transaction.
func (p *OutboxPublisher) Publish(ctx context.Context, event domain.Event) error {
	tx := p.txManager.GetTx(ctx)
	if tx == nil {
		return errors.New("outbox publish requires transaction context")
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sys_outbox (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id.New(), event.AggregateType, event.AggregateID, event.EventType, payload, OutboxStatusPending, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// OutboxHandler processes outbox messages.
type OutboxHandler interface {
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxHandlerFunc adapts a function to OutboxHandler.
type OutboxHandlerFunc func(ctx context.Context, msg *OutboxMessage) error

// Handle calls f.
func (f OutboxHandlerFunc) Handle(ctx context.Context, msg *OutboxMessage) error {
	return f(ctx, msg)
}

// OutboxRelay drains pending messages for the background worker.
type OutboxRelay struct {
	txManager *TxManager
	batchSize int
	handler   OutboxHandler
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(txManager *TxManager, batchSize int, handler OutboxHandler) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{txManager: txManager, batchSize: batchSize, handler: handler}
}

// ProcessBatch locks a batch of due messages, hands each to the handler and
// records the outcome. Returns number of published messages.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	processed := 0
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q := r.txManager.GetQuerier(ctx)
		rows, err := q.Query(ctx, `
			SELECT id, aggregate_type, aggregate_id, event_type, payload, status,
			       retry_count, last_error, next_retry_at, created_at, published_at
			FROM sys_outbox
			WHERE status = $1
			  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED`, OutboxStatusPending, r.batchSize)
		if err != nil {
			return fmt.Errorf("fetch outbox messages: %w", err)
		}

		var messages []*OutboxMessage
		for rows.Next() {
			var msg OutboxMessage
			if err := rows.Scan(
				&msg.ID, &msg.AggregateType, &msg.AggregateID, &msg.EventType,
				&msg.Payload, &msg.Status, &msg.RetryCount, &msg.LastError,
				&msg.NextRetryAt, &msg.CreatedAt, &msg.PublishedAt,
			); err != nil {
				rows.Close()
				return fmt.Errorf("scan outbox message: %w", err)
			}
			messages = append(messages, &msg)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate outbox messages: %w", err)
		}

		for _, msg := range messages {
			ok, err := r.processMessage(ctx, msg)
			if err != nil {
				return err
			}
			if ok {
				processed++
			}
		}
		return nil
	})
	return processed, err
}

func (r *OutboxRelay) processMessage(ctx context.Context, msg *OutboxMessage) (bool, error) {
	q := r.txManager.GetQuerier(ctx)

	if handleErr := r.handler.Handle(ctx, msg); handleErr != nil {
		logger.Warn(ctx, "outbox handler failed",
			"message_id", msg.ID, "event_type", msg.EventType, "retry", msg.RetryCount, "error", handleErr)

		status := OutboxStatusPending
		if msg.RetryCount+1 >= maxOutboxRetries {
			status = OutboxStatusFailed
		}
		nextRetry := time.Now().UTC().Add(time.Duration(msg.RetryCount+1) * time.Minute)
		if _, err := q.Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = retry_count + 1, last_error = $1, next_retry_at = $2, status = $3
			WHERE id = $4`, handleErr.Error(), nextRetry, status, msg.ID); err != nil {
			return false, fmt.Errorf("update failed message: %w", err)
		}
		return false, nil
	}

	if _, err := q.Exec(ctx, `
		UPDATE sys_outbox SET status = $1, published_at = $2 WHERE id = $3`,
		OutboxStatusPublished, time.Now().UTC(), msg.ID); err != nil {
		return false, fmt.Errorf("mark message published: %w", err)
	}
	return true, nil
}

// PurgePublished deletes published messages older than cutoff.
func (r *OutboxRelay) PurgePublished(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_outbox WHERE status = $1 AND published_at < $2`,
		OutboxStatusPublished, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	return tag.RowsAffected(), nil
}
