package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bakerypos/internal/core/apperror"
)

// IdempotencyStatus represents the state of an idempotent operation.
type IdempotencyStatus string

const (
	IdempotencyStatusPending IdempotencyStatus = "pending"
	IdempotencyStatusSuccess IdempotencyStatus = "success"
	IdempotencyStatusFailed  IdempotencyStatus = "failed"
)

// staleAfter is how long a pending key may sit before another request may reclaim it.
const staleAfter = time.Minute

// IdempotencyRecord stores the result of an idempotent operation.
type IdempotencyRecord struct {
	Key         string            `db:"idempotency_key"`
	UserID      string            `db:"user_id"`
	Operation   string            `db:"operation"`
	Status      IdempotencyStatus `db:"status"`
	RequestHash string            `db:"request_hash"`
	Response    []byte            `db:"response"`
	StatusCode  *int              `db:"response_status"`
	ContentType *string           `db:"response_content_type"`
	CreatedAt   time.Time         `db:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"`
	ExpiresAt   time.Time         `db:"expires_at"`
}

// IdempotencyReplay is the cached HTTP response for replay.
type IdempotencyReplay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IdempotencyStore guards POST/PUT/PATCH requests carrying X-Idempotency-Key,
// so a retried "create bill" from a flaky till does not sell twice.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
	now       func() time.Time
}

// NewIdempotencyStore creates a new idempotency store.
func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{txManager: txManager, ttl: ttl, now: time.Now}
}

// AcquireKey attempts to acquire an idempotency key.
// Returns:
//   - (nil, nil) if key acquired successfully
//   - (replay, nil) if operation already completed (success or failed)
//   - (nil, error) if key is locked by another request or reused for a different one
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*IdempotencyReplay, error) {
	now := s.now().UTC()
	q := s.txManager.GetQuerier(ctx)

	var (
		record   IdempotencyRecord
		inserted bool
	)
	err := q.QueryRow(ctx, `
		INSERT INTO sys_idempotency (idempotency_key, user_id, operation, status, request_hash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		ON CONFLICT (idempotency_key) DO UPDATE SET expires_at = GREATEST(sys_idempotency.expires_at, EXCLUDED.expires_at)
		RETURNING user_id, operation, status, request_hash, response, response_status, response_content_type,
		          updated_at, (xmax = 0) AS inserted`,
		key, userID, operation, IdempotencyStatusPending, requestHash, now, now.Add(s.ttl),
	).Scan(
		&record.UserID, &record.Operation, &record.Status, &record.RequestHash,
		&record.Response, &record.StatusCode, &record.ContentType, &record.UpdatedAt, &inserted,
	)
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}
	if inserted {
		return nil, nil
	}

	if record.UserID != userID || record.Operation != operation || record.RequestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("operation", operation)
	}

	switch record.Status {
	case IdempotencyStatusSuccess, IdempotencyStatusFailed:
		return replayOf(&record), nil

	case IdempotencyStatusPending:
		if now.Sub(record.UpdatedAt) <= staleAfter {
			return nil, apperror.NewIdempotencyConflict(key)
		}
		tag, err := q.Exec(ctx, `
			UPDATE sys_idempotency SET updated_at = $1
			WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4`,
			now, key, IdempotencyStatusPending, record.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("reclaim stale key: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, apperror.NewIdempotencyConflict(key)
		}
		return nil, nil
	}
	return nil, nil
}

func replayOf(r *IdempotencyRecord) *IdempotencyReplay {
	replay := &IdempotencyReplay{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        r.Response,
	}
	if r.StatusCode != nil && *r.StatusCode != 0 {
		replay.StatusCode = *r.StatusCode
	}
	if r.ContentType != nil && *r.ContentType != "" {
		replay.ContentType = *r.ContentType
	}
	return replay
}

// CompleteKey stores the successful response for replay.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error {
	return s.finish(ctx, key, IdempotencyStatusSuccess, statusCode, contentType, body)
}

// FailKey stores an error response for replay.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error {
	return s.finish(ctx, key, IdempotencyStatusFailed, statusCode, contentType, body)
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, status IdempotencyStatus, statusCode int, contentType string, body []byte) error {
	if body != nil && !json.Valid(body) {
		body, _ = json.Marshal(map[string]string{"raw": string(body)})
	}
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1, response = $2, response_status = $3, response_content_type = $4, updated_at = $5
		WHERE idempotency_key = $6`,
		status, body, statusCode, contentType, s.now().UTC(), key)
	if err != nil {
		return fmt.Errorf("finish idempotency key: %w", err)
	}
	return nil
}

// CleanupExpired removes expired idempotency records.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := s.txManager.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE expires_at < $1`, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
