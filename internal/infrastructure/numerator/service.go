// Package numerator provides the PostgreSQL implementation of document
// auto-numbering on top of the sys_sequences counter table.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "bakerypos/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for a call. The postgres TxManager's
// GetQuerier fits: the counter bump joins the caller's transaction.
type QuerierFunc func(ctx context.Context) Querier

// Service hands out PREFIX-YYYYMMDDNNNN numbers.
//
// The counter row is bumped with a single upsert, so concurrent callers are
// serialized by the row lock and never see the same value. Because the bump
// runs on the caller's transaction, a rolled back bill gives its number back.
type Service struct {
	querier QuerierFunc
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator bound to a querier resolver.
func New(querier QuerierFunc) *Service {
	return &Service{querier: querier}
}

const nextSQL = `
	INSERT INTO sys_sequences (key, current_val)
	VALUES ($1, 1)
	ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
	RETURNING current_val`

const setSQL = `
	INSERT INTO sys_sequences (key, current_val)
	VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET current_val = GREATEST(sys_sequences.current_val, EXCLUDED.current_val)
	RETURNING current_val`

// NextNumber bumps the (prefix, day) counter and formats the result.
func (s *Service) NextNumber(ctx context.Context, cfg corenumerator.Config, day time.Time) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	var seq int64
	if err := s.querier(ctx).QueryRow(ctx, nextSQL, cfg.Key(day)).Scan(&seq); err != nil {
		return "", fmt.Errorf("next %s number: %w", cfg.Prefix, err)
	}
	return cfg.Format(day, seq), nil
}

// SetNextNumber moves the counter past value, e.g. after importing legacy
// documents or when a number turned out to be taken. A counter already
// ahead of value is left alone.
func (s *Service) SetNextNumber(ctx context.Context, cfg corenumerator.Config, day time.Time, value int64) error {
	if value < 0 {
		return fmt.Errorf("sequence value must be >= 0, got %d", value)
	}

	var result int64
	if err := s.querier(ctx).QueryRow(ctx, setSQL, cfg.Key(day), value).Scan(&result); err != nil {
		return fmt.Errorf("set %s counter: %w", cfg.Prefix, err)
	}
	return nil
}
