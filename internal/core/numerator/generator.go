package numerator

import (
	"context"
	"time"
)

// Generator issues sequential document numbers scoped per (prefix, day).
//
// Implementations must be safe under concurrent callers: two callers never
// receive the same number. When ctx carries a transaction the counter bump
// joins it, so a rolled back document does not consume its number.
type Generator interface {
	NextNumber(ctx context.Context, cfg Config, day time.Time) (string, error)

	// SetNextNumber moves the counter forward so the next issued sequence is
	// at least value+1. It never moves the counter back.
	SetNextNumber(ctx context.Context, cfg Config, day time.Time, value int64) error
}
