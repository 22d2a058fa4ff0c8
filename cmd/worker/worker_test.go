package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bakerypos/internal/core/id"
	"bakerypos/internal/domain"
	"bakerypos/internal/infrastructure/storage/postgres"
	"bakerypos/pkg/logger"
)

type fakeInvalidator struct{ calls int }

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return nil
}

func TestEventHandler_InvalidatesOnStockMovement(t *testing.T) {
	inv := &fakeInvalidator{}
	h := &EventHandler{log: logger.Nop(), catalog: inv}

	for _, et := range []string{domain.EventBillCreated, domain.EventStockAdded, domain.EventOrderPayment} {
		err := h.Handle(context.Background(), &postgres.OutboxMessage{ID: id.New(), EventType: et})
		assert.NoError(t, err)
	}

	assert.Equal(t, 2, inv.calls)
}

func TestEventHandler_NoCache(t *testing.T) {
	h := &EventHandler{log: logger.Nop()}

	err := h.Handle(context.Background(), &postgres.OutboxMessage{EventType: domain.EventBillCreated})
	assert.NoError(t, err)
}

type fakeRelay struct {
	cutoff time.Time
}

func (f *fakeRelay) ProcessBatch(context.Context) (int, error) { return 0, nil }

func (f *fakeRelay) PurgePublished(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, nil
}

type fakeCleaner struct {
	n   int64
	err error
}

func (f fakeCleaner) CleanupExpired(context.Context) (int64, error)       { return f.n, f.err }
func (f fakeCleaner) CleanupExpiredTokens(context.Context) (int64, error) { return f.n, f.err }

func TestWorker_CleanupRunsEveryJob(t *testing.T) {
	relay := &fakeRelay{}
	w := &Worker{
		relay:       relay,
		idempotency: fakeCleaner{err: errors.New("boom")},
		auth:        fakeCleaner{n: 1},
		log:         logger.Nop(),
		retention:   24 * time.Hour,
	}

	before := time.Now().UTC()
	w.cleanup(context.Background())

	// A failing job does not stop the ones after it.
	assert.WithinDuration(t, before.Add(-24*time.Hour), relay.cutoff, time.Minute)
}
