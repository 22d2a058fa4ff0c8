package numerator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "bakerypos/internal/core/numerator"
)

// mockQuerier emulates sys_sequences in memory.
type mockQuerier struct {
	mu       sync.Mutex
	counters map[string]int64
	lastSQL  string
	err      error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{counters: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastSQL = sql
	if m.err != nil {
		return &mockRow{err: m.err}
	}

	key := args[0].(string)
	if strings.Contains(sql, "current_val + 1") {
		m.counters[key]++
	} else if v := args[1].(int64); v > m.counters[key] {
		m.counters[key] = v
	}
	return &mockRow{val: m.counters[key]}
}

type mockRow struct {
	val int64
	err error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.val
	return nil
}

func (m *mockQuerier) resolver() QuerierFunc {
	return func(context.Context) Querier { return m }
}

func TestNextNumber_Monotonic(t *testing.T) {
	q := newMockQuerier()
	svc := New(q.resolver())
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig(corenumerator.PrefixBill)

	for i, want := range []string{"INV-202610190001", "INV-202610190002", "INV-202610190003"} {
		got, err := svc.NextNumber(context.Background(), cfg, day)
		require.NoError(t, err)
		assert.Equal(t, want, got, "call %d", i+1)
	}
	assert.Contains(t, q.lastSQL, "ON CONFLICT (key)")
}

func TestNextNumber_ScopedPerPrefixAndDay(t *testing.T) {
	q := newMockQuerier()
	svc := New(q.resolver())
	ctx := context.Background()
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	bill, _ := svc.NextNumber(ctx, corenumerator.DefaultConfig(corenumerator.PrefixBill), day)
	order, _ := svc.NextNumber(ctx, corenumerator.DefaultConfig(corenumerator.PrefixOrder), day)
	nextDay, _ := svc.NextNumber(ctx, corenumerator.DefaultConfig(corenumerator.PrefixBill), day.AddDate(0, 0, 1))

	assert.Equal(t, "INV-202610190001", bill)
	assert.Equal(t, "ORD-202610190001", order)
	assert.Equal(t, "INV-202610200001", nextDay)
}

func TestNextNumber_ConcurrentCallersGetDistinctNumbers(t *testing.T) {
	q := newMockQuerier()
	svc := New(q.resolver())
	cfg := corenumerator.DefaultConfig(corenumerator.PrefixBill)
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	const n = 50
	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.NextNumber(context.Background(), cfg, day)
			if err == nil {
				results <- num
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for num := range results {
		assert.False(t, seen[num], "duplicate %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}

func TestSetNextNumber(t *testing.T) {
	q := newMockQuerier()
	svc := New(q.resolver())
	cfg := corenumerator.DefaultConfig(corenumerator.PrefixOrder)
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	require.NoError(t, svc.SetNextNumber(context.Background(), cfg, day, 41))
	got, err := svc.NextNumber(context.Background(), cfg, day)
	require.NoError(t, err)
	assert.Equal(t, "ORD-202610190042", got)

	assert.Error(t, svc.SetNextNumber(context.Background(), cfg, day, -1))
	assert.Contains(t, q.lastSQL, "GREATEST")
}

func TestSetNextNumber_NeverMovesBack(t *testing.T) {
	q := newMockQuerier()
	svc := New(q.resolver())
	cfg := corenumerator.DefaultConfig(corenumerator.PrefixBill)
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, svc.SetNextNumber(ctx, cfg, day, 10))
	require.NoError(t, svc.SetNextNumber(ctx, cfg, day, 3))

	got, err := svc.NextNumber(ctx, cfg, day)
	require.NoError(t, err)
	assert.Equal(t, "INV-202610190011", got)
}

func TestNextNumber_QueryError(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection refused")
	svc := New(q.resolver())

	_, err := svc.NextNumber(context.Background(), corenumerator.DefaultConfig("INV"), time.Now())
	assert.ErrorContains(t, err, "connection refused")
}
