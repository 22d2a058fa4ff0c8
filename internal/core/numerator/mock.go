package numerator

import (
	"context"
	"sync"
	"time"
)

// MockGenerator is an in-memory Generator for unit tests.
// Without NextNumberFunc it keeps a real per-key counter.
type MockGenerator struct {
	NextNumberFunc func(ctx context.Context, cfg Config, day time.Time) (string, error)

	mu       sync.Mutex
	counters map[string]int64
}

// NextNumber implements Generator.
func (m *MockGenerator) NextNumber(ctx context.Context, cfg Config, day time.Time) (string, error) {
	if m.NextNumberFunc != nil {
		return m.NextNumberFunc(ctx, cfg, day)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	m.counters[cfg.Key(day)]++
	return cfg.Format(day, m.counters[cfg.Key(day)]), nil
}

// SetNextNumber implements Generator.
func (m *MockGenerator) SetNextNumber(_ context.Context, cfg Config, day time.Time, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	if value > m.counters[cfg.Key(day)] {
		m.counters[cfg.Key(day)] = value
	}
	return nil
}

// Snapshot captures the counters. The returned func puts them back, which
// lets a test roll the counter back together with a failed transaction.
func (m *MockGenerator) Snapshot() (restore func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		saved[k] = v
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.counters = saved
	}
}

var _ Generator = (*MockGenerator)(nil)
