package store

import (
	"context"
	"sync"
	"time"

	"github.com/rizesql/cas/internal/clock"
)

type entry struct {
	data      string
	expiresAt time.Time
}

// Memory is the in-process backend: a mutex-guarded map with lazy GC.
// Suited to single-instance deployments and tests.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]entry
	clock    clock.Clock
	lastGC   time.Time
	gcPeriod time.Duration
}

func NewMemory(clk clock.Clock) *Memory {
	return &Memory{
		entries:  make(map[string]entry),
		clock:    clk,
		gcPeriod: time.Minute,
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) MarkUnused(_ context.Context, key, serialized string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if now.Sub(m.lastGC) > m.gcPeriod {
		m.gc(now)
		m.lastGC = now
	}

	m.entries[key] = entry{data: serialized, expiresAt: now.Add(ttl)}
	return nil
}

func (m *Memory) Consume(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	delete(m.entries, key)

	return m.clock.Now().Before(e.expiresAt), nil
}

func (m *Memory) MarkUsed(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) gc(now time.Time) {
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}
