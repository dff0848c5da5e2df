package storage

import (
	"context"
	"sync"
	"time"
)

const memorySweepInterval = time.Minute

// MemoryAdapter is the in-process idempotency store used when no Redis is
// configured. Expired keys are swept on write, at most once per
// memorySweepInterval.
type MemoryAdapter struct {
	mu        sync.Mutex
	keys      map[string]time.Time
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		keys: make(map[string]time.Time),
		ttl:  idempotencyKeyTTL,
		now:  time.Now,
	}
}

func (m *MemoryAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= memorySweepInterval {
		m.sweepLocked(now)
	}
	if expires, ok := m.keys[key]; ok && now.Before(expires) {
		return false, nil
	}
	m.keys[key] = now.Add(m.ttl)
	return true, nil
}

func (m *MemoryAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keys, key)
	return nil
}

func (m *MemoryAdapter) sweepLocked(now time.Time) {
	for key, expires := range m.keys {
		if !now.Before(expires) {
			delete(m.keys, key)
		}
	}
	m.lastSweep = now
}

// Len reports how many keys are currently held, expired or not.
func (m *MemoryAdapter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

func (m *MemoryAdapter) Ping(ctx context.Context) error {
	return nil
}
