package security

import (
	"sync"
	"time"
)

// CounterStore tracks expiring counters keyed by arbitrary strings (usually
// event-type + client IP). Injected so tests use the in-memory variant and a
// deployment can swap in a shared cache.
type CounterStore interface {
	Get(key string) int64
	Increment(key string, ttl time.Duration) int64
	Expire(key string)
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounter is the in-process CounterStore. Expired entries reset lazily
// on the next access.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryCounter) Get(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || m.now().After(e.expiresAt) {
		return 0
	}
	return e.count
}

func (m *MemoryCounter) Increment(key string, ttl time.Duration) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	e, ok := m.entries[key]
	if !ok || now.After(e.expiresAt) {
		e = memoryEntry{expiresAt: now.Add(ttl)}
	}
	e.count++
	m.entries[key] = e
	return e.count
}

func (m *MemoryCounter) Expire(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}
