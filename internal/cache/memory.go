// Package cache stores computed anomaly feature collections keyed by query,
// either in process memory or in a Valkey-compatible database.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ta346/greenzone-web/internal/geo"
)

type memoryEntry struct {
	payload   *geo.FeatureCollection
	expiresAt time.Time
}

// Memory is an in-memory implementation of anomaly.Cache for tests/dev.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory constructs a cache backed by process memory.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get implements anomaly.Cache.
func (m *Memory) Get(_ context.Context, key string) (*geo.FeatureCollection, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if hasExpired(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.payload, true, nil
}

// Set implements anomaly.Cache.
func (m *Memory) Set(_ context.Context, key string, fc *geo.FeatureCollection, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{payload: fc, expiresAt: exp}
	m.mu.Unlock()
	return nil
}

func hasExpired(expiresAt time.Time) bool {
	return !expiresAt.IsZero() && time.Now().After(expiresAt)
}
