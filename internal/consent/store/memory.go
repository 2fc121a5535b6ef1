package store

import (
	"context"
	"sync"
	"time"

	"agency/pkg/platform/sentinel"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryKV is a process-local KV for development and tests.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   Clock
}

// MemoryOption configures a MemoryKV.
type MemoryOption func(*MemoryKV)

// WithMemoryClock sets the clock used for TTL checks.
func WithMemoryClock(clock Clock) MemoryOption {
	return func(kv *MemoryKV) {
		if clock != nil {
			kv.clock = clock
		}
	}
}

// NewMemory constructs an empty MemoryKV.
func NewMemory(opts ...MemoryOption) *MemoryKV {
	kv := &MemoryKV{entries: make(map[string]memoryEntry), clock: time.Now}
	for _, opt := range opts {
		opt(kv)
	}
	return kv
}

func (kv *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.RLock()
	entry, ok := kv.entries[key]
	kv.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !entry.expiresAt.IsZero() && !kv.clock().Before(entry.expiresAt) {
		kv.mu.Lock()
		delete(kv.entries, key)
		kv.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), entry.value...), nil
}

func (kv *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = kv.clock().Add(ttl)
	}
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.entries[key] = entry
	return nil
}

func (kv *MemoryKV) Delete(_ context.Context, keys ...string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	for _, key := range keys {
		delete(kv.entries, key)
	}
	return nil
}
