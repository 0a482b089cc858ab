package storage

import (
	"sort"
	"strings"
	"sync"
)

// Backend is a synchronous key/value string store.
//
// Implemented by MemoryBackend, FileBackend and SQLiteBackend. Any store
// with browser-storage-like semantics (get/set/remove by string key)
// satisfies it.
type Backend interface {
	// GetItem returns the stored string and true, or "" and false when absent.
	GetItem(key string) (string, bool, error)
	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(key string) error
	// Keys lists stored keys in ascending order.
	Keys() ([]string, error)
	// Close releases resources held by the backend.
	Close() error
}

// MemoryBackend keeps records in a map. It is the default backend for tests
// and for the "memory" config setting.
//
// An optional quota limits the total size of keys plus values in bytes;
// writes that would exceed it fail with ErrQuotaExceeded.
type MemoryBackend struct {
	mu     sync.RWMutex
	items  map[string]string
	quota  int
	used   int
	closed bool
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithQuota caps the total stored bytes. Zero means unlimited.
func WithQuota(bytes int) MemoryOption {
	return func(m *MemoryBackend) {
		m.quota = bytes
	}
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(opts ...MemoryOption) *MemoryBackend {
	m := &MemoryBackend{items: map[string]string{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryBackend) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryBackend) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	used := m.used + len(key) + len(value)
	if old, ok := m.items[key]; ok {
		used -= len(key) + len(old)
	}
	if m.quota > 0 && used > m.quota {
		return ErrQuotaExceeded
	}

	m.items[key] = value
	m.used = used
	return nil
}

func (m *MemoryBackend) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if old, ok := m.items[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.items, key)
	}
	return nil
}

func (m *MemoryBackend) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Used returns the number of bytes currently counted against the quota.
func (m *MemoryBackend) Used() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}

// filterPrefix returns the keys carrying prefix, with the prefix removed.
func filterPrefix(keys []string, prefix string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if rest, ok := strings.CutPrefix(k, prefix); ok {
			out = append(out, rest)
		}
	}
	return out
}
