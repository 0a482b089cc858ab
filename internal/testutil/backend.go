package testutil

import (
	"errors"
	"sort"
	"sync"
)

// ErrInjected is returned by RecordingBackend when failure injection is on.
var ErrInjected = errors.New("testutil: injected backend failure")

// RecordingBackend is an in-memory key/value backend that records every
// physical write. It satisfies storage.Backend without importing it, so the
// storage package's own tests can use it.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingBackend struct {
	mu      sync.Mutex
	items   map[string]string
	sets    []SetCall
	removes []string
	fail    bool
}

// SetCall captures one SetItem invocation.
type SetCall struct {
	Key   string
	Value string
}

// NewRecordingBackend creates an empty recording backend.
func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{items: map[string]string{}}
}

// FailWrites makes subsequent SetItem and RemoveItem calls fail with ErrInjected.
func (b *RecordingBackend) FailWrites(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = fail
}

func (b *RecordingBackend) GetItem(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.items[key]
	return v, ok, nil
}

func (b *RecordingBackend) SetItem(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return ErrInjected
	}
	b.items[key] = value
	b.sets = append(b.sets, SetCall{Key: key, Value: value})
	return nil
}

func (b *RecordingBackend) RemoveItem(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return ErrInjected
	}
	delete(b.items, key)
	b.removes = append(b.removes, key)
	return nil
}

func (b *RecordingBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.items))
	for k := range b.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *RecordingBackend) Close() error {
	return nil
}

// Seed stores a raw value without recording it as a write.
func (b *RecordingBackend) Seed(key, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[key] = value
}

// Sets returns a copy of every recorded SetItem call, oldest first.
func (b *RecordingBackend) Sets() []SetCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]SetCall, len(b.sets))
	copy(out, b.sets)
	return out
}

// SetsFor returns the recorded SetItem calls for one key.
func (b *RecordingBackend) SetsFor(key string) []SetCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []SetCall
	for _, call := range b.sets {
		if call.Key == key {
			out = append(out, call)
		}
	}
	return out
}

// Removes returns the keys passed to RemoveItem, oldest first.
func (b *RecordingBackend) Removes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.removes))
	copy(out, b.removes)
	return out
}
