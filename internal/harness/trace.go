package harness

import (
	"sync"
	"time"

	"github.com/roach88/quill/internal/clock"
	"github.com/roach88/quill/internal/storage"
)

// tracingBackend records every successful write and remove made through it.
type tracingBackend struct {
	storage.Backend
	clock clock.Clock
	start time.Time

	mu     sync.Mutex
	seq    int64
	events []TraceEvent
}

func newTracingBackend(inner storage.Backend, c clock.Clock) *tracingBackend {
	return &tracingBackend{Backend: inner, clock: c, start: c.Now()}
}

func (b *tracingBackend) SetItem(key, value string) error {
	if err := b.Backend.SetItem(key, value); err != nil {
		return err
	}
	b.record(OpSet, key)
	return nil
}

func (b *tracingBackend) RemoveItem(key string) error {
	if err := b.Backend.RemoveItem(key); err != nil {
		return err
	}
	b.record(OpRemove, key)
	return nil
}

func (b *tracingBackend) record(op, key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.events = append(b.events, TraceEvent{
		Seq:  b.seq,
		Op:   op,
		Key:  key,
		AtMs: b.clock.Now().Sub(b.start).Milliseconds(),
	})
}

func (b *tracingBackend) trace() []TraceEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]TraceEvent, len(b.events))
	copy(out, b.events)
	return out
}
