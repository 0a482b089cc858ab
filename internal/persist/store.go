package persist

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/quill/internal/clock"
	"github.com/roach88/quill/internal/debounce"
	"github.com/roach88/quill/internal/storage"
)

// Store holds one piece of application state in memory and writes it back
// to durable storage under a fixed key after each burst of mutations.
//
// S must encode to a JSON object. Only its JSON shape is persisted and
// rehydrated.
//
// Thread-safety: all methods are safe for concurrent use. State is guarded
// by mu. Writes to the adapter are serialized by persistMu so an older
// snapshot never lands after a newer one.
//
// INVARIANTS:
//   - One debounced persist is shared by every mutation of the store.
//   - A write scheduled before ClearPersistedState never reaches storage.
type Store[S any] struct {
	id       string
	defaults func() S
	adapter  *storage.Adapter
	opts     options

	mu    sync.RWMutex
	state S

	persistMu sync.Mutex
	// epoch advances on every clear; a debounced persist carries the epoch
	// it was scheduled in and is dropped if a clear happened since.
	epoch atomic.Uint64
	saver *debounce.Func[uint64, struct{}]
}

// New creates a store persisted under id.
//
// The initial state is the persisted record laid over defaults() by the
// configured merge. A missing, expired or unusable record yields defaults.
func New[S any](id string, defaults func() S, adapter *storage.Adapter, opts ...Option) *Store[S] {
	o := options{wait: DefaultWait, merge: ShallowMerge}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("store", id)

	s := &Store[S]{
		id:       id,
		defaults: defaults,
		adapter:  adapter,
		opts:     o,
	}
	s.state = s.hydrate()
	s.saver = debounce.New(func(epoch uint64) struct{} {
		s.persist(epoch)
		return struct{}{}
	}, o.wait, debounce.WithClock(o.clock))
	return s
}

// ID returns the storage key.
func (s *Store[S]) ID() string {
	return s.id
}

// State returns a deep copy of the current state, made through its JSON
// form. Fields without one come back as zero values; use View to read them.
func (s *Store[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone(s.state)
}

// View calls fn with the current state under the read lock. fn must not
// retain references into the state or call back into the store.
func (s *Store[S]) View(fn func(S)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Update applies action to the state and schedules a debounced write.
func (s *Store[S]) Update(action func(*S)) {
	s.apply(action)
	s.RecordState(false)
}

// UpdateNow applies action to the state and writes it immediately.
func (s *Store[S]) UpdateNow(action func(*S)) {
	s.apply(action)
	s.RecordState(true)
}

// TryUpdate applies action and schedules a debounced write if it returns
// nil. A failing action must leave the state untouched.
func (s *Store[S]) TryUpdate(action func(*S) error) error {
	var err error
	s.apply(func(state *S) { err = action(state) })
	if err != nil {
		return err
	}
	s.RecordState(false)
	return nil
}

// Bind wraps an action taking an argument so that every call mutates the
// store through Update and therefore schedules a write.
func Bind[S, A any](s *Store[S], action func(*S, A)) func(A) {
	return func(arg A) {
		s.Update(func(state *S) {
			action(state, arg)
		})
	}
}

// RecordState schedules a write of the current state. With immediate set
// the write happens before RecordState returns and supersedes any pending
// debounced write.
func (s *Store[S]) RecordState(immediate bool) {
	if immediate {
		s.saver.Cancel()
		s.persist(s.epoch.Load())
		return
	}
	s.saver.Call(s.epoch.Load())
}

// ClearPersistedState removes the durable record. The in-memory state is
// left as is, and a debounced write scheduled earlier is dropped.
func (s *Store[S]) ClearPersistedState() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.epoch.Add(1)
	s.saver.Cancel()
	s.adapter.Remove(s.id)
}

// Reset restores the defaults in memory and removes the durable record.
func (s *Store[S]) Reset() {
	s.mu.Lock()
	s.state = s.defaults()
	s.mu.Unlock()
	s.ClearPersistedState()
}

// Pending reports whether a debounced write is scheduled.
func (s *Store[S]) Pending() bool {
	return s.saver.Pending()
}

// Flush performs a scheduled write now. It is a no-op when nothing is pending.
func (s *Store[S]) Flush() {
	s.saver.Flush()
}

// Close flushes any scheduled write. The store remains usable.
func (s *Store[S]) Close() error {
	s.Flush()
	return nil
}

func (s *Store[S]) apply(action func(*S)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	action(&s.state)
}

// persist snapshots the state and writes it. Failures are logged by the
// adapter; memory is never rolled back.
func (s *Store[S]) persist(epoch uint64) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if epoch != s.epoch.Load() {
		s.opts.logger.Debug("dropping write scheduled before clear")
		return
	}

	s.mu.RLock()
	data, err := storage.Encode(s.state)
	s.mu.RUnlock()
	if err != nil {
		s.opts.logger.Error("state not persisted", "code", string(storage.CodeSerialize), "error", err)
		return
	}
	s.adapter.SetRaw(s.id, data, s.opts.expire)
}

func (s *Store[S]) hydrate() S {
	defaults := s.defaults()
	persisted, ok := s.adapter.Get(s.id)
	if !ok {
		return defaults
	}

	base, err := json.Marshal(defaults)
	if err != nil {
		s.opts.logger.Error("defaults not encodable, ignoring persisted state", "error", err)
		return defaults
	}
	merged, err := s.opts.merge(base, persisted)
	if err != nil {
		s.opts.logger.Warn("persisted state unusable, using defaults", "error", err)
		return defaults
	}
	// Decode over the defaults so fields the JSON form leaves out keep them.
	state := defaults
	if err := json.Unmarshal(merged, &state); err != nil {
		s.opts.logger.Warn("persisted state unusable, using defaults", "error", err)
		return s.defaults()
	}
	s.opts.logger.Debug("state rehydrated")
	return state
}

// clone deep-copies v through its JSON form so callers cannot mutate the
// store behind its back. Caller must hold mu.
func (s *Store[S]) clone(v S) S {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out S
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
