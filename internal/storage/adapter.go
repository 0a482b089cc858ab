package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/quill/internal/clock"
)

// envelope is the stored shape of every record.
//
// Time and Expire are Unix milliseconds. Expire is omitted when the record
// never expires.
type envelope struct {
	Value  json.RawMessage `json:"value"`
	Time   int64           `json:"time"`
	Expire int64           `json:"expire,omitempty"`
}

// Record is a decoded durable record.
type Record struct {
	Key       string
	Value     json.RawMessage
	CreatedAt time.Time
	ExpiresAt time.Time // zero means no expiry
}

// Expired reports whether the record's expiry has passed at now.
func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithNamespace prefixes every key the adapter touches. Keys outside the
// namespace are invisible to Keys.
func WithNamespace(prefix string) AdapterOption {
	return func(a *Adapter) {
		a.namespace = prefix
	}
}

// WithClock overrides the time source used for timestamps and expiry.
func WithClock(c clock.Clock) AdapterOption {
	return func(a *Adapter) {
		a.clock = c
	}
}

// WithLogger routes failure logs to l instead of slog.Default().
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = l
	}
}

// Adapter wraps a Backend with JSON serialization and per-record expiry.
//
// Two API tiers exist:
//   - Put, PutRaw, Lookup, Delete and List return errors.
//   - Set, SetRaw, Get, Remove and Keys never fail: storage errors are
//     logged and the call becomes a no-op (or an absent read).
//
// The second tier is the contract stores rely on. Persistence is best
// effort; a failed write leaves memory and storage divergent until the next
// successful write.
//
// Thread-safety: Adapter holds no mutable state; safety is that of the backend.
type Adapter struct {
	backend   Backend
	namespace string
	clock     clock.Clock
	logger    *slog.Logger
}

// NewAdapter creates an adapter over b.
func NewAdapter(b Backend, opts ...AdapterOption) *Adapter {
	a := &Adapter{backend: b}
	for _, opt := range opts {
		opt(a)
	}
	if a.clock == nil {
		a.clock = clock.New()
	}
	return a
}

// Backend returns the wrapped backend.
func (a *Adapter) Backend() Backend {
	return a.backend
}

// Namespace returns the key prefix.
func (a *Adapter) Namespace() string {
	return a.namespace
}

// Put encodes value and stores it under key. A positive expire marks the
// record absent once that much time has passed.
func (a *Adapter) Put(key string, value any, expire time.Duration) error {
	data, err := Encode(value)
	if err != nil {
		return &OpError{Op: "set", Key: key, Code: CodeSerialize, Err: err}
	}
	return a.PutRaw(key, data, expire)
}

// PutRaw stores an already-encoded JSON value under key.
func (a *Adapter) PutRaw(key string, value json.RawMessage, expire time.Duration) error {
	if !json.Valid(value) {
		return &OpError{Op: "set", Key: key, Code: CodeSerialize, Err: errors.New("value is not valid JSON")}
	}

	now := a.clock.Now()
	env := envelope{Value: value, Time: now.UnixMilli()}
	if expire > 0 {
		env.Expire = now.Add(expire).UnixMilli()
	}

	data, err := encodeEnvelope(env)
	if err != nil {
		return &OpError{Op: "set", Key: key, Code: CodeSerialize, Err: err}
	}
	if err := a.backend.SetItem(a.key(key), string(data)); err != nil {
		return backendError("set", key, err)
	}
	return nil
}

// Lookup reads and decodes the record for key.
//
// Returns ErrNotFound when absent. An expired record is returned together
// with ErrExpired; it is not deleted (expiry is lazy).
func (a *Adapter) Lookup(key string) (Record, error) {
	raw, ok, err := a.backend.GetItem(a.key(key))
	if err != nil {
		return Record{}, backendError("get", key, err)
	}
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Record{}, &OpError{Op: "get", Key: key, Code: CodeDeserialize, Err: err}
	}
	if len(env.Value) == 0 {
		return Record{}, &OpError{Op: "get", Key: key, Code: CodeDeserialize, Err: errors.New("envelope has no value")}
	}

	rec := Record{
		Key:       key,
		Value:     env.Value,
		CreatedAt: time.UnixMilli(env.Time),
	}
	if env.Expire > 0 {
		rec.ExpiresAt = time.UnixMilli(env.Expire)
	}
	if rec.Expired(a.clock.Now()) {
		return rec, fmt.Errorf("%w: %q", ErrExpired, key)
	}
	return rec, nil
}

// Delete removes the record for key.
func (a *Adapter) Delete(key string) error {
	if err := a.backend.RemoveItem(a.key(key)); err != nil {
		return backendError("remove", key, err)
	}
	return nil
}

// List returns the keys in the adapter's namespace, namespace stripped.
func (a *Adapter) List() ([]string, error) {
	keys, err := a.backend.Keys()
	if err != nil {
		return nil, backendError("keys", "", err)
	}
	return filterPrefix(keys, a.namespace), nil
}

// Set is the fire-and-forget form of Put.
func (a *Adapter) Set(key string, value any, expire time.Duration) {
	if err := a.Put(key, value, expire); err != nil {
		a.logFailure("storage write failed", key, err)
	}
}

// SetRaw is the fire-and-forget form of PutRaw.
func (a *Adapter) SetRaw(key string, value json.RawMessage, expire time.Duration) {
	if err := a.PutRaw(key, value, expire); err != nil {
		a.logFailure("storage write failed", key, err)
	}
}

// Get returns the stored JSON value for key, or false when the record is
// absent, expired or unreadable.
func (a *Adapter) Get(key string) (json.RawMessage, bool) {
	rec, err := a.Lookup(key)
	switch {
	case err == nil:
		return rec.Value, true
	case errors.Is(err, ErrNotFound):
	case errors.Is(err, ErrExpired):
		a.log().Debug("record expired", "key", key, "expired_at", rec.ExpiresAt)
	default:
		a.logFailure("storage read failed", key, err)
	}
	return nil, false
}

// Remove is the fire-and-forget form of Delete.
func (a *Adapter) Remove(key string) {
	if err := a.Delete(key); err != nil {
		a.logFailure("storage remove failed", key, err)
	}
}

// Keys is the fire-and-forget form of List. Failures yield nil.
func (a *Adapter) Keys() []string {
	keys, err := a.List()
	if err != nil {
		a.logFailure("storage list failed", "", err)
		return nil
	}
	return keys
}

// Sweep eagerly deletes expired and unreadable records in the namespace and
// returns how many were removed.
func (a *Adapter) Sweep() (int, error) {
	keys, err := a.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		_, err := a.Lookup(key)
		if err == nil || errors.Is(err, ErrNotFound) {
			continue
		}
		if !errors.Is(err, ErrExpired) && !IsCode(err, CodeDeserialize) {
			return removed, err
		}
		if err := a.Delete(key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Load decodes the value stored under key into a T.
func Load[T any](a *Adapter, key string) (T, bool) {
	var out T
	raw, ok := a.Get(key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		a.logFailure("storage decode failed", key, &OpError{Op: "get", Key: key, Code: CodeDeserialize, Err: err})
		var zero T
		return zero, false
	}
	return out, true
}

func encodeEnvelope(env envelope) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (a *Adapter) key(k string) string {
	return a.namespace + k
}

func (a *Adapter) log() *slog.Logger {
	if a.logger != nil {
		return a.logger
	}
	return slog.Default()
}

func (a *Adapter) logFailure(msg, key string, err error) {
	code := CodeBackend
	var opErr *OpError
	if errors.As(err, &opErr) {
		code = opErr.Code
	}
	a.log().Error(msg, "key", key, "code", string(code), "error", err)
}
