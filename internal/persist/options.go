package persist

import (
	"log/slog"
	"time"

	"github.com/roach88/quill/internal/clock"
)

// DefaultWait is the debounce window between a mutation and its write-back.
const DefaultWait = 300 * time.Millisecond

// Option configures a Store.
type Option func(*options)

type options struct {
	wait   time.Duration
	expire time.Duration
	merge  MergeFunc
	clock  clock.Clock
	logger *slog.Logger
}

// WithWait sets the debounce window.
//
// Default: 300ms (DefaultWait).
func WithWait(wait time.Duration) Option {
	return func(o *options) {
		o.wait = wait
	}
}

// WithExpire stores the record with an expiry; once it passes, the next
// process starts from defaults. Zero means the record never expires.
func WithExpire(expire time.Duration) Option {
	return func(o *options) {
		o.expire = expire
	}
}

// WithMerge selects how a persisted record is laid over the defaults.
//
// Default: ShallowMerge.
func WithMerge(merge MergeFunc) Option {
	return func(o *options) {
		o.merge = merge
	}
}

// WithClock overrides the time source for the debounce timer.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithLogger routes store logs to l instead of slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
