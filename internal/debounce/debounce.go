package debounce

import (
	"sync"
	"time"

	"github.com/roach88/quill/internal/clock"
)

// Option configures a Func.
type Option func(*settings)

type settings struct {
	leading  bool
	trailing bool
	maxWait  time.Duration
	clock    clock.Clock
}

// WithLeading invokes fn on the leading edge of a burst.
//
// Default: false.
func WithLeading(leading bool) Option {
	return func(s *settings) {
		s.leading = leading
	}
}

// WithTrailing invokes fn on the trailing edge of a burst.
//
// Default: true.
func WithTrailing(trailing bool) Option {
	return func(s *settings) {
		s.trailing = trailing
	}
}

// WithMaxWait bounds how long fn may be delayed under continuous calls.
// Values below wait are raised to wait. Zero disables the bound.
func WithMaxWait(maxWait time.Duration) Option {
	return func(s *settings) {
		s.maxWait = maxWait
	}
}

// WithClock overrides the time source. Tests pass a fake clock.
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		s.clock = c
	}
}

// Func is a debounced wrapper around fn.
//
// Thread-safety: all methods are safe for concurrent use. State is guarded
// by mu; fn always runs with mu released, so fn may schedule further calls.
// Invocations of fn are serialized by invokeMu, which means fn must not
// call Flush, or Call on a Func with leading edge invocation enabled.
//
// INVARIANTS:
//   - At most one live timer exists per Func (tracked by gen).
//   - Pending args are consumed by exactly one invocation, or dropped by Cancel.
type Func[A, R any] struct {
	fn       func(A) R
	wait     time.Duration
	maxWait  time.Duration
	leading  bool
	trailing bool
	maxing   bool
	clock    clock.Clock

	invokeMu sync.Mutex

	mu             sync.Mutex
	timer          clock.Timer
	gen            uint64
	lastArgs       A
	hasArgs        bool
	lastCallTime   time.Time
	hasCall        bool
	lastInvokeTime time.Time
	result         R
}

// New wraps fn so that bursts of calls collapse into as few invocations as
// the leading/trailing/maxWait options allow.
//
// A negative wait is treated as zero. With wait == 0 the trailing timer is
// armed with no delay, so calls issued before it fires still collapse into
// one invocation carrying the last args.
func New[A, R any](fn func(A) R, wait time.Duration, opts ...Option) *Func[A, R] {
	if wait < 0 {
		wait = 0
	}
	s := settings{trailing: true}
	for _, opt := range opts {
		opt(&s)
	}
	if s.clock == nil {
		s.clock = clock.New()
	}

	f := &Func[A, R]{
		fn:       fn,
		wait:     wait,
		leading:  s.leading,
		trailing: s.trailing,
		clock:    s.clock,
	}
	if s.maxWait > 0 {
		f.maxing = true
		f.maxWait = max(s.maxWait, wait)
	}
	return f
}

// Call records args as the pending invocation and (re)arms the timer.
//
// It returns the result of the most recent invocation of fn, which is the
// invocation performed by this call when it lands on a leading edge or a
// maxWait boundary.
func (f *Func[A, R]) Call(args A) R {
	f.mu.Lock()
	now := f.clock.Now()
	invoking := f.shouldInvoke(now)
	f.lastArgs, f.hasArgs = args, true
	f.lastCallTime, f.hasCall = now, true

	if invoking {
		if f.timer == nil {
			// Leading edge of a new burst.
			f.lastInvokeTime = now
			f.startTimer(f.wait)
			if f.leading {
				a := f.take(now)
				f.mu.Unlock()
				return f.invoke(a)
			}
		} else if f.maxing {
			// Continuous calls hit the maxWait bound.
			f.startTimer(f.wait)
			a := f.take(now)
			f.mu.Unlock()
			return f.invoke(a)
		}
	}
	if f.timer == nil {
		f.startTimer(f.wait)
	}
	res := f.result
	f.mu.Unlock()
	return res
}

// Cancel drops the pending timer and args without invoking fn.
func (f *Func[A, R]) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimer()
	f.lastInvokeTime = time.Time{}
	f.clearArgs()
	f.lastCallTime, f.hasCall = time.Time{}, false
}

// Flush invokes fn immediately with the pending args, if any, and clears
// the timer. It returns the invocation result, or the last result when
// nothing was pending. A panic in fn propagates to the caller of Flush.
func (f *Func[A, R]) Flush() R {
	f.mu.Lock()
	if f.timer == nil {
		res := f.result
		f.mu.Unlock()
		return res
	}
	f.stopTimer()
	if f.trailing && f.hasArgs {
		a := f.take(f.clock.Now())
		f.mu.Unlock()
		return f.invoke(a)
	}
	f.clearArgs()
	res := f.result
	f.mu.Unlock()
	return res
}

// Pending reports whether a trailing invocation is scheduled: a timer is
// armed, trailing invocation is enabled and args are waiting for it. Args
// already consumed by a leading or maxWait invocation do not count.
func (f *Func[A, R]) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timer != nil && f.trailing && f.hasArgs
}

// expired runs when the timer armed under generation gen fires.
func (f *Func[A, R]) expired(gen uint64) {
	f.mu.Lock()
	if gen != f.gen || f.timer == nil {
		// Stale timer: cancelled, flushed or re-armed after it started firing.
		f.mu.Unlock()
		return
	}
	now := f.clock.Now()
	if !f.shouldInvoke(now) {
		f.startTimer(f.remainingWait(now))
		f.mu.Unlock()
		return
	}

	// Trailing edge.
	f.timer = nil
	if f.trailing && f.hasArgs {
		a := f.take(now)
		f.mu.Unlock()
		f.invoke(a)
		return
	}
	f.clearArgs()
	f.mu.Unlock()
}

// shouldInvoke reports whether a call at now starts a new burst or crosses
// the maxWait bound. Caller must hold f.mu.
func (f *Func[A, R]) shouldInvoke(now time.Time) bool {
	if !f.hasCall {
		return true
	}
	sinceCall := now.Sub(f.lastCallTime)
	sinceInvoke := now.Sub(f.lastInvokeTime)
	return sinceCall >= f.wait ||
		sinceCall < 0 ||
		(f.maxing && sinceInvoke >= f.maxWait)
}

// remainingWait is the delay until the burst should next be evaluated.
// Caller must hold f.mu.
func (f *Func[A, R]) remainingWait(now time.Time) time.Duration {
	waiting := f.wait - now.Sub(f.lastCallTime)
	if f.maxing {
		return min(waiting, f.maxWait-now.Sub(f.lastInvokeTime))
	}
	return waiting
}

// startTimer replaces any live timer with one firing after d.
// Caller must hold f.mu.
func (f *Func[A, R]) startTimer(d time.Duration) {
	if f.timer != nil {
		f.timer.Stop()
	}
	f.gen++
	gen := f.gen
	f.timer = f.clock.AfterFunc(d, func() { f.expired(gen) })
}

// stopTimer cancels the live timer, if any. Caller must hold f.mu.
func (f *Func[A, R]) stopTimer() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.gen++
}

// take consumes the pending args for an invocation at now.
// Caller must hold f.mu.
func (f *Func[A, R]) take(now time.Time) A {
	a := f.lastArgs
	f.clearArgs()
	f.lastInvokeTime = now
	return a
}

func (f *Func[A, R]) clearArgs() {
	var zero A
	f.lastArgs, f.hasArgs = zero, false
}

// invoke runs fn with f.mu released and records its result.
func (f *Func[A, R]) invoke(args A) R {
	f.invokeMu.Lock()
	defer f.invokeMu.Unlock()

	res := f.fn(args)

	f.mu.Lock()
	f.result = res
	f.mu.Unlock()
	return res
}
