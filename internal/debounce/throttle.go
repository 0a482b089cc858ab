package debounce

import "time"

// Throttle wraps fn so it runs at most once per wait window, firing on both
// the first and the last call of a burst.
//
// Throttle is New with leading and trailing forced on and maxWait = wait.
// Leading/trailing/maxWait options passed by the caller are overridden;
// WithClock is honoured.
func Throttle[A, R any](fn func(A) R, wait time.Duration, opts ...Option) *Func[A, R] {
	forced := make([]Option, 0, len(opts)+3)
	forced = append(forced, opts...)
	forced = append(forced,
		WithLeading(true),
		WithTrailing(true),
		WithMaxWait(wait),
	)
	return New(fn, wait, forced...)
}
