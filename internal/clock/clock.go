// Package clock abstracts wall time and timer scheduling so that debounce
// windows and record expiry can be driven deterministically in tests.
package clock

import "time"

// Timer is a scheduled callback that can be cancelled.
//
// *time.Timer satisfies this interface.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or the timer was already stopped.
	Stop() bool
}

// Clock supplies the current time and schedules callbacks.
//
// Thread-safety: implementations must be safe for concurrent use. Callbacks
// passed to AfterFunc may run on any goroutine.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the production clock backed by package time.
type Real struct{}

// New returns the real clock.
func New() Clock {
	return Real{}
}

// Now returns time.Now().
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f on its own goroutine after d.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
