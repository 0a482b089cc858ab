// Package debounce coalesces high-frequency calls into fewer invocations.
//
// A Func wraps a callback and exposes Call, Cancel, Flush and Pending:
//
//	save := debounce.New(func(s State) error { return write(s) }, 300*time.Millisecond)
//	save.Call(s1)
//	save.Call(s2) // within 300ms: only s2 is written, once
//
// Edge behaviour:
//   - Leading: invoke synchronously on the first call of a burst.
//   - Trailing (default): invoke once with the latest args after wait of silence.
//   - MaxWait: guarantee an invocation at least once per maxWait under
//     continuous calls.
//
// Throttle is a Func with leading and trailing on and maxWait = wait.
//
// # Timers
//
// Each Func owns its single timer; nothing is shared at package level, so
// independent Funcs never interfere. Timers come from a clock.Clock so tests
// drive them with testutil.FakeClock.
//
// # Failure semantics
//
// A trailing invocation runs on the timer's goroutine. A panic there is not
// recovered and does not reach the goroutine that called Call. Callers that
// need to handle failures synchronously must use Flush, or make fn itself
// non-panicking (the persist package's write-back does the latter).
package debounce
