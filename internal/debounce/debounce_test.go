package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quill/internal/testutil"
)

// recorder collects invocations of a debounced callback.
type recorder struct {
	mu    sync.Mutex
	args  []int
	times []time.Time
	clk   *testutil.FakeClock
}

func (r *recorder) fn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.args = append(r.args, n)
	if r.clk != nil {
		r.times = append(r.times, r.clk.Now())
	}
	return n * 10
}

func (r *recorder) calls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.args))
	copy(out, r.args)
	return out
}

func setup(wait time.Duration, opts ...Option) (*Func[int, int], *recorder, *testutil.FakeClock) {
	clk := testutil.NewFakeClock()
	rec := &recorder{clk: clk}
	opts = append(opts, WithClock(clk))
	return New(rec.fn, wait, opts...), rec, clk
}

func TestDebounce_CoalescesBurstToLastArgs(t *testing.T) {
	f, rec, clk := setup(100 * time.Millisecond)

	for i := 1; i <= 5; i++ {
		f.Call(i)
		clk.Advance(10 * time.Millisecond)
	}
	assert.Empty(t, rec.calls(), "nothing fires inside the window")

	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, []int{5}, rec.calls())
	assert.False(t, f.Pending())
}

func TestDebounce_QuietPeriodIsMeasuredFromLastCall(t *testing.T) {
	f, rec, clk := setup(100 * time.Millisecond)

	f.Call(1)
	clk.Advance(90 * time.Millisecond)
	f.Call(2)
	clk.Advance(90 * time.Millisecond)
	assert.Empty(t, rec.calls(), "second call pushes the deadline out")

	clk.Advance(10 * time.Millisecond)
	assert.Equal(t, []int{2}, rec.calls())
}

func TestDebounce_SeparateBurstsInvokeSeparately(t *testing.T) {
	f, rec, clk := setup(100 * time.Millisecond)

	f.Call(1)
	clk.Advance(200 * time.Millisecond)
	f.Call(2)
	clk.Advance(200 * time.Millisecond)

	assert.Equal(t, []int{1, 2}, rec.calls())
}

func TestDebounce_MaxWaitForcesInvocation(t *testing.T) {
	const maxWait = 250 * time.Millisecond
	f, rec, clk := setup(100*time.Millisecond, WithMaxWait(maxWait))
	start := clk.Now()

	for i := 0; i < 20; i++ {
		f.Call(i)
		clk.Advance(50 * time.Millisecond)
	}

	require.GreaterOrEqual(t, len(rec.times), 3)
	assert.Equal(t, 4, rec.calls()[0], "invoked with the most recent args at the bound")

	prev := start
	for _, at := range rec.times {
		assert.LessOrEqual(t, at.Sub(prev), maxWait)
		prev = at
	}
}

func TestDebounce_MaxWaitBelowWaitIsRaised(t *testing.T) {
	f, rec, clk := setup(100*time.Millisecond, WithMaxWait(10*time.Millisecond))

	f.Call(1)
	clk.Advance(50 * time.Millisecond)
	f.Call(2)
	clk.Advance(50 * time.Millisecond)

	assert.Equal(t, []int{2}, rec.calls())
	assert.Equal(t, 100*time.Millisecond, f.maxWait)
}

func TestDebounce_LeadingAndTrailing(t *testing.T) {
	f, rec, clk := setup(100*time.Millisecond, WithLeading(true))

	counter := 1
	got := f.Call(counter)
	assert.Equal(t, 10, got, "leading invocation result is returned")
	assert.Equal(t, []int{1}, rec.calls(), "leading edge fires at call time")

	counter++
	clk.Advance(10 * time.Millisecond)
	f.Call(counter)

	clk.Advance(200 * time.Millisecond)
	calls := rec.calls()
	require.Len(t, calls, 2)
	assert.NotEqual(t, calls[0], calls[1])
	assert.Equal(t, counter, calls[1], "trailing edge carries the final value")
}

func TestDebounce_LeadingSingleCallInvokesOnce(t *testing.T) {
	f, rec, clk := setup(100*time.Millisecond, WithLeading(true))

	f.Call(7)
	assert.False(t, f.Pending(), "leading edge consumed the args")
	clk.Advance(time.Second)

	assert.Equal(t, []int{7}, rec.calls(), "args consumed by the leading edge are not replayed")
}

func TestDebounce_PendingTracksTrailingInvocation(t *testing.T) {
	f, rec, clk := setup(100*time.Millisecond, WithLeading(true))

	f.Call(1)
	assert.False(t, f.Pending())

	clk.Advance(10 * time.Millisecond)
	f.Call(2)
	assert.True(t, f.Pending(), "second call in the window awaits the trailing edge")

	clk.Advance(time.Second)
	assert.False(t, f.Pending())
	assert.Equal(t, []int{1, 2}, rec.calls())
}

func TestDebounce_PendingFalseWithoutTrailing(t *testing.T) {
	f, rec, clk := setup(100*time.Millisecond, WithLeading(true), WithTrailing(false))

	f.Call(1)
	clk.Advance(10 * time.Millisecond)
	f.Call(2)
	assert.False(t, f.Pending(), "no trailing invocation will happen")

	clk.Advance(time.Second)
	assert.Equal(t, []int{1}, rec.calls())
}

func TestDebounce_LeadingOnly(t *testing.T) {
	f, rec, clk := setup(100*time.Millisecond, WithLeading(true), WithTrailing(false))

	for i := 1; i <= 3; i++ {
		f.Call(i)
		clk.Advance(10 * time.Millisecond)
	}
	clk.Advance(time.Second)

	assert.Equal(t, []int{1}, rec.calls())
}

func TestDebounce_FlushInvokesSynchronously(t *testing.T) {
	f, rec, clk := setup(100 * time.Millisecond)

	f.Call(3)
	require.True(t, f.Pending())

	got := f.Flush()
	assert.Equal(t, 30, got)
	assert.Equal(t, []int{3}, rec.calls())
	assert.False(t, f.Pending())

	clk.Advance(time.Second)
	assert.Equal(t, []int{3}, rec.calls(), "flushed call does not fire again")
}

func TestDebounce_FlushWithoutPendingReturnsLastResult(t *testing.T) {
	f, rec, clk := setup(100 * time.Millisecond)

	assert.Equal(t, 0, f.Flush())

	f.Call(2)
	clk.Advance(time.Second)
	assert.Equal(t, 20, f.Flush())
	assert.Equal(t, []int{2}, rec.calls())
}

func TestDebounce_CancelDropsPending(t *testing.T) {
	f, rec, clk := setup(100 * time.Millisecond)

	f.Call(1)
	f.Cancel()
	assert.False(t, f.Pending())

	clk.Advance(time.Second)
	assert.Empty(t, rec.calls())

	f.Call(2)
	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, []int{2}, rec.calls(), "calls after Cancel start fresh")
}

func TestDebounce_ZeroWaitCoalescesSameTick(t *testing.T) {
	f, rec, clk := setup(0)

	f.Call(1)
	f.Call(2)
	f.Call(3)
	assert.Empty(t, rec.calls(), "zero wait still defers")

	clk.Advance(0)
	assert.Equal(t, []int{3}, rec.calls())
}

func TestDebounce_InstancesDoNotShareTimers(t *testing.T) {
	clk := testutil.NewFakeClock()
	recA, recB := &recorder{}, &recorder{}
	a := New(recA.fn, 100*time.Millisecond, WithClock(clk))
	b := New(recB.fn, 100*time.Millisecond, WithClock(clk))

	a.Call(1)
	b.Call(2)
	a.Cancel()
	clk.Advance(time.Second)

	assert.Empty(t, recA.calls())
	assert.Equal(t, []int{2}, recB.calls())
}

func TestDebounce_FlushPropagatesPanic(t *testing.T) {
	clk := testutil.NewFakeClock()
	var calls atomic.Int32
	f := New(func(n int) int {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return n
	}, 100*time.Millisecond, WithClock(clk))

	f.Call(1)
	assert.Panics(t, func() { f.Flush() })

	f.Call(2)
	assert.Equal(t, 2, f.Flush(), "Func stays usable after a panicking invocation")
}

func TestDebounce_CallbackMayReenter(t *testing.T) {
	clk := testutil.NewFakeClock()
	var f *Func[int, int]
	var seen []int
	f = New(func(n int) int {
		seen = append(seen, n)
		if n == 1 {
			f.Call(2)
		}
		return n
	}, 100*time.Millisecond, WithClock(clk))

	f.Call(1)
	clk.Advance(time.Second)

	assert.Equal(t, []int{1, 2}, seen)
}

func TestDebounce_ConcurrentCallsRealClock(t *testing.T) {
	var invocations atomic.Int32
	var last atomic.Int32
	f := New(func(n int) int {
		invocations.Add(1)
		last.Store(int32(n))
		return n
	}, 20*time.Millisecond)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				f.Call(i)
			}
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		return !f.Pending() && last.Load() == 49
	}, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, invocations.Load(), int32(1))
}
