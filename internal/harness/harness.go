package harness

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/roach88/quill/internal/persist"
	"github.com/roach88/quill/internal/storage"
	"github.com/roach88/quill/internal/stores"
	"github.com/roach88/quill/internal/testutil"
)

// Harness runs one scenario against a fresh session.
type Harness struct {
	clock   *testutil.FakeClock
	inner   *storage.MemoryBackend
	backend *tracingBackend
	adapter *storage.Adapter
	opts    stores.Options
	session *stores.Session
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against an empty in-memory backend with a fake clock,
// so time only moves when a step advances it. Record ids are sequential
// ("id-1", "id-2", ...).
//
// Execution flow:
// 1. Seed records directly into storage (untraced)
// 2. Open the stores, rehydrating from the seed
// 3. Execute steps in order
// 4. Evaluate assertions against the trace and storage
//
// A returned error means the scenario could not run at all. Step and
// assertion failures are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	wait := persist.DefaultWait
	if scenario.Wait != "" {
		d, err := time.ParseDuration(scenario.Wait)
		if err != nil {
			return nil, fmt.Errorf("wait: %w", err)
		}
		wait = d
	}

	clk := testutil.NewFakeClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in scenarios
	inner := storage.NewMemoryBackend()

	h := &Harness{
		clock:   clk,
		inner:   inner,
		backend: newTracingBackend(inner, clk),
		opts: stores.Options{
			Wait:   wait,
			Clock:  clk,
			Logger: logger,
			NewID:  sequentialIDs(),
		},
	}
	h.adapter = storage.NewAdapter(h.backend, storage.WithClock(clk), storage.WithLogger(logger))

	if err := h.seed(scenario.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed storage: %w", err)
	}
	h.session = stores.Open(h.adapter, h.opts)

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(step); err != nil {
			result.AddError(fmt.Sprintf("steps[%d]: %v", i, err))
		}
	}

	result.Trace = h.backend.trace()
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, h.adapter) {
		result.AddError(errMsg)
	}
	return result, nil
}

// seed writes records through an untraced adapter so they exist before
// the stores rehydrate. Keys are written in sorted order.
func (h *Harness) seed(records map[string]any) error {
	if len(records) == 0 {
		return nil
	}
	a := storage.NewAdapter(h.inner, storage.WithClock(h.clock))
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := a.Put(k, records[k], 0); err != nil {
			return err
		}
	}
	return nil
}

// execute runs a single step. Steps are validated at load time; exactly
// one of Do, Advance or Reopen is set.
func (h *Harness) execute(step Step) error {
	switch {
	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("advance: %w", err)
		}
		h.clock.Advance(d)
		return nil

	case step.Reopen:
		h.session.Flush()
		h.session = stores.Open(h.adapter, h.opts)
		return nil
	}

	act, ok := actions[step.Do]
	if !ok {
		return fmt.Errorf("unknown action %q", step.Do)
	}
	err := act(h.session, step.Arg)
	switch {
	case step.ExpectError == "" && err != nil:
		return fmt.Errorf("%s(%q): unexpected error: %w", step.Do, step.Arg, err)
	case step.ExpectError != "" && err == nil:
		return fmt.Errorf("%s(%q): expected error containing %q, got nil", step.Do, step.Arg, step.ExpectError)
	case step.ExpectError != "" && !strings.Contains(err.Error(), step.ExpectError):
		return fmt.Errorf("%s(%q): expected error containing %q, got %q", step.Do, step.Arg, step.ExpectError, err)
	}
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}
