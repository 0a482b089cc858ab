package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/quill/internal/storage"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] @%dms %s\n", event.Seq, event.AtMs, event)
	}

	return buf.String()
}

// assertWriteCount checks the number of set operations on a key.
func assertWriteCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == OpSet && event.Key == a.Key {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertWriteCount,
		Expected: fmt.Sprintf("%d writes to %s", a.Count, a.Key),
		Actual:   fmt.Sprintf("%d writes", count),
		Trace:    trace,
	}
}

// assertTraceOrder checks that ops appear in the given order.
// Ops don't need to be consecutive (intervening operations are allowed).
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Ops) && event.String() == a.Ops[next] {
			next++
		}
	}
	if next == len(a.Ops) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: strings.Join(a.Ops, " -> "),
		Actual:   fmt.Sprintf("%q not found after %d matched ops", a.Ops[next], next),
		Trace:    trace,
	}
}

// assertRecord checks that the stored value under a key contains every
// field in Expect. Extra stored fields are ignored.
func assertRecord(adapter *storage.Adapter, trace []TraceEvent, a Assertion) error {
	raw, ok := adapter.Get(a.Key)
	if !ok {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("record %s", a.Key),
			Actual:   "absent",
			Trace:    trace,
		}
	}

	var actual any
	if err := json.Unmarshal(raw, &actual); err != nil {
		return fmt.Errorf("record %s: %w", a.Key, err)
	}
	expected, err := normalize(a.Expect)
	if err != nil {
		return fmt.Errorf("record %s: expect: %w", a.Key, err)
	}
	if !matchSubset(actual, expected) {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("%s to contain %v", a.Key, expected),
			Actual:   string(raw),
			Trace:    trace,
		}
	}
	return nil
}

// assertAbsent checks that no live record exists under a key.
func assertAbsent(adapter *storage.Adapter, trace []TraceEvent, a Assertion) error {
	raw, ok := adapter.Get(a.Key)
	if !ok {
		return nil
	}
	return &AssertionError{
		Type:     AssertAbsent,
		Expected: fmt.Sprintf("no record %s", a.Key),
		Actual:   string(raw),
		Trace:    trace,
	}
}

// normalize round-trips v through JSON so YAML ints compare equal to
// decoded JSON numbers.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// matchSubset reports whether actual contains expected. Objects match when
// every expected key matches; everything else must be equal.
func matchSubset(actual, expected any) bool {
	em, ok := expected.(map[string]any)
	if !ok {
		return reflect.DeepEqual(actual, expected)
	}
	am, ok := actual.(map[string]any)
	if !ok {
		return false
	}
	for k, ev := range em {
		av, exists := am[k]
		if !exists || !matchSubset(av, ev) {
			return false
		}
	}
	return true
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The adapter is used by record and absent assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, adapter *storage.Adapter) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertWriteCount:
			err = assertWriteCount(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertRecord, AssertAbsent:
			if adapter == nil {
				err = fmt.Errorf("assertion[%d]: %s requires storage", i, assertion.Type)
			} else if assertion.Type == AssertRecord {
				err = assertRecord(adapter, result.Trace, assertion)
			} else {
				err = assertAbsent(adapter, result.Trace, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
