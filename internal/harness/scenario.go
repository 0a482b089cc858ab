package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a store behaviour test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Wait is the debounce window. Defaults to 300ms.
	Wait string `yaml:"wait,omitempty"`

	// Seed holds records written to storage before the stores open.
	// Seed writes are not traced.
	Seed map[string]any `yaml:"seed,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and storage.
	// Supported types: write_count, record, absent, trace_order
	Assertions []Assertion `yaml:"assertions"`
}

// Step is exactly one of: a store action, a clock advance or a reopen.
type Step struct {
	// Do names the action, e.g. "settings.theme". See actions.go.
	Do string `yaml:"do,omitempty"`

	// Arg is the action's single argument, if it takes one.
	Arg string `yaml:"arg,omitempty"`

	// Advance moves the fake clock forward, firing due debounce timers.
	Advance string `yaml:"advance,omitempty"`

	// Reopen flushes the session and rehydrates a new one from storage,
	// as a process restart would.
	Reopen bool `yaml:"reopen,omitempty"`

	// ExpectError, when set, requires the action to fail with an error
	// containing this text.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion checks the outcome of a scenario.
type Assertion struct {
	// Type is the assertion kind (write_count, record, absent, trace_order).
	Type string `yaml:"type"`

	// Key is the storage key for write_count, record and absent.
	Key string `yaml:"key,omitempty"`

	// Count is the expected number of writes for write_count.
	Count int `yaml:"count"`

	// Expect is a subset of the stored value for record.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Ops lists "<op> <key>" entries that must appear in this order for
	// trace_order. Other operations may interleave.
	Ops []string `yaml:"ops,omitempty"`
}

// Assertion type constants.
const (
	AssertWriteCount = "write_count"
	AssertRecord     = "record"
	AssertAbsent     = "absent"
	AssertTraceOrder = "trace_order"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Wait != "" {
		if _, err := time.ParseDuration(s.Wait); err != nil {
			return fmt.Errorf("wait: %w", err)
		}
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	kinds := 0
	if step.Do != "" {
		kinds++
		if _, ok := actions[step.Do]; !ok {
			return fmt.Errorf("steps[%d]: unknown action %q", index, step.Do)
		}
	}
	if step.Advance != "" {
		kinds++
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d]: advance: %w", index, err)
		}
		if d < 0 {
			return fmt.Errorf("steps[%d]: advance must not be negative", index)
		}
	}
	if step.Reopen {
		kinds++
	}
	if kinds != 1 {
		return fmt.Errorf("steps[%d]: exactly one of do, advance or reopen is required", index)
	}
	if step.ExpectError != "" && step.Do == "" {
		return fmt.Errorf("steps[%d]: expect_error requires do", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertWriteCount:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for write_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for write_count", index)
		}
	case AssertRecord:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for record", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
	case AssertAbsent:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for absent", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
