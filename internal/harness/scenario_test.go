package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
wait: 50ms
seed:
  app-settings:
    theme: dark
steps:
  - do: settings.theme
    arg: light
  - advance: 50ms
  - reopen: true
assertions:
  - type: write_count
    key: app-settings
    count: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "50ms", scenario.Wait)
	assert.Len(t, scenario.Steps, 3)
	assert.Equal(t, "settings.theme", scenario.Steps[0].Do)
	assert.Equal(t, "light", scenario.Steps[0].Arg)
	assert.True(t, scenario.Steps[2].Reopen)
	assert.Equal(t, map[string]any{"theme": "dark"}, scenario.Seed["app-settings"])
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	path := writeScenario(t, "name: [unclosed")
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownFieldsRejected(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: d
steps:
  - do: settings.sidebar
assertion:
  - type: absent
    key: auth
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertion")
}

func TestLoadScenario_Invalid(t *testing.T) {
	const header = "name: n\ndescription: d\n"
	const okSteps = "steps:\n  - do: settings.sidebar\n"
	const okAsserts = "assertions:\n  - type: absent\n    key: auth\n"

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing name", "description: d\n" + okSteps + okAsserts, "name is required"},
		{"missing description", "name: n\n" + okSteps + okAsserts, "description is required"},
		{"bad wait", header + "wait: soon\n" + okSteps + okAsserts, "wait"},
		{"no steps", header + okAsserts, "steps list is required"},
		{"no assertions", header + okSteps, "assertions list is required"},
		{"unknown action", header + "steps:\n  - do: settings.colour\n" + okAsserts, `unknown action "settings.colour"`},
		{"two kinds", header + "steps:\n  - do: settings.sidebar\n    advance: 1s\n" + okAsserts, "exactly one of"},
		{"empty step", header + "steps:\n  - arg: x\n" + okAsserts, "exactly one of"},
		{"negative advance", header + "steps:\n  - advance: -1s\n" + okAsserts, "must not be negative"},
		{"expect_error without do", header + "steps:\n  - advance: 1s\n    expect_error: x\n" + okAsserts, "expect_error requires do"},
		{"unknown assertion", header + okSteps + "assertions:\n  - type: final_state\n", `unknown assertion type "final_state"`},
		{"write_count without key", header + okSteps + "assertions:\n  - type: write_count\n", "key is required for write_count"},
		{"negative count", header + okSteps + "assertions:\n  - type: write_count\n    key: auth\n    count: -1\n", "count must be non-negative"},
		{"record without expect", header + okSteps + "assertions:\n  - type: record\n    key: auth\n", "expect is required"},
		{"trace_order without ops", header + okSteps + "assertions:\n  - type: trace_order\n", "ops list is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_WriteCountZeroAllowed(t *testing.T) {
	path := writeScenario(t, `
name: zero
description: d
steps:
  - advance: 1s
assertions:
  - type: write_count
    key: auth
    count: 0
`)
	_, err := LoadScenario(path)
	require.NoError(t, err)
}

func TestAssertionConstants(t *testing.T) {
	assert.Equal(t, "write_count", AssertWriteCount)
	assert.Equal(t, "record", AssertRecord)
	assert.Equal(t, "absent", AssertAbsent)
	assert.Equal(t, "trace_order", AssertTraceOrder)
}

func TestActionsCoverEveryStore(t *testing.T) {
	for _, prefix := range []string{"settings.", "auth.", "profile.", "novel.", "session."} {
		found := false
		for name := range actions {
			if len(name) > len(prefix) && name[:len(prefix)] == prefix {
				found = true
				break
			}
		}
		assert.True(t, found, "no actions for %s", prefix)
	}
}
