package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quill/internal/storage"
)

// To regenerate golden files:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"settings_burst", "logout_order", "clear_race", "novel_reopen"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/clear_race.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "clear_race", result))
}

func TestTraceSnapshotJSON(t *testing.T) {
	snapshot := TraceSnapshot{
		Scenario: "s",
		Trace:    []TraceEvent{{Seq: 1, Op: OpSet, Key: "auth", AtMs: 5}},
	}

	data, err := storage.Encode(snapshot)
	require.NoError(t, err)
	assert.Equal(t, `{"scenario":"s","trace":[{"at_ms":5,"key":"auth","op":"set","seq":1}]}`, string(data))
}
