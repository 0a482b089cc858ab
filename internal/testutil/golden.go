package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGoldenRecord compares the raw record stored under key against
// testdata/golden/{name}.golden in the calling package.
//
// To regenerate golden files, run the package tests with -update.
func AssertGoldenRecord(t *testing.T, name string, b *RecordingBackend, key string) {
	t.Helper()

	raw, ok, _ := b.GetItem(key)
	if !ok {
		t.Fatalf("no record stored under %q", key)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(raw))
}
