package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingBackend_RecordsWrites(t *testing.T) {
	b := NewRecordingBackend()
	b.Seed("seeded", "x")

	require.NoError(t, b.SetItem("a", "1"))
	require.NoError(t, b.SetItem("a", "2"))
	require.NoError(t, b.RemoveItem("seeded"))

	v, ok, err := b.GetItem("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	assert.Len(t, b.Sets(), 2)
	assert.Len(t, b.SetsFor("a"), 2)
	assert.Equal(t, []string{"seeded"}, b.Removes())

	b.FailWrites(true)
	assert.ErrorIs(t, b.SetItem("a", "3"), ErrInjected)
}
