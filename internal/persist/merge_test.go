package persist

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShallowMerge(t *testing.T) {
	got, err := ShallowMerge(
		json.RawMessage(`{"a":0,"b":2,"n":{"x":1,"y":2}}`),
		json.RawMessage(`{"a":1,"n":{"x":5},"extra":true}`),
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":2,"n":{"x":5},"extra":true}`, string(got))
}

func TestDeepMerge(t *testing.T) {
	got, err := DeepMerge(
		json.RawMessage(`{"a":0,"n":{"x":1,"y":2,"deep":{"p":1,"q":2}},"list":[1,2]}`),
		json.RawMessage(`{"n":{"x":5,"deep":{"q":9}},"list":[3]}`),
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":0,"n":{"x":5,"y":2,"deep":{"p":1,"q":9}},"list":[3]}`, string(got))
}

func TestDeepMerge_ScalarReplacesObject(t *testing.T) {
	got, err := DeepMerge(
		json.RawMessage(`{"n":{"x":1}}`),
		json.RawMessage(`{"n":null}`),
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":null}`, string(got))
}

func TestMerge_RejectsNonObjects(t *testing.T) {
	for _, merge := range []MergeFunc{ShallowMerge, DeepMerge} {
		_, err := merge(json.RawMessage(`{"a":1}`), json.RawMessage(`[1]`))
		assert.ErrorIs(t, err, errNotObject)

		_, err = merge(json.RawMessage(`{"a":1}`), json.RawMessage(`null`))
		assert.ErrorIs(t, err, errNotObject)

		_, err = merge(json.RawMessage(`"str"`), json.RawMessage(`{}`))
		assert.ErrorIs(t, err, errNotObject)

		_, err = merge(json.RawMessage(`{"a":1}`), json.RawMessage(`{"a":`))
		assert.Error(t, err)
	}
}

func TestMerge_EmptyRecordKeepsDefaults(t *testing.T) {
	got, err := ShallowMerge(json.RawMessage(`{"a":1}`), json.RawMessage(` {} `))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
}
