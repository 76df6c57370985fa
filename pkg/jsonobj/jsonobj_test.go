package jsonobj

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreservesKeyOrder(t *testing.T) {
	data := []byte(`{"zebra": 1, "apple": 2, "mango": {"nested": true}}`)

	obj, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"zebra", "apple", "mango"}, obj.Keys())
	assert.Equal(t, 3, obj.Len())
}

func TestParseRejectsNonObjects(t *testing.T) {
	for _, data := range []string{`[1, 2]`, `"text"`, `42`, `null`} {
		_, err := Parse([]byte(data))
		assert.Error(t, err, "input: %s", data)
	}
}

func TestDelete(t *testing.T) {
	obj, err := Parse([]byte(`{"a": 1, "b": 2, "c": 3}`))
	require.NoError(t, err)

	assert.True(t, obj.Delete("b"))
	assert.False(t, obj.Delete("b"))
	assert.False(t, obj.Delete("missing"))
	assert.Equal(t, []string{"a", "c"}, obj.Keys())
	assert.False(t, obj.Has("b"))
}

func TestSetAppendsNewKeysInOrder(t *testing.T) {
	obj, err := Parse([]byte(`{"name": "demo"}`))
	require.NoError(t, err)

	require.NoError(t, obj.SetValue("version", "1.0.0"))
	obj.Set("name", json.RawMessage(`"renamed"`))

	assert.Equal(t, []string{"name", "version"}, obj.Keys())

	var name string
	require.NoError(t, obj.Unmarshal("name", &name))
	assert.Equal(t, "renamed", name)
}

func TestMarshalRoundTrip(t *testing.T) {
	obj, err := Parse([]byte(`{"name": "demo", "deps": {"vue": "^3.0.0"}, "tags": ["a", "b"]}`))
	require.NoError(t, err)

	out, err := obj.Marshal()
	require.NoError(t, err)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, obj.Keys(), reparsed.Keys())

	// output stays valid JSON with a trailing newline
	assert.True(t, json.Valid(out))
	assert.Equal(t, byte('\n'), out[len(out)-1])
}

func TestMarshalEmptyObject(t *testing.T) {
	out, err := New().Marshal()
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}
