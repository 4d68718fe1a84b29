package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBMap_Value_Serialization(t *testing.T) {
	m := JSONBMap{"a": "b", "n": 1}
	v, err := m.Value()
	require.NoError(t, err)
	assert.Contains(t, v.(string), `"a":"b"`)
}

func TestJSONBMap_Value_NilMap(t *testing.T) {
	var m JSONBMap
	v, err := m.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestJSONBMap_Scan_Deserialization(t *testing.T) {
	var m JSONBMap
	err := m.Scan([]byte(`{"a":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, "b", m.GetString("a"))
}

func TestJSONBMap_Scan_NilValue(t *testing.T) {
	var m JSONBMap
	err := m.Scan(nil)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestJSONBMap_GetInt(t *testing.T) {
	m := JSONBMap{"n": float64(42)}
	assert.Equal(t, 42, m.GetInt("n"))
	assert.Equal(t, 0, m.GetInt("missing"))
}

func TestJSONBMap_GetFloat(t *testing.T) {
	m := JSONBMap{"f": float64(3.5)}
	assert.Equal(t, 3.5, m.GetFloat("f"))
}

func TestJSONBMap_GetBool(t *testing.T) {
	m := JSONBMap{"b": true}
	assert.True(t, m.GetBool("b"))
	assert.False(t, m.GetBool("missing"))
}

func TestJSONBMap_SetAndHas(t *testing.T) {
	m := make(JSONBMap)
	m.Set("k", "v")
	assert.True(t, m.Has("k"))
	val, ok := m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestJSONBMap_Delete(t *testing.T) {
	m := JSONBMap{"k": "v"}
	m.Delete("k")
	assert.False(t, m.Has("k"))
}

func TestJSONBMap_Clone(t *testing.T) {
	m := JSONBMap{"k": "v"}
	clone := m.Clone()
	clone.Set("k", "other")
	assert.Equal(t, "v", m.GetString("k"))
	assert.Equal(t, "other", clone.GetString("k"))
}

func TestStringArray_Value_Serialization(t *testing.T) {
	a := StringArray{"x", "y"}
	v, err := a.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"x","y"}`, v)
}

func TestStringArray_Value_EmptyArray(t *testing.T) {
	a := StringArray{}
	v, err := a.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestStringArray_Scan_Deserialization(t *testing.T) {
	var a StringArray
	err := a.Scan([]byte(`{"x","y"}`))
	require.NoError(t, err)
	assert.Equal(t, StringArray{"x", "y"}, a)
}

func TestStringArray_Scan_EmptyArray(t *testing.T) {
	var a StringArray
	err := a.Scan([]byte("{}"))
	require.NoError(t, err)
	assert.Empty(t, a)
}

func TestStringArray_Scan_NilValue(t *testing.T) {
	var a StringArray
	err := a.Scan(nil)
	require.NoError(t, err)
	assert.Empty(t, a)
}
