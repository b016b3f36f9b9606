package scraper

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAssignedObject_NestedBraces(t *testing.T) {
	script := `window.X = {"a":{"b":1},"c":2}; window.Y = function() { return {}; };`

	blob, ok := ExtractAssignedObject(script, "window.X")
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":1},"c":2}`, blob)

	var parsed map[string]any
	require.NoError(t, DecodeAssignedObject(script, "window.X", &parsed))
	assert.Equal(t, float64(2), parsed["c"])
	assert.Equal(t, map[string]any{"b": float64(1)}, parsed["a"])

	// a lazy regex stops at the first inner brace and yields invalid JSON
	naive := regexp.MustCompile(`window\.X = (\{.*?\})`).FindStringSubmatch(script)
	require.Len(t, naive, 2)
	assert.NotEqual(t, blob, naive[1])
}

func TestExtractAssignedObject_BracesInsideStrings(t *testing.T) {
	script := `window.__SSR_DATA__ = {"title":"a } tricky { \" value","n":{"m":[1,2]}};trailing()`

	blob, ok := ExtractAssignedObject(script, "window.__SSR_DATA__")
	require.True(t, ok)
	assert.Equal(t, `{"title":"a } tricky { \" value","n":{"m":[1,2]}}`, blob)
}

func TestExtractAssignedObject_Missing(t *testing.T) {
	_, ok := ExtractAssignedObject(`var a = 1;`, "window.X")
	assert.False(t, ok)

	_, ok = ExtractAssignedObject(`window.X = {"a":{"b":1}`, "window.X")
	assert.False(t, ok)

	var out map[string]any
	assert.Error(t, DecodeAssignedObject(`window.X = {a:1}`, "window.X", &out))
}
