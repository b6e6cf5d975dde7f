package ld

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestDecodeDocument(t *testing.T) {
	t.Run("rejects invalid JSON", func(t *testing.T) {
		_, _, err := DecodeDocument([]byte(`{"@id": `))
		jsonLDError := new(JsonLdError)
		require.ErrorAs(t, err, &jsonLDError)
		assert.Equal(t, InvalidInput, jsonLDError.Code)
	})

	t.Run("decodes numbers with json.Number so large integers survive", func(t *testing.T) {
		doc, raw, err := DecodeDocument([]byte(`{"@value": 9007199254740993}`))
		require.NoError(t, err)
		m := doc.(map[string]interface{})
		assert.Equal(t, "9007199254740993", m["@value"].(json.Number).String())
		assert.True(t, raw.IsObject())
	})

	t.Run("parallel tree preserves declaration order", func(t *testing.T) {
		_, raw, err := DecodeDocument([]byte(`{"z": 1, "a": 2, "m": 3}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "a", "m"}, orderedKeys(raw))
	})
}

func TestOrderedKeys(t *testing.T) {
	t.Run("nil for non-object", func(t *testing.T) {
		_, raw, err := DecodeDocument([]byte(`[1, 2, 3]`))
		require.NoError(t, err)
		assert.Nil(t, orderedKeys(raw))
	})

	t.Run("nil for the zero Result", func(t *testing.T) {
		assert.Nil(t, orderedKeys(gjson.Result{}))
	})
}

func TestRawChildAndIndex(t *testing.T) {
	_, raw, err := DecodeDocument([]byte(`{"list": [10, 20, 30], "nested": {"k": "v"}}`))
	require.NoError(t, err)

	assert.Equal(t, "v", rawChild(rawChild(raw, "nested"), "k").String())
	assert.False(t, rawChild(raw, "missing").Exists())

	listRaw := rawChild(raw, "list")
	assert.Equal(t, int64(20), rawIndex(listRaw, 1).Int())
	assert.False(t, rawIndex(listRaw, 99).Exists())
	assert.False(t, rawIndex(raw, 0).Exists(), "rawIndex on a non-array Result")
}
