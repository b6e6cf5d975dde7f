package ld

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTestContext(t *testing.T, localContext map[string]interface{}) *Context {
	t.Helper()
	ctx, err := NewContext(nil, NewOptions("")).Parse(localContext)
	require.NoError(t, err)
	return ctx
}

func TestContainerMapKindFor(t *testing.T) {
	ctx := parseTestContext(t, map[string]interface{}{
		"label": map[string]interface{}{"@id": "http://example.org/label", "@container": "@language"},
		"plain": map[string]interface{}{"@id": "http://example.org/plain"},
	})

	assert.Equal(t, languageMap, containerMapKindFor(ctx, "label", map[string]interface{}{"en": "hi"}))
	assert.Equal(t, notContainerMap, containerMapKindFor(ctx, "plain", map[string]interface{}{"en": "hi"}))
	assert.Equal(t, notContainerMap, containerMapKindFor(ctx, "label", []interface{}{"hi"}),
		"array syntax is never map shorthand regardless of container mapping")
}

func TestExpandContainerMap_Language(t *testing.T) {
	ctx := parseTestContext(t, map[string]interface{}{
		"label": map[string]interface{}{"@id": "http://example.org/label", "@container": "@language"},
	})
	value := map[string]interface{}{
		"en":    "hello",
		"@none": "unmarked",
		"fr":    []interface{}{"bonjour", "salut"},
	}
	_, raw, err := DecodeDocument(mustJSON(t, value))
	require.NoError(t, err)

	items, err := expandContainerMap(ctx, languageMap, "label", value, raw)
	require.NoError(t, err)
	require.Len(t, items, 4)
	for _, item := range items {
		obj := item.(map[string]interface{})
		if obj["@value"] == "unmarked" {
			_, hasLang := obj["@language"]
			assert.False(t, hasLang, "@none must not become a literal @language tag")
		} else {
			assert.NotEmpty(t, obj["@language"])
		}
	}
}

func TestExpandContainerMap_IndexOnGraph(t *testing.T) {
	ctx := parseTestContext(t, map[string]interface{}{
		"scenario": map[string]interface{}{"@id": "http://example.org/scenario", "@container": []interface{}{"@graph", "@index"}},
	})
	value := map[string]interface{}{
		"withdrawal": map[string]interface{}{"@id": "http://example.org/s1"},
	}
	_, raw, err := DecodeDocument(mustJSON(t, value))
	require.NoError(t, err)

	items, err := expandContainerMap(ctx, indexMap, "scenario", value, raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	wrapper := items[0].(map[string]interface{})
	assert.Equal(t, "withdrawal", wrapper["@index"], "the index key names the graph wrapper")
	_, hasIndexOnNode := wrapper["@index"].(map[string]interface{})
	assert.False(t, hasIndexOnNode)
	graphNodes := wrapper["@graph"].([]interface{})
	require.Len(t, graphNodes, 1)
	node := graphNodes[0].(map[string]interface{})
	_, indexLeakedOntoNode := node["@index"]
	assert.False(t, indexLeakedOntoNode, "the index must not also land on the wrapped node")
}

func TestExpandContainerMap_IdOnGraph(t *testing.T) {
	ctx := parseTestContext(t, map[string]interface{}{
		"scenario": map[string]interface{}{"@id": "http://example.org/scenario", "@container": []interface{}{"@graph", "@id"}},
	})
	value := map[string]interface{}{
		"http://example.org/g1": map[string]interface{}{"http://example.org/p": "v"},
	}
	_, raw, err := DecodeDocument(mustJSON(t, value))
	require.NoError(t, err)

	items, err := expandContainerMap(ctx, idMap, "scenario", value, raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	wrapper := items[0].(map[string]interface{})
	assert.Equal(t, "http://example.org/g1", wrapper["@id"])
	node := wrapper["@graph"].([]interface{})[0].(map[string]interface{})
	_, idLeakedOntoNode := node["@id"]
	assert.False(t, idLeakedOntoNode)
}

func TestToNodeObject(t *testing.T) {
	t.Run("string becomes an @id reference", func(t *testing.T) {
		assert.Equal(t, map[string]interface{}{"@id": "http://example.org/x"}, toNodeObject("http://example.org/x"))
	})
	t.Run("map is shallow-cloned, not mutated in place", func(t *testing.T) {
		original := map[string]interface{}{"http://example.org/p": "v"}
		clone := toNodeObject(original)
		clone["@id"] = "http://example.org/new"
		_, leaked := original["@id"]
		assert.False(t, leaked)
	})
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
