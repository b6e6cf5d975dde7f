package ld

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsKeyword(t *testing.T) {
	assert.True(t, IsKeyword("@context"))
	assert.True(t, IsKeyword("@vocab"))
	assert.False(t, IsKeyword("name"))
	assert.False(t, IsKeyword(42))
}

func TestDeepCompare_Maps(t *testing.T) {
	a := map[string]interface{}{"@id": "x", "@type": "y"}
	b := map[string]interface{}{"@type": "y", "@id": "x"}
	assert.True(t, DeepCompare(a, b, true), "key order must not matter")

	c := map[string]interface{}{"@id": "x"}
	assert.False(t, DeepCompare(a, c, true))
}

func TestDeepCompare_ListsOrderSensitiveAndNot(t *testing.T) {
	ordered := []interface{}{"a", "b"}
	reversed := []interface{}{"b", "a"}

	assert.False(t, DeepCompare(ordered, reversed, true))
	assert.True(t, DeepCompare(ordered, reversed, false), "unordered comparison treats lists as multisets")
}

func TestDeepCompare_NumberAcrossJSONNumberAndFloat(t *testing.T) {
	assert.True(t, DeepCompare(float64(2), json.Number("2"), false))
}

func TestDeepCompare_NilHandling(t *testing.T) {
	assert.True(t, DeepCompare(nil, nil, false))
	assert.False(t, DeepCompare(nil, "x", false))
	assert.False(t, DeepCompare("x", nil, false))
}

func TestIsAbsoluteIri(t *testing.T) {
	assert.True(t, IsAbsoluteIri("http://example.org/a"))
	assert.True(t, IsAbsoluteIri("_:b0"))
	assert.False(t, IsAbsoluteIri("relative/path"))
}

func TestIsRelativeIri(t *testing.T) {
	assert.True(t, IsRelativeIri("relative/path"))
	assert.False(t, IsRelativeIri("http://example.org/a"))
	assert.False(t, IsRelativeIri("@type"), "keywords are never relative IRIs")
}

func TestIsList(t *testing.T) {
	assert.True(t, IsList(map[string]interface{}{"@list": []interface{}{}}))
	assert.False(t, IsList(map[string]interface{}{"@id": "x"}))
	assert.False(t, IsList("not a map"))
}

func TestIsGraph(t *testing.T) {
	assert.True(t, IsGraph(map[string]interface{}{"@graph": []interface{}{}}))
	assert.True(t, IsGraph(map[string]interface{}{"@graph": []interface{}{}, "@id": "x"}))
	assert.False(t, IsGraph(map[string]interface{}{"@graph": []interface{}{}, "other": "x"}))
	assert.False(t, IsGraph(map[string]interface{}{"@id": "x"}))
}

func TestIsValue(t *testing.T) {
	assert.True(t, IsValue(map[string]interface{}{"@value": "x"}))
	assert.False(t, IsValue(map[string]interface{}{"@id": "x"}))
}

func TestArrayify(t *testing.T) {
	assert.Equal(t, []interface{}{1, 2}, Arrayify([]interface{}{1, 2}))
	assert.Equal(t, []interface{}{"x"}, Arrayify("x"))
}

func TestCompareShortestLeast(t *testing.T) {
	assert.True(t, CompareShortestLeast("a", "bb"))
	assert.False(t, CompareShortestLeast("bb", "a"))
	assert.True(t, CompareShortestLeast("a", "b"))
}

func TestShortestLeast_Sort(t *testing.T) {
	terms := ShortestLeast{"ccc", "a", "bb"}
	sort.Sort(terms)
	assert.Equal(t, ShortestLeast{"a", "bb", "ccc"}, terms)
}

func TestGetOrderedKeys(t *testing.T) {
	m := map[string]interface{}{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, GetOrderedKeys(m))
}

func TestGetKeys_ContainsAllEntries(t *testing.T) {
	m := map[string]interface{}{"b": 1, "a": 2}
	keys := GetKeys(m)
	sort.Strings(keys)
	assert.Equal(t, []string{"a", "b"}, keys)
}
