package ld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransducer_NilOptionsDefaults(t *testing.T) {
	transducer := NewTransducer(nil)
	require.NotNil(t, transducer.opts)
	assert.Equal(t, JsonLd_1_1, transducer.opts.ProcessingMode)
}

func TestToRDFFromBytes_InvalidJSONPropagatesError(t *testing.T) {
	transducer := NewTransducer(NewOptions(""))
	err := transducer.ToRDFFromBytes([]byte(`{not json`), &recordingSink{})
	jsonLDError := new(JsonLdError)
	require.ErrorAs(t, err, &jsonLDError)
	assert.Equal(t, InvalidInput, jsonLDError.Code)
}

func TestToRDFFromBytes_WalkErrorPropagates(t *testing.T) {
	transducer := NewTransducer(NewOptions(""))
	err := transducer.ToRDFFromBytes([]byte(`{
		"@context": {"children": {"@reverse": "http://example.org/parent"}},
		"@id": "http://example.org/parent1",
		"children": "not an object"
	}`), &recordingSink{})
	jsonLDError := new(JsonLdError)
	require.ErrorAs(t, err, &jsonLDError)
	assert.Equal(t, InvalidReverseValue, jsonLDError.Code)
}

func TestToRDFFromBytes_HonoursExpandContextOption(t *testing.T) {
	opts := NewOptions("")
	opts.ExpandContext = map[string]interface{}{"name": "http://schema.org/name"}
	transducer := NewTransducer(opts)

	sink := &recordingSink{}
	require.NoError(t, transducer.ToRDFFromBytes([]byte(`{
		"@id": "http://example.org/alice",
		"name": "Alice"
	}`), sink))

	require.Len(t, sink.quads, 1)
	assert.Equal(t, "http://schema.org/name", sink.quads[0].predicate)
}

// ToRDFFromBytes sees source text and so visits an @language container
// map in declaration order; ToRDFFromValue has no source text and always
// falls back to lexicographic key order. Both produce the same set of
// quads, just discovered in a different sequence, so this asserts on the
// content (via sorted()) rather than emission order.
func TestToRDFFromValue_MatchesToRDFFromBytesContent(t *testing.T) {
	doc := `{
		"@context": {
			"label": {"@id": "http://example.org/label", "@container": "@language"}
		},
		"@id": "http://example.org/thing",
		"label": {"en": "hello", "fr": "bonjour"}
	}`

	bytesSink := runToRDF(t, doc)

	var decoded interface{}
	decodedDoc, _, err := DecodeDocument([]byte(doc))
	require.NoError(t, err)
	decoded = decodedDoc

	valueSink := &recordingSink{}
	transducer := NewTransducer(NewOptions(""))
	require.NoError(t, transducer.ToRDFFromValue(decoded, valueSink))

	assert.Equal(t, bytesSink.sorted(), valueSink.sorted())
}

func TestToRDFFromValue_TopLevelArray(t *testing.T) {
	doc := []interface{}{
		map[string]interface{}{
			"@context": map[string]interface{}{"name": "http://schema.org/name"},
			"@id":      "http://example.org/a",
			"name":     "A",
		},
		map[string]interface{}{
			"@context": map[string]interface{}{"name": "http://schema.org/name"},
			"@id":      "http://example.org/b",
			"name":     "B",
		},
	}

	sink := &recordingSink{}
	transducer := NewTransducer(NewOptions(""))
	require.NoError(t, transducer.ToRDFFromValue(doc, sink))
	assert.Len(t, sink.quads, 2)
}
