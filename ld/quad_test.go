package ld

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_EqualAcrossKinds(t *testing.T) {
	assert.True(t, NewIRI("http://example.org/a").Equal(NewIRI("http://example.org/a")))
	assert.False(t, NewIRI("http://example.org/a").Equal(NewIRI("http://example.org/b")))
	assert.False(t, NewIRI("http://example.org/a").Equal(NewBlankNode("_:a")))

	assert.True(t, NewBlankNode("_:a").Equal(NewBlankNode("_:a")))
	assert.True(t, NewLiteral("x", XSDString, "").Equal(NewLiteral("x", XSDString, "")))
	assert.False(t, NewLiteral("x", XSDString, "").Equal(NewLiteral("x", RDFLangString, "en")))
}

func TestNewLiteral_EmptyDatatypeDefaultsToXSDString(t *testing.T) {
	l := NewLiteral("hi", "", "")
	assert.Equal(t, XSDString, l.Datatype)
}

func TestNewQuad_GraphHandling(t *testing.T) {
	s, p, o := NewIRI("http://example.org/s"), NewIRI("http://example.org/p"), NewIRI("http://example.org/o")

	assert.Nil(t, NewQuad(s, p, o, "").Graph, "empty graph name means the default graph")
	assert.Nil(t, NewQuad(s, p, o, "@default").Graph)

	named := NewQuad(s, p, o, "http://example.org/g")
	require.NotNil(t, named.Graph)
	assert.True(t, IsIRI(named.Graph))

	blankGraph := NewQuad(s, p, o, "_:g0")
	require.NotNil(t, blankGraph.Graph)
	assert.True(t, IsBlankNode(blankGraph.Graph))
}

func TestQuad_Valid(t *testing.T) {
	s, p := NewIRI("http://example.org/s"), NewIRI("http://example.org/p")

	valid := NewQuad(s, p, NewLiteral("x", XSDString, ""), "")
	assert.True(t, valid.Valid())

	badLang := NewQuad(s, p, NewLiteral("x", RDFLangString, "not a tag!"), "")
	assert.False(t, badLang.Valid())

	badIRI := NewQuad(s, p, NewIRI("http://"), "")
	assert.False(t, badIRI.Valid())
}

func TestEncodeValueObject_Boolean(t *testing.T) {
	node, err := encodeValueObject(map[string]interface{}{"@value": true})
	require.NoError(t, err)
	literal := node.(*Literal)
	assert.Equal(t, "true", literal.Value)
	assert.Equal(t, XSDBoolean, literal.Datatype)
}

func TestEncodeValueObject_IntegerVsDouble(t *testing.T) {
	intNode, err := encodeValueObject(map[string]interface{}{"@value": json.Number("42")})
	require.NoError(t, err)
	assert.Equal(t, "42", intNode.(*Literal).Value)
	assert.Equal(t, XSDInteger, intNode.(*Literal).Datatype)

	doubleNode, err := encodeValueObject(map[string]interface{}{"@value": json.Number("4.5")})
	require.NoError(t, err)
	assert.Equal(t, XSDDouble, doubleNode.(*Literal).Datatype)
}

func TestEncodeValueObject_LanguageTaggedString(t *testing.T) {
	node, err := encodeValueObject(map[string]interface{}{"@value": "bonjour", "@language": "fr"})
	require.NoError(t, err)
	literal := node.(*Literal)
	assert.Equal(t, RDFLangString, literal.Datatype)
	assert.Equal(t, "fr", literal.Language)
}

func TestEncodeValueObject_ExplicitDatatypeOverridesDefault(t *testing.T) {
	node, err := encodeValueObject(map[string]interface{}{
		"@value": "2020-01-01",
		"@type":  "http://www.w3.org/2001/XMLSchema#date",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#date", node.(*Literal).Datatype)
}

func TestEncodeValueObject_JSONLiteralIsCanonicalized(t *testing.T) {
	node, err := encodeValueObject(map[string]interface{}{
		"@value": map[string]interface{}{"b": 1, "a": 2},
		"@type":  "@json",
	})
	require.NoError(t, err)
	literal := node.(*Literal)
	assert.Equal(t, RDFJSONLiteral, literal.Datatype)
	assert.Equal(t, `{"a":2,"b":1}`, literal.Value, "JCS orders object keys lexicographically")
}

func TestEncodeList_EmptyListIsRDFNil(t *testing.T) {
	sink := &recordingSink{}
	node, err := encodeList(nil, NewIdentifierIssuer("_:b"), "@default", sink)
	require.NoError(t, err)
	assert.Equal(t, RDFNil, node.GetValue())
	assert.Empty(t, sink.quads)
}

func TestEncodeList_EmitsFirstRestSpineInOrder(t *testing.T) {
	sink := &recordingSink{}
	issuer := NewIdentifierIssuer("_:b")
	values := []interface{}{
		map[string]interface{}{"@value": "a"},
		map[string]interface{}{"@value": "b"},
	}
	head, err := encodeList(values, issuer, "@default", sink)
	require.NoError(t, err)
	require.True(t, IsBlankNode(head))

	require.Len(t, sink.quads, 4)
	assert.Equal(t, []string{RDFFirst, RDFRest, RDFFirst, RDFRest}, []string{
		sink.quads[0].predicate, sink.quads[1].predicate, sink.quads[2].predicate, sink.quads[3].predicate,
	})
	assert.Equal(t, head.GetValue(), sink.quads[0].subject)
	assert.Equal(t, "a", sink.quads[0].object)
	assert.Equal(t, RDFNil, sink.quads[3].object, "the last cell's rdf:rest points to rdf:nil")
}

func TestEmitIfValid_DropsNilObjectAndInvalidQuads(t *testing.T) {
	sink := &recordingSink{}
	s, p := NewIRI("http://example.org/s"), NewIRI("http://example.org/p")

	require.NoError(t, emitIfValid(sink, s, p, nil, ""))
	assert.Empty(t, sink.quads, "a nil object (dropped relative-IRI reference) must not reach the sink")

	require.NoError(t, emitIfValid(sink, s, p, NewIRI("http://"), ""))
	assert.Empty(t, sink.quads, "an invalid quad must be silently dropped, not erred")

	require.NoError(t, emitIfValid(sink, s, p, NewLiteral("x", XSDString, ""), ""))
	assert.Len(t, sink.quads, 1)
}

func TestGetCanonicalDouble(t *testing.T) {
	assert.Equal(t, "1.5E0", GetCanonicalDouble(1.5))
	assert.Equal(t, "1.0E2", GetCanonicalDouble(100))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("http://example.org/path"))
	assert.False(t, IsURL("http://"))
	assert.False(t, IsURL(""))
}
