package ld

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink collects every quad Accept receives, as plain strings, so
// assertions don't have to reach into Node internals.
type recordingSink struct {
	quads []recordedQuad
}

type recordedQuad struct {
	subject, predicate, object, graph string
}

func (s *recordingSink) Accept(subject, predicate, object, graph Node) error {
	q := recordedQuad{subject: subject.GetValue(), predicate: predicate.GetValue(), object: object.GetValue()}
	if graph != nil {
		q.graph = graph.GetValue()
	}
	s.quads = append(s.quads, q)
	return nil
}

func (s *recordingSink) sorted() []recordedQuad {
	out := append([]recordedQuad(nil), s.quads...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].subject != out[j].subject {
			return out[i].subject < out[j].subject
		}
		if out[i].predicate != out[j].predicate {
			return out[i].predicate < out[j].predicate
		}
		return out[i].object < out[j].object
	})
	return out
}

func runToRDF(t *testing.T, doc string) *recordingSink {
	t.Helper()
	sink := &recordingSink{}
	transducer := NewTransducer(NewOptions(""))
	require.NoError(t, transducer.ToRDFFromBytes([]byte(doc), sink))
	return sink
}

func TestWalker_SimpleNode(t *testing.T) {
	sink := runToRDF(t, `{
		"@context": {"name": "http://schema.org/name"},
		"@id": "http://example.org/alice",
		"name": "Alice"
	}`)

	require.Len(t, sink.quads, 1)
	q := sink.quads[0]
	assert.Equal(t, "http://example.org/alice", q.subject)
	assert.Equal(t, "http://schema.org/name", q.predicate)
	assert.Equal(t, "Alice", q.object)
	assert.Empty(t, q.graph)
}

func TestWalker_BlankNodeWithoutID(t *testing.T) {
	sink := runToRDF(t, `{
		"@context": {"name": "http://schema.org/name"},
		"name": "Anonymous"
	}`)

	require.Len(t, sink.quads, 1)
	assert.Contains(t, sink.quads[0].subject, "_:")
}

func TestWalker_NestedNodeLinksBySubject(t *testing.T) {
	sink := runToRDF(t, `{
		"@context": {"knows": {"@id": "http://schema.org/knows", "@type": "@id"}},
		"@id": "http://example.org/alice",
		"knows": {"@id": "http://example.org/bob"}
	}`)

	require.Len(t, sink.quads, 1)
	q := sink.quads[0]
	assert.Equal(t, "http://example.org/alice", q.subject)
	assert.Equal(t, "http://example.org/bob", q.object)
}

func TestWalker_List(t *testing.T) {
	sink := runToRDF(t, `{
		"@context": {"items": {"@id": "http://example.org/items", "@container": "@list"}},
		"@id": "http://example.org/order",
		"items": ["a", "b", "c"]
	}`)

	// one link from the subject into the list head, plus 3 rdf:first + 3 rdf:rest
	require.Len(t, sink.quads, 7)
	require.Len(t, filterByPredicate(sink.quads, RDFFirst), 3)

	// rdf:first values must come out in source list order, not sorted.
	assert.Equal(t, []string{"a", "b", "c"}, orderedListValues(sink.quads))
}

func orderedListValues(quads []recordedQuad) []string {
	bySubject := map[string]recordedQuad{}
	nextOf := map[string]string{}
	firstOf := map[string]string{}
	var head string
	for _, q := range quads {
		switch q.predicate {
		case RDFFirst:
			firstOf[q.subject] = q.object
		case RDFRest:
			nextOf[q.subject] = q.object
		case "http://example.org/items":
			head = q.object
		}
		bySubject[q.subject] = q
	}
	var values []string
	cur := head
	for cur != "" && cur != RDFNil {
		values = append(values, firstOf[cur])
		cur = nextOf[cur]
	}
	return values
}

func filterByPredicate(quads []recordedQuad, predicate string) []recordedQuad {
	var out []recordedQuad
	for _, q := range quads {
		if q.predicate == predicate {
			out = append(out, q)
		}
	}
	return out
}

func TestWalker_Reverse(t *testing.T) {
	sink := runToRDF(t, `{
		"@context": {"children": {"@reverse": "http://example.org/parent", "@type": "@id"}},
		"@id": "http://example.org/parent1",
		"children": [{"@id": "http://example.org/child1"}]
	}`)

	require.Len(t, sink.quads, 1)
	q := sink.quads[0]
	assert.Equal(t, "http://example.org/child1", q.subject)
	assert.Equal(t, "http://example.org/parent1", q.object)
}

func TestWalker_NamedGraph(t *testing.T) {
	sink := runToRDF(t, `{
		"@context": {"name": "http://schema.org/name"},
		"@id": "http://example.org/g1",
		"@graph": [
			{"@id": "http://example.org/alice", "name": "Alice"}
		]
	}`)

	require.Len(t, sink.quads, 1)
	q := sink.quads[0]
	assert.Equal(t, "http://example.org/alice", q.subject)
	assert.Equal(t, "http://example.org/g1", q.graph)
}

func TestWalker_NestedNodeInsideNamedGraphStaysInThatGraph(t *testing.T) {
	// Regression check: a node reached via an ordinary property, while the
	// walker is inside a named graph, must still land in that graph - not
	// silently fall back to the default graph.
	sink := runToRDF(t, `{
		"@context": {"knows": {"@id": "http://schema.org/knows", "@type": "@id"}},
		"@id": "http://example.org/g1",
		"@graph": [
			{"@id": "http://example.org/alice", "knows": {"@id": "http://example.org/bob"}}
		]
	}`)

	require.Len(t, sink.quads, 1)
	assert.Equal(t, "http://example.org/g1", sink.quads[0].graph)
}

func TestWalker_TypeScopedContextDoesNotLeakIntoNestedNode(t *testing.T) {
	// "short" is defined by Employee's type-scoped context; a nested node
	// that is not itself typed Employee must not inherit it.
	sink := runToRDF(t, `{
		"@context": {
			"Employee": {
				"@id": "http://example.org/Employee",
				"@context": {"short": "http://example.org/nickname"}
			},
			"colleague": {"@id": "http://example.org/colleague", "@type": "@id"}
		},
		"@id": "http://example.org/alice",
		"@type": "Employee",
		"short": "Al",
		"colleague": {"@id": "http://example.org/bob", "short": "ignored, not a term here"}
	}`)

	predicates := map[string]bool{}
	for _, q := range sink.quads {
		predicates[q.predicate] = true
	}
	assert.True(t, predicates["http://example.org/nickname"], "short must expand on the typed node")

	// "short" has no meaning on bob's node outside the type-scoped context,
	// so it must not have produced a quad with bob as subject under that
	// predicate name.
	for _, q := range sink.quads {
		if q.subject == "http://example.org/bob" {
			assert.NotEqual(t, "http://example.org/nickname", q.predicate)
		}
	}
}

func TestWalker_ReverseInvalidValueErrors(t *testing.T) {
	transducer := NewTransducer(NewOptions(""))
	sink := &recordingSink{}
	err := transducer.ToRDFFromBytes([]byte(`{
		"@context": {"children": {"@reverse": "http://example.org/parent"}},
		"@id": "http://example.org/parent1",
		"children": "not an object"
	}`), sink)
	jsonLDError := new(JsonLdError)
	require.ErrorAs(t, err, &jsonLDError)
	assert.Equal(t, InvalidReverseValue, jsonLDError.Code)
}

func TestWalker_DocumentArrayOfTopLevelNodes(t *testing.T) {
	sink := runToRDF(t, `[
		{"@context": {"name": "http://schema.org/name"}, "@id": "http://example.org/a", "name": "A"},
		{"@context": {"name": "http://schema.org/name"}, "@id": "http://example.org/b", "name": "B"}
	]`)
	require.Len(t, sink.quads, 2)
}
