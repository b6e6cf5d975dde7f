package nquads

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepend-io/jsonld-rdf/ld"
)

func writeOne(t *testing.T, subject, predicate, object, graph ld.Node) string {
	t.Helper()
	var buf strings.Builder
	w := NewWriter(&buf)
	require.NoError(t, w.Accept(subject, predicate, object, graph))
	require.NoError(t, w.Close())
	return buf.String()
}

func TestFormatQuad_IRISubjectPredicateObject(t *testing.T) {
	line := writeOne(t, ld.NewIRI("http://example.org/s"), ld.NewIRI("http://example.org/p"), ld.NewIRI("http://example.org/o"), nil)
	assert.Equal(t, "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n", line)
}

func TestFormatQuad_BlankNodeSubjectAndObject(t *testing.T) {
	line := writeOne(t, ld.NewBlankNode("_:b0"), ld.NewIRI("http://example.org/p"), ld.NewBlankNode("_:b1"), nil)
	assert.Equal(t, "_:b0 <http://example.org/p> _:b1 .\n", line)
}

func TestFormatQuad_PlainStringLiteralHasNoDatatypeSuffix(t *testing.T) {
	line := writeOne(t, ld.NewIRI("http://example.org/s"), ld.NewIRI("http://example.org/p"), ld.NewLiteral("hello", ld.XSDString, ""), nil)
	assert.Equal(t, "<http://example.org/s> <http://example.org/p> \"hello\" .\n", line)
}

func TestFormatQuad_LanguageTaggedLiteral(t *testing.T) {
	line := writeOne(t, ld.NewIRI("http://example.org/s"), ld.NewIRI("http://example.org/p"), ld.NewLiteral("bonjour", ld.RDFLangString, "fr"), nil)
	assert.Equal(t, "<http://example.org/s> <http://example.org/p> \"bonjour\"@fr .\n", line)
}

func TestFormatQuad_DatatypedLiteral(t *testing.T) {
	line := writeOne(t, ld.NewIRI("http://example.org/s"), ld.NewIRI("http://example.org/p"), ld.NewLiteral("42", "http://www.w3.org/2001/XMLSchema#integer", ""), nil)
	assert.Equal(t, "<http://example.org/s> <http://example.org/p> \"42\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n", line)
}

func TestFormatQuad_NamedGraph(t *testing.T) {
	line := writeOne(t, ld.NewIRI("http://example.org/s"), ld.NewIRI("http://example.org/p"), ld.NewIRI("http://example.org/o"), ld.NewIRI("http://example.org/g"))
	assert.Equal(t, "<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .\n", line)
}

func TestEscape_QuotesBackslashesAndControlCharacters(t *testing.T) {
	line := writeOne(t, ld.NewIRI("http://example.org/s"), ld.NewIRI("http://example.org/p"), ld.NewLiteral("line\\one\n\"two\"\ttab", ld.XSDString, ""), nil)
	assert.Equal(t, "<http://example.org/s> <http://example.org/p> \"line\\\\one\\n\\\"two\\\"\\ttab\" .\n", line)
}

func TestWriter_AcceptMultipleLinesBeforeClose(t *testing.T) {
	var buf strings.Builder
	w := NewWriter(&buf)
	require.NoError(t, w.Accept(ld.NewIRI("http://example.org/a"), ld.NewIRI("http://example.org/p"), ld.NewLiteral("1", ld.XSDString, ""), nil))
	require.NoError(t, w.Accept(ld.NewIRI("http://example.org/b"), ld.NewIRI("http://example.org/p"), ld.NewLiteral("2", ld.XSDString, ""), nil))

	// Writer buffers until Close, so the writes may not be visible yet.
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "http://example.org/a")
	assert.Contains(t, lines[1], "http://example.org/b")
}
