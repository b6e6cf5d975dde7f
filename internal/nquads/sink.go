// Copyright 2015-2017 Piprate Limited
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package nquads is a reference ld.QuadSink that serializes quads to
// W3C N-Quads text as they arrive, one line per quad. It lives under
// internal/ because the public API this module ships is the quad
// stream itself (ld.QuadSink); a concrete text serialization is a
// convenience for the CLI and tests, not part of the library surface.
package nquads

import (
	"bufio"
	"io"
	"strings"

	"github.com/deepend-io/jsonld-rdf/ld"
)

// Writer writes each accepted quad to an underlying io.Writer as one
// N-Quads line, flushing on Close. It keeps no state across calls
// beyond the buffered writer, matching the streaming quad emitter it
// sits behind: nothing about the dataset is held in memory.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w as a QuadSink that serializes to N-Quads.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Accept implements ld.QuadSink.
func (nw *Writer) Accept(subject, predicate, object, graph ld.Node) error {
	line := formatQuad(subject, predicate, object, graph)
	if _, err := nw.w.WriteString(line); err != nil {
		return ld.NewJsonLdError(ld.IOError, err)
	}
	return nil
}

// Close flushes any buffered output.
func (nw *Writer) Close() error {
	return nw.w.Flush()
}

func formatQuad(subject, predicate, object, graph ld.Node) string {
	var b strings.Builder

	writeSubjectOrPredicate(&b, subject)
	b.WriteByte(' ')
	writeSubjectOrPredicate(&b, predicate)
	b.WriteByte(' ')
	writeObject(&b, object)

	if graph != nil {
		b.WriteByte(' ')
		writeSubjectOrPredicate(&b, graph)
	}

	b.WriteString(" .\n")
	return b.String()
}

func writeSubjectOrPredicate(b *strings.Builder, n ld.Node) {
	if ld.IsIRI(n) {
		b.WriteByte('<')
		b.WriteString(escape(n.GetValue()))
		b.WriteByte('>')
		return
	}
	b.WriteString(n.GetValue())
}

func writeObject(b *strings.Builder, n ld.Node) {
	switch {
	case ld.IsIRI(n):
		b.WriteByte('<')
		b.WriteString(escape(n.GetValue()))
		b.WriteByte('>')
	case ld.IsBlankNode(n):
		b.WriteString(n.GetValue())
	default:
		literal, _ := n.(*ld.Literal)
		b.WriteByte('"')
		b.WriteString(escape(literal.GetValue()))
		b.WriteByte('"')
		switch {
		case literal.Datatype == ld.RDFLangString:
			b.WriteByte('@')
			b.WriteString(literal.Language)
		case literal.Datatype != ld.XSDString:
			b.WriteString("^^<")
			b.WriteString(escape(literal.Datatype))
			b.WriteByte('>')
		}
	}
}

func escape(str string) string {
	str = strings.ReplaceAll(str, "\\", "\\\\")
	str = strings.ReplaceAll(str, "\"", "\\\"")
	str = strings.ReplaceAll(str, "\n", "\\n")
	str = strings.ReplaceAll(str, "\r", "\\r")
	str = strings.ReplaceAll(str, "\t", "\\t")
	return str
}
