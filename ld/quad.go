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

package ld

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/deepend-io/jsonld-rdf/jcs"
)

// Node is the value of a subject, predicate or object: an IRI reference, a
// blank node, or a literal.
type Node interface {
	// GetValue returns the node's value.
	GetValue() string

	// Equal returns true if this node is equal to the given node.
	Equal(n Node) bool
}

// Literal represents a literal value.
type Literal struct {
	Value    string
	Datatype string
	Language string
}

// NewLiteral creates a new instance of Literal. An empty datatype defaults
// to xsd:string.
func NewLiteral(value string, datatype string, language string) *Literal {
	l := &Literal{
		Value:    value,
		Language: language,
	}

	if datatype != "" {
		l.Datatype = datatype
	} else {
		l.Datatype = XSDString
	}

	return l
}

func (l *Literal) GetValue() string { return l.Value }

func (l *Literal) Equal(n Node) bool {
	ol, ok := n.(*Literal)
	if !ok {
		return false
	}
	return l.Value == ol.Value && l.Language == ol.Language && l.Datatype == ol.Datatype
}

// IRI represents an IRI value.
type IRI struct {
	Value string
}

// NewIRI creates a new instance of IRI.
func NewIRI(iri string) *IRI {
	return &IRI{Value: iri}
}

func (iri *IRI) GetValue() string { return iri.Value }

func (iri *IRI) Equal(n Node) bool {
	if oiri, ok := n.(*IRI); ok {
		return iri.Value == oiri.Value
	}
	return false
}

// BlankNode represents a blank node value.
type BlankNode struct {
	Attribute string
}

// NewBlankNode creates a new instance of BlankNode.
func NewBlankNode(attribute string) *BlankNode {
	return &BlankNode{Attribute: attribute}
}

func (bn *BlankNode) GetValue() string { return bn.Attribute }

func (bn *BlankNode) Equal(n Node) bool {
	if obn, ok := n.(*BlankNode); ok {
		return bn.Attribute == obn.Attribute
	}
	return false
}

// IsBlankNode returns true if the given node is a blank node.
func IsBlankNode(node Node) bool {
	_, isBlankNode := node.(*BlankNode)
	return isBlankNode
}

// IsIRI returns true if the given node is an IRI node.
func IsIRI(node Node) bool {
	_, isIRI := node.(*IRI)
	return isIRI
}

// IsLiteral returns true if the given node is a literal node.
func IsLiteral(node Node) bool {
	_, isLiteral := node.(*Literal)
	return isLiteral
}

// Quad represents an RDF quad: subject, predicate, object and an optional
// graph name (nil for the default graph).
type Quad struct {
	Subject   Node
	Predicate Node
	Object    Node
	Graph     Node
}

// NewQuad creates a new Quad. graph == "" or "@default" means the default
// graph, represented by a nil Graph node.
func NewQuad(subject Node, predicate Node, object Node, graph string) *Quad {
	q := &Quad{Subject: subject, Predicate: predicate, Object: object}

	if graph != "" && graph != "@default" {
		if strings.HasPrefix(graph, "_:") {
			q.Graph = NewBlankNode(graph)
		} else {
			q.Graph = NewIRI(graph)
		}
	}
	return q
}

// Equal returns true if this quad is equal to the given quad.
func (q *Quad) Equal(o *Quad) bool {
	if o == nil {
		return false
	}
	if (q.Graph != nil && !q.Graph.Equal(o.Graph)) || (q.Graph == nil && o.Graph != nil) {
		return false
	}
	return q.Subject.Equal(o.Subject) && q.Predicate.Equal(o.Predicate) && q.Object.Equal(o.Object)
}

// Valid reports whether every component of the quad is well-formed: IRIs
// parse as URLs when they carry an http(s) scheme, literal language tags
// match the BCP 47-ish pattern, and literal datatypes are valid IRIs.
func (q *Quad) Valid() bool {
	for _, n := range []Node{q.Subject, q.Predicate, q.Object, q.Graph} {
		if n != nil && InvalidNode(n) {
			return false
		}
	}
	return true
}

// QuadSink receives quads emitted by a Transducer. The same Node value can
// be passed for several quads (a node's subject, and the package-level
// rdf:first/rdf:rest/rdf:nil IRIs), so implementations must not mutate
// the passed-in nodes. See internal/nquads for a reference implementation.
type QuadSink interface {
	Accept(subject, predicate, object, graph Node) error
}

var (
	rdfFirstIRI = NewIRI(RDFFirst)
	rdfRestIRI  = NewIRI(RDFRest)
	rdfNilIRI   = NewIRI(RDFNil)
)

// encodeValue converts an expanded JSON-LD value/list/node object into its
// RDF term. For lists it also emits the intermediate rdf:first/rdf:rest
// quads directly to sink rather than building an intermediate triples
// slice, since the surrounding walker is a single streaming pass.
func encodeValue(item interface{}, issuer *IdentifierIssuer, graphName string, sink QuadSink) (Node, error) {
	switch {
	case IsValue(item):
		return encodeValueObject(item.(map[string]interface{}))
	case IsList(item):
		return encodeList(item.(map[string]interface{})["@list"].([]interface{}), issuer, graphName, sink)
	default:
		var id string
		if itemMap, isMap := item.(map[string]interface{}); isMap {
			id, _ = itemMap["@id"].(string)
			if IsRelativeIri(id) {
				return nil, nil
			}
		} else {
			id, _ = item.(string)
		}
		if strings.HasPrefix(id, "_:") {
			return NewBlankNode(id), nil
		}
		return NewIRI(id), nil
	}
}

func encodeValueObject(itemMap map[string]interface{}) (Node, error) {
	value := itemMap["@value"]
	datatype := itemMap["@type"]

	if datatype == "@json" {
		datatype = RDFJSONLiteral
	}

	booleanVal, isBool := value.(bool)
	floatVal, isFloat := value.(float64)

	if !isBool && !isFloat {
		if number, isNumber := value.(json.Number); isNumber {
			var floatErr error
			floatVal, floatErr = number.Float64()
			isFloat = floatErr == nil
		}
	}

	isInteger := isFloat && floatVal == float64(int64(floatVal))
	datatypeStr, _ := datatype.(string)

	switch {
	case datatypeStr == RDFJSONLiteral:
		// JSON literals of every JSON type are canonicalised below.
	case isBool:
		if datatype == nil {
			return NewLiteral(strconv.FormatBool(booleanVal), XSDBoolean, ""), nil
		}
		return NewLiteral(strconv.FormatBool(booleanVal), datatypeStr, ""), nil
	case isFloat && !isInteger || datatypeStr == XSDDouble:
		canonicalDouble := GetCanonicalDouble(floatVal)
		if datatype == nil {
			return NewLiteral(canonicalDouble, XSDDouble, ""), nil
		}
		return NewLiteral(canonicalDouble, datatypeStr, ""), nil
	case isFloat:
		if datatype == nil {
			return NewLiteral(fmt.Sprintf("%d", int64(floatVal)), XSDInteger, ""), nil
		}
		return NewLiteral(fmt.Sprintf("%d", int64(floatVal)), datatypeStr, ""), nil
	}

	if langVal, hasLang := itemMap["@language"]; hasLang {
		lang, _ := langVal.(string)
		if datatype == nil {
			return NewLiteral(value.(string), RDFLangString, lang), nil
		}
		return NewLiteral(value.(string), datatypeStr, lang), nil
	}

	if datatype == nil {
		return NewLiteral(value.(string), XSDString, ""), nil
	}
	if datatypeStr != RDFJSONLiteral {
		return NewLiteral(value.(string), datatypeStr, ""), nil
	}

	jsonLiteralBytes, err := json.Marshal(value)
	if err != nil {
		return nil, NewJsonLdError(InvalidValueObjectValue, err)
	}

	canonicalJSON, err := jcs.Transform(jsonLiteralBytes)
	if err != nil {
		return nil, NewJsonLdError(InvalidValueObjectValue, err)
	}
	return NewLiteral(string(canonicalJSON), datatypeStr, ""), nil
}

// encodeList builds the rdf:first/rdf:rest spine for a JSON-LD list,
// emitting each cell's quads to sink as it goes and returning the head
// node (rdf:nil for an empty list).
func encodeList(list []interface{}, issuer *IdentifierIssuer, graphName string, sink QuadSink) (Node, error) {
	if len(list) == 0 {
		return rdfNilIRI, nil
	}

	head := NewBlankNode(issuer.GetId(""))
	subj := Node(head)

	for i := 0; i < len(list)-1; i++ {
		obj, err := encodeValue(list[i], issuer, graphName, sink)
		if err != nil {
			return nil, err
		}
		next := NewBlankNode(issuer.GetId(""))
		if err := emitIfValid(sink, subj, rdfFirstIRI, obj, graphName); err != nil {
			return nil, err
		}
		if err := emitIfValid(sink, subj, rdfRestIRI, next, graphName); err != nil {
			return nil, err
		}
		subj = next
	}

	last, err := encodeValue(list[len(list)-1], issuer, graphName, sink)
	if err != nil {
		return nil, err
	}
	if err := emitIfValid(sink, subj, rdfFirstIRI, last, graphName); err != nil {
		return nil, err
	}
	if err := emitIfValid(sink, subj, rdfRestIRI, rdfNilIRI, graphName); err != nil {
		return nil, err
	}

	return head, nil
}

// emitIfValid drops the quad silently when object is nil (a dropped
// relative-IRI node reference) or when any component fails well-formedness,
// matching the quad emitter's documented silent-drop behaviour.
func emitIfValid(sink QuadSink, subject, predicate, object Node, graphName string) error {
	if object == nil {
		return nil
	}
	q := NewQuad(subject, predicate, object, graphName)
	if !q.Valid() {
		return nil
	}
	return sink.Accept(q.Subject, q.Predicate, q.Object, q.Graph)
}

var canonicalDoubleRegEx = regexp.MustCompile(`(\d)0*E\+?0*(\d)`)

// GetCanonicalDouble returns the canonical XSD double lexical form of v.
func GetCanonicalDouble(v float64) string {
	return canonicalDoubleRegEx.ReplaceAllString(fmt.Sprintf("%1.15E", v), "${1}E${2}")
}

var validLanguageRegex = regexp.MustCompile("^[a-zA-Z]+(-[a-zA-Z0-9]+)*$")

// InvalidNode reports whether node fails the well-formedness checks the
// quad emitter applies before handing a quad to the QuadSink.
func InvalidNode(node Node) bool {
	switch v := node.(type) {
	case *IRI:
		if !validIRI(v.Value) {
			return true
		}
	case *Literal:
		if v.Language != "" && !validLanguageRegex.MatchString(v.Language) {
			return true
		}
		if v.Datatype != "" && !validIRI(v.Datatype) {
			return true
		}
	}
	return false
}

func validIRI(val string) bool {
	if (strings.HasPrefix(val, "http://") || strings.HasPrefix(val, "https://")) && !IsURL(val) {
		return false
	}
	return true
}

/*
===========
The URL validation logic below was borrowed from github.com/asaskevich/govalidator.
The original code is distributed under MIT license. Copyright (c) 2014 Alex Saskevich
===========
*/
var (
	ipPattern           = `(([0-9a-fA-F]{1,4}:){7,7}[0-9a-fA-F]{1,4}|([0-9a-fA-F]{1,4}:){1,7}:|([0-9a-fA-F]{1,4}:){1,6}:[0-9a-fA-F]{1,4}|([0-9a-fA-F]{1,4}:){1,5}(:[0-9a-fA-F]{1,4}){1,2}|([0-9a-fA-F]{1,4}:){1,4}(:[0-9a-fA-F]{1,4}){1,3}|([0-9a-fA-F]{1,4}:){1,3}(:[0-9a-fA-F]{1,4}){1,4}|([0-9a-fA-F]{1,4}:){1,2}(:[0-9a-fA-F]{1,4}){1,5}|[0-9a-fA-F]{1,4}:((:[0-9a-fA-F]{1,4}){1,6})|:((:[0-9a-fA-F]{1,4}){1,7}|:)|fe80:(:[0-9a-fA-F]{0,4}){0,4}%[0-9a-zA-Z]{1,}|::(ffff(:0{1,4}){0,1}:){0,1}((25[0-5]|(2[0-4]|1{0,1}[0-9]){0,1}[0-9])\.){3,3}(25[0-5]|(2[0-4]|1{0,1}[0-9]){0,1}[0-9])|([0-9a-fA-F]{1,4}:){1,4}:((25[0-5]|(2[0-4]|1{0,1}[0-9]){0,1}[0-9])\.){3,3}(25[0-5]|(2[0-4]|1{0,1}[0-9]){0,1}[0-9]))`
	urlSchemaPattern    = `((ftp|tcp|udp|wss?|https?):\/\/)`
	urlUsernamePattern  = `(\S+(:\S*)?@)`
	urlPathPattern      = `((\/|\?|#)[^\s]*)`
	urlPortPattern      = `(:(\d{1,5}))`
	urlIPPattern        = `([1-9]\d?|1\d\d|2[01]\d|22[0-3])(\.(1?\d{1,2}|2[0-4]\d|25[0-5])){2}(?:\.([0-9]\d?|1\d\d|2[0-4]\d|25[0-4]))`
	urlSubdomainPattern = `((www\.)|([a-zA-Z0-9]+([-_\.]?[a-zA-Z0-9])*[a-zA-Z0-9]\.[a-zA-Z0-9]+))`
	urlPattern          = `^` + urlSchemaPattern + `?` + urlUsernamePattern + `?` + `((` + urlIPPattern + `|(\[` + ipPattern + `\])|(([a-zA-Z0-9]([a-zA-Z0-9-_]+)?[a-zA-Z0-9]([-\.][a-zA-Z0-9]+)*)|(` + urlSubdomainPattern + `?))?(([a-zA-Z\x{00a1}-\x{ffff}0-9]+-?-?)*[a-zA-Z\x{00a1}-\x{ffff}0-9]+)(?:\.([a-zA-Z\x{00a1}-\x{ffff}]{1,}))?))\.?` + urlPortPattern + `?` + urlPathPattern + `?$`
	rxURL               *regexp.Regexp
	rxURLOnce           sync.Once
)

const maxURLRuneCount = 2083
const minURLRuneCount = 3

// IsURL reports whether str looks like a well-formed URL.
func IsURL(str string) bool {
	rxURLOnce.Do(func() {
		rxURL = regexp.MustCompile(urlPattern)
	})
	if str == "" || utf8.RuneCountInString(str) >= maxURLRuneCount || len(str) <= minURLRuneCount || strings.HasPrefix(str, ".") {
		return false
	}
	strTemp := str
	if strings.Contains(str, ":") && !strings.Contains(str, "://") {
		strTemp = "http://" + str
	}
	u, err := url.Parse(strTemp)
	if err != nil {
		return false
	}
	if strings.HasPrefix(u.Host, ".") {
		return false
	}
	if u.Host == "" && (u.Path != "" && !strings.Contains(u.Path, ".")) {
		return false
	}
	return rxURL.MatchString(str)
}
