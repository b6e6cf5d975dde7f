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
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// nodeWalker drives a single depth-first pass over a decoded JSON-LD
// document, applying context processing and emitting RDF quads as it
// goes rather than building an intermediate expanded document or node
// map. One issuer is shared across the whole walk so blank node
// identifiers stay stable for every reference to the same "@id" (see
// Transducer, which creates one walker per ToRDFFromBytes/ToRDFFromValue
// call).
type nodeWalker struct {
	sink   QuadSink
	issuer *IdentifierIssuer
	opts   *Options
}

func newNodeWalker(opts *Options, sink QuadSink) *nodeWalker {
	return &nodeWalker{
		sink:   sink,
		issuer: NewIdentifierIssuer("_:b"),
		opts:   opts,
	}
}

// walkDocument processes the top-level value produced by DecodeDocument.
// A bare node object and a single-element array of one are equivalent;
// JSON-LD drops top-level values that are neither objects nor arrays.
func (w *nodeWalker) walkDocument(ctx *Context, doc interface{}, raw gjson.Result) error {
	items, rawItems := arrayifyWithRaw(doc, raw)
	for i, item := range items {
		itemMap, isMap := item.(map[string]interface{})
		if !isMap {
			continue
		}
		if _, err := w.walkTopLevelNode(ctx, itemMap, rawItems[i]); err != nil {
			return err
		}
	}
	return nil
}

// walkTopLevelNode handles the one top-level shape walkNode itself
// doesn't: a bare "@graph" wrapper used to hold several default-graph
// nodes under a single shared "@context", with no "@id" of its own (an
// "@id" alongside "@graph" makes it an ordinary node object naming a
// graph, which walkNode already handles).
func (w *nodeWalker) walkTopLevelNode(ctx *Context, item map[string]interface{}, raw gjson.Result) (Node, error) {
	nodeCtx := ctx
	if rawContext, has := item["@context"]; has {
		parsed, err := ctx.Parse(rawContext)
		if err != nil {
			return nil, err
		}
		nodeCtx = parsed
	}

	if graphVal, hasGraph := item["@graph"]; hasGraph {
		if _, hasID := item["@id"]; !hasID {
			graphRaw := rawChild(raw, "@graph")
			nodes, rawNodes := arrayifyWithRaw(graphVal, graphRaw)
			for i, n := range nodes {
				nMap, isMap := n.(map[string]interface{})
				if !isMap {
					continue
				}
				if _, err := w.walkNode(nodeCtx, nMap, rawNodes[i], "@default"); err != nil {
					return nil, err
				}
			}
			return nil, nil
		}
	}

	return w.walkNode(nodeCtx, item, raw, "@default")
}

// walkNode processes a node object: it resolves (or mints) the node's
// subject, applies any type-scoped context carried by its "@type"
// values, then walks every remaining member, emitting one quad per
// property value into graphName. It returns the node's own subject so
// callers reached via a property (generic values, @reverse, list
// elements) can link back to it.
func (w *nodeWalker) walkNode(ctx *Context, item map[string]interface{}, raw gjson.Result, graphName string) (Node, error) {
	nodeCtx := ctx
	if rawContext, has := item["@context"]; has {
		parsed, err := ctx.Parse(rawContext)
		if err != nil {
			return nil, err
		}
		nodeCtx = parsed
	}

	keys := orderedKeys(raw)
	if keys == nil {
		keys = GetOrderedKeys(item)
	}

	// Find this node's own "@type" values first: a type-scoped context is
	// derived from them, and must already be in effect before any of the
	// node's OTHER keys are expanded, since it can introduce the very term
	// names those other keys use. "@type" itself is a keyword, so finding
	// it never depends on scoping.
	var typeTerms []string
	var typeIRIs []string
	for _, key := range keys {
		if key == "@context" {
			continue
		}
		expanded, err := nodeCtx.ExpandIri(key, false, true, nil, nil)
		if err != nil {
			return nil, err
		}
		if expanded != "@type" {
			continue
		}
		for _, t := range Arrayify(item[key]) {
			typeStr, isString := t.(string)
			if !isString {
				continue
			}
			typeTerms = append(typeTerms, typeStr)
			expandedType, err := nodeCtx.ExpandIri(typeStr, true, true, nil, nil)
			if err != nil {
				return nil, err
			}
			typeIRIs = append(typeIRIs, expandedType)
		}
	}

	// Type-scoped context applies, in lexicographic term order, to the
	// processing of this node's own members only; it must not leak into
	// nested node objects reached through a property, so nodeCtx (the
	// context before type scoping) is kept as the base those recurse
	// from.
	scopedCtx, err := applyTypeScopedContexts(nodeCtx, typeTerms)
	if err != nil {
		return nil, err
	}

	// Now expand every other key (including, critically, any term the
	// type-scoped context just introduced) under scopedCtx.
	type propEntry struct {
		key      string
		expanded string
		raw      gjson.Result
	}
	var entries []propEntry
	for _, key := range keys {
		if key == "@context" {
			continue
		}
		expanded, err := scopedCtx.ExpandIri(key, false, true, nil, nil)
		if err != nil {
			return nil, err
		}
		if expanded == "" || IsRelativeIri(expanded) {
			continue
		}
		entries = append(entries, propEntry{key: key, expanded: expanded, raw: rawChild(raw, key)})
	}

	// Resolve the node's subject.
	subjectValue := ""
	for _, e := range entries {
		if e.expanded != "@id" {
			continue
		}
		idStr, _ := item[e.key].(string)
		expanded, err := scopedCtx.ExpandIri(idStr, true, false, nil, nil)
		if err != nil {
			return nil, err
		}
		subjectValue = expanded
	}
	if subjectValue == "" || IsRelativeIri(subjectValue) {
		subjectValue = w.issuer.GetId("")
	} else if len(subjectValue) >= 2 && subjectValue[:2] == "_:" {
		subjectValue = w.issuer.GetId(subjectValue)
	}
	var subject Node
	if len(subjectValue) >= 2 && subjectValue[:2] == "_:" {
		subject = NewBlankNode(subjectValue)
	} else {
		subject = NewIRI(subjectValue)
	}

	for _, typeIRI := range typeIRIs {
		if err := emitIfValid(w.sink, subject, NewIRI(RDFType), NewIRI(typeIRI), graphName); err != nil {
			return nil, err
		}
	}

	for _, e := range entries {
		switch e.expanded {
		case "@id", "@type", "@index":
			continue
		case "@reverse":
			if err := w.walkReverse(scopedCtx, nodeCtx, item[e.key], e.raw, subject, graphName); err != nil {
				return nil, err
			}
		case "@graph":
			graphNodes, rawGraphNodes := arrayifyWithRaw(item[e.key], e.raw)
			for i, n := range graphNodes {
				nMap, isMap := n.(map[string]interface{})
				if !isMap {
					continue
				}
				if _, err := w.walkNode(scopedCtx, nMap, rawGraphNodes[i], subjectValue); err != nil {
					return nil, err
				}
			}
		case "@included":
			includedNodes, rawIncluded := arrayifyWithRaw(item[e.key], e.raw)
			for i, n := range includedNodes {
				nMap, isMap := n.(map[string]interface{})
				if !isMap {
					return nil, NewJsonLdError(InvalidIncludedValue, n)
				}
				if _, err := w.walkNode(scopedCtx, nMap, rawIncluded[i], graphName); err != nil {
					return nil, err
				}
			}
		case "@nest":
			if err := w.walkNest(scopedCtx, item[e.key], e.raw, subject, graphName); err != nil {
				return nil, err
			}
		default:
			if err := w.walkProperty(scopedCtx, nodeCtx, e.key, e.expanded, item[e.key], e.raw, subject, graphName); err != nil {
				return nil, err
			}
		}
	}

	return subject, nil
}

// walkNest inlines a "@nest" object's members as if they belonged to
// the enclosing node object directly; JSON-LD allows this purely as a
// compaction convenience, so it carries no RDF meaning of its own.
func (w *nodeWalker) walkNest(ctx *Context, value interface{}, raw gjson.Result, subject Node, graphName string) error {
	nestMap, isMap := value.(map[string]interface{})
	if !isMap {
		return NewJsonLdError(InvalidNestValue, value)
	}
	keys := orderedKeys(raw)
	if keys == nil {
		keys = GetOrderedKeys(nestMap)
	}
	for _, key := range keys {
		if key == "@context" {
			continue
		}
		expanded, err := ctx.ExpandIri(key, false, true, nil, nil)
		if err != nil {
			return err
		}
		if IsRelativeIri(expanded) {
			continue
		}
		switch expanded {
		case "":
			continue
		case "@nest":
			if err := w.walkNest(ctx, nestMap[key], rawChild(raw, key), subject, graphName); err != nil {
				return err
			}
		case "@id", "@type", "@index", "@reverse", "@graph", "@included":
			// Not meaningful nested inside @nest; ignored rather than
			// erroring, matching the expansion algorithm's leniency here.
			continue
		default:
			if err := w.walkProperty(ctx, ctx, key, expanded, nestMap[key], rawChild(raw, key), subject, graphName); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkReverse processes a "@reverse" member: for every nested node
// object it resolves (minting or reusing its subject like any other
// node), it emits the quad with subject and object swapped relative to
// an ordinary property.
func (w *nodeWalker) walkReverse(scopedCtx, baseCtx *Context, value interface{}, raw gjson.Result, subject Node, graphName string) error {
	reverseMap, isMap := value.(map[string]interface{})
	if !isMap {
		return NewJsonLdError(InvalidReverseValue, value)
	}
	keys := orderedKeys(raw)
	if keys == nil {
		keys = GetOrderedKeys(reverseMap)
	}
	for _, key := range keys {
		expandedProp, err := scopedCtx.ExpandIri(key, false, true, nil, nil)
		if expandedProp == "" || IsRelativeIri(expandedProp) || err != nil {
			if err != nil {
				return err
			}
			continue
		}
		childCtx := childContextFor(baseCtx, scopedCtx, key)
		nodes, rawNodes := arrayifyWithRaw(reverseMap[key], rawChild(raw, key))
		for i, n := range nodes {
			nMap, isMap := n.(map[string]interface{})
			if !isMap {
				return NewJsonLdError(InvalidReversePropertyValue, n)
			}
			nestedSubject, err := w.walkNode(childCtx, nMap, rawNodes[i], graphName)
			if err != nil {
				return err
			}
			if err := emitIfValid(w.sink, nestedSubject, NewIRI(expandedProp), subject, graphName); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkProperty expands an ordinary property's value(s) - honoring any
// @language/@index/@id/@type container map shorthand and any implicit
// @list container - and emits one quad per resulting RDF term. A
// blank-node predicate is dropped unless Options.ProduceGeneralizedRdf is
// set. Each value of a reverse property must be a node object; it is
// walked and linked with subject and object swapped.
func (w *nodeWalker) walkProperty(scopedCtx, baseCtx *Context, key, expandedProp string, value interface{}, raw gjson.Result, subject Node, graphName string) error {
	if scopedCtx.IsReverseProperty(key) {
		childCtx := childContextFor(baseCtx, scopedCtx, key)
		nodes, rawNodes := arrayifyWithRaw(value, raw)
		for i, n := range nodes {
			nMap, isMap := n.(map[string]interface{})
			if !isMap {
				return NewJsonLdError(InvalidReverseValue, n)
			}
			nestedSubject, err := w.walkNode(childCtx, nMap, rawNodes[i], graphName)
			if err != nil {
				return err
			}
			if err := emitIfValid(w.sink, nestedSubject, NewIRI(expandedProp), subject, graphName); err != nil {
				return err
			}
		}
		return nil
	}

	var values []interface{}
	if kind := containerMapKindFor(scopedCtx, key, value); kind != notContainerMap {
		items, err := expandContainerMap(scopedCtx, kind, key, value.(map[string]interface{}), raw)
		if err != nil {
			return err
		}
		values = items
	} else if scopedCtx.HasContainerMapping(key, "@list") && !IsList(value) {
		values = []interface{}{map[string]interface{}{"@list": Arrayify(value)}}
	} else {
		values = Arrayify(value)
	}

	var predicate Node = NewIRI(expandedProp)
	if strings.HasPrefix(expandedProp, "_:") {
		if !w.opts.ProduceGeneralizedRdf {
			return nil
		}
		predicate = NewBlankNode(expandedProp)
	}
	for _, v := range values {
		prepared, err := w.prepareItem(scopedCtx, baseCtx, key, v, graphName)
		if err != nil {
			return err
		}
		if prepared == nil {
			continue
		}
		obj, err := encodeValue(prepared, w.issuer, graphName, w.sink)
		if err != nil {
			return err
		}
		if err := emitIfValid(w.sink, subject, predicate, obj, graphName); err != nil {
			return err
		}
	}
	return nil
}

// prepareItem turns one raw property value into the expanded-value
// shape encodeValue/encodeList expect: a "@value" object, a "@list"
// object, an "@id" object for an @id/@vocab-coerced string, or - for a
// nested node object -
// a fully walked node reduced to its "@id" reference (the nested node's
// own quads are emitted as a side effect of the walk itself).
//
// Scalar values (strings, @value objects, @list elements) are expanded
// under childContextFor(baseCtx, scopedCtx, property): the property's own
// scoped context if it has one, otherwise scopedCtx itself, since a type-
// scoped term's coercion settings still govern its own scalar values. A
// nested node object is different: it gets its own node-object expansion,
// which reverts any type-scoped context back to baseCtx unless property
// carries its own scoped context - type scoping must not leak across a
// node boundary reached through an ordinary property.
func (w *nodeWalker) prepareItem(scopedCtx, baseCtx *Context, property string, item interface{}, graphName string) (interface{}, error) {
	switch v := item.(type) {
	case map[string]interface{}:
		if _, hasValue := v["@value"]; hasValue {
			return v, nil
		}
		if listVal, hasList := v["@list"]; hasList {
			elems := Arrayify(listVal)
			prepared := make([]interface{}, 0, len(elems))
			for _, e := range elems {
				pe, err := w.prepareItem(scopedCtx, baseCtx, property, e, graphName)
				if err != nil {
					return nil, err
				}
				if pe != nil {
					prepared = append(prepared, pe)
				}
			}
			return map[string]interface{}{"@list": prepared}, nil
		}
		nodeCtx := nodeRecursionContextFor(baseCtx, scopedCtx, property)
		subj, err := w.walkNode(nodeCtx, v, gjson.Result{}, graphName)
		if err != nil {
			return nil, err
		}
		if subj == nil {
			return nil, nil
		}
		return map[string]interface{}{"@id": subj.GetValue()}, nil
	case string:
		childCtx := childContextFor(baseCtx, scopedCtx, property)
		return childCtx.ExpandValue(property, v)
	default:
		childCtx := childContextFor(baseCtx, scopedCtx, property)
		return childCtx.ExpandValue(property, v)
	}
}

// applyTypeScopedContexts chains each "@type" term's scoped context
// (term definitions carrying a "@context" entry), in lexicographic
// term order per the expansion algorithm, over ctx. Terms without a
// term definition, or whose term definition carries no scoped context,
// are skipped.
func applyTypeScopedContexts(ctx *Context, typeTerms []string) (*Context, error) {
	if len(typeTerms) == 0 {
		return ctx, nil
	}
	terms := append([]string(nil), typeTerms...)
	sort.Strings(terms)

	current := ctx
	for _, term := range terms {
		td := current.GetTermDefinition(term)
		if td == nil {
			continue
		}
		scopedContext, hasScoped := td["@context"]
		if !hasScoped {
			continue
		}
		next, err := current.parse(scopedContext, nil, false, false, false, false)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// childContextFor computes the active context a property's value
// should be expanded under: its own property-scoped context (default
// propagating) applied over base - the context from before this node's
// type scoping was applied - falling back to scopedCtx itself (type
// scoping plus anything propagated from further out) when the property
// carries no scoped context of its own.
func childContextFor(base, scopedCtx *Context, property string) *Context {
	td := scopedCtx.GetTermDefinition(property)
	if td == nil {
		return scopedCtx
	}
	scopedContext, hasScoped := td["@context"]
	if !hasScoped {
		return scopedCtx
	}
	frame, err := enterScope(base, scopedContext, true)
	if err != nil {
		return scopedCtx
	}
	return frame.entered
}

// nodeRecursionContextFor computes the context a nested node object
// reached through property should be processed with: the property's own
// scoped context applied over base, same as childContextFor, but
// reverting to base itself - the context from before this node's own
// type scoping - when the property carries no scoped context of its
// own. Type-scoped context must not leak into a node object reached
// through an ordinary property, unlike scalar values at that same
// property, which legitimately use the type-scoped term definitions
// for their own coercion.
func nodeRecursionContextFor(base, scopedCtx *Context, property string) *Context {
	td := scopedCtx.GetTermDefinition(property)
	if td == nil {
		return base
	}
	scopedContext, hasScoped := td["@context"]
	if !hasScoped {
		return base
	}
	frame, err := enterScope(base, scopedContext, true)
	if err != nil {
		return base
	}
	return frame.entered
}

// arrayifyWithRaw is Arrayify, plus the matching slice of gjson
// sub-results so callers can keep iterating in source declaration
// order one level further down.
func arrayifyWithRaw(value interface{}, raw gjson.Result) ([]interface{}, []gjson.Result) {
	arr, isArray := value.([]interface{})
	if !isArray {
		return []interface{}{value}, []gjson.Result{raw}
	}
	rawItems := make([]gjson.Result, len(arr))
	if raw.IsArray() {
		i := 0
		raw.ForEach(func(_, v gjson.Result) bool {
			if i < len(rawItems) {
				rawItems[i] = v
			}
			i++
			return true
		})
	}
	return arr, rawItems
}
