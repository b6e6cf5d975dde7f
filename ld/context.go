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
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	ignoredKeywordPattern = regexp.MustCompile("^@[a-zA-Z]+$")
	invalidPrefixPattern  = regexp.MustCompile("[:/]")
	iriLikeTermPattern    = regexp.MustCompile(`(?::[^:])|/`)

	// nonTermDefKeys lists the @context entries that configure the context
	// itself rather than naming a term; everything else in a context
	// object is run through createTermDefinition.
	nonTermDefKeys = map[string]bool{
		"@base":      true,
		"@direction": true,
		"@import":    true,
		"@language":  true,
		"@protected": true,
		"@version":   true,
		"@vocab":     true,
	}
)

// Context represents a JSON-LD context: the term definitions, base IRI,
// default vocabulary, language/direction and processing mode in effect
// while expanding or compacting a document. Every public method either
// reads this state (ExpandIri, CompactIri, the various GetXxxMapping
// accessors) or derives a new Context from it (Parse).
type Context struct {
	values          map[string]interface{}
	options         *Options
	termDefinitions map[string]interface{}
	inverse         map[string]interface{}
	protected       map[string]bool

	// enclosingContext is the context this one shadows, set only when this
	// Context was produced by a non-propagating Parse (a property-scoped
	// or type-scoped @context with "@propagate": false). scope.go's
	// scopeFrame.exitScope reads it, through exitToEnclosing, to know what
	// to hand the walker back once the scope's node has been fully
	// processed; a propagating scope has no enclosingContext and its term
	// definitions simply stay live for the walker's next sibling.
	enclosingContext *Context
}

// NewContext creates and returns a new Context object.
func NewContext(values map[string]interface{}, options *Options) *Context {
	if options == nil {
		options = NewOptions("")
	}

	context := &Context{
		values:          make(map[string]interface{}),
		options:         options,
		termDefinitions: make(map[string]interface{}),
		protected:       make(map[string]bool),
	}

	context.values["@base"] = options.Base

	for k, v := range values {
		context.values[k] = v
	}

	context.values["processingMode"] = options.ProcessingMode

	return context
}

func (c *Context) AsMap() map[string]interface{} {
	res := map[string]interface{}{
		"values":          c.values,
		"termDefinitions": c.termDefinitions,
		"inverse":         c.inverse,
		"protected":       c.protected,
	}
	if c.enclosingContext != nil {
		res["enclosingContext"] = c.enclosingContext.AsMap()
	}
	return res
}

// CopyContext creates a full copy of the given context.
func CopyContext(ctx *Context) *Context {
	context := NewContext(ctx.values, ctx.options)

	for k, v := range ctx.termDefinitions {
		context.termDefinitions[k] = v
	}

	for k, v := range ctx.protected {
		context.protected[k] = v
	}

	// do not copy c.inverse, because it will be regenerated

	if ctx.enclosingContext != nil {
		context.enclosingContext = CopyContext(ctx.enclosingContext)
	}

	return context
}

// Parse processes a local context, retrieving any URLs as necessary, and
// returns a new active context.
// Refer to http://www.w3.org/TR/json-ld-api/#context-processing-algorithms for details
func (c *Context) Parse(localContext interface{}) (*Context, error) {
	return c.parse(localContext, make([]string, 0), false, true, false, false)
}

// parse processes a local context, retrieving any URLs as necessary, and
// returns a new active context.
//
// If parsingARemoteContext is true, localContext represents a remote context
// that has been parsed and sent into this method. This must be set to know
// whether to propagate the @base key from the context to the result.
func (c *Context) parse(localContext interface{}, remoteContexts []string, parsingARemoteContext, propagate,
	protected, overrideProtected bool) (*Context, error) { //nolint:unparam

	// normalize local context to an array of @context objects
	contexts := Arrayify(localContext)

	// no contexts in array, return current active context w/o changes
	if len(contexts) == 0 {
		return c, nil
	}

	// override propagate if first resolved context has `@propagate`
	firstCtxMap, isMap := contexts[0].(map[string]interface{})
	propagateVal, propagateFound := firstCtxMap["@propagate"]
	if isMap && propagateFound {
		// retrieve early, error checking done later
		if propagateBool, isBool := propagateVal.(bool); isBool {
			propagate = propagateBool
		}
	}

	result := CopyContext(c)

	// track the enclosing context: if not propagating, make sure result
	// has one to revert to (see the Context.enclosingContext doc comment)
	if !propagate && result.enclosingContext == nil {
		result.enclosingContext = c
	}

	for _, entry := range contexts {
		if entry == nil {
			nullified, err := result.nullify(c.options, overrideProtected, propagate)
			if err != nil {
				return nil, err
			}
			result = nullified
			continue
		}

		var contextMap map[string]interface{}

		switch ctx := entry.(type) {
		case *Context:
			result = ctx
		case string:
			nextResult, resolvedContexts, err := c.resolveRemoteContext(result, ctx, remoteContexts, overrideProtected)
			if err != nil {
				return nil, err
			}
			result = nextResult
			remoteContexts = resolvedContexts
			continue
		case map[string]interface{}:
			contextMap = ctx
		default:
			return nil, NewJsonLdError(InvalidLocalContext, entry)
		}

		// dereference @context key if present
		if nestedContext := contextMap["@context"]; nestedContext != nil {
			contextMap, isMap = nestedContext.(map[string]interface{})
			if !isMap {
				return nil, NewJsonLdError(InvalidLocalContext, nestedContext)
			}
		}

		if err := result.applyProcessingMode(c, contextMap); err != nil {
			return nil, err
		}

		mergedContextMap, err := c.resolveImport(result, contextMap)
		if err != nil {
			return nil, err
		}
		contextMap = mergedContextMap

		if err := result.applyBaseEntry(contextMap, parsingARemoteContext); err != nil {
			return nil, err
		}
		if err := result.applyLanguageEntry(contextMap); err != nil {
			return nil, err
		}
		if err := result.applyDirectionEntry(contextMap); err != nil {
			return nil, err
		}

		defined := make(map[string]bool)

		if err := c.applyPropagateEntry(contextMap, defined); err != nil {
			return nil, err
		}
		if err := result.applyVocabEntry(c, contextMap); err != nil {
			return nil, err
		}
		applyProtectedEntry(contextMap, protected, defined)

		for key := range contextMap {
			if _, skip := nonTermDefKeys[key]; !skip {
				if err := result.createTermDefinition(contextMap, key, defined, overrideProtected); err != nil {
					return nil, err
				}
			}
		}
	}

	return result, nil
}

// nullify handles a null entry in the @context array: a document can
// reset the active context entirely, but only when no term in scope has
// been protected against that (or overrideProtected says to allow it
// anyway, e.g. while redefining a property-scoped context).
func (c *Context) nullify(options *Options, overrideProtected, propagate bool) (*Context, error) {
	if !overrideProtected && len(c.protected) != 0 {
		return nil, NewJsonLdError(InvalidContextNullification,
			"tried to nullify a context with protected terms outside of a term definition.")
	}
	nullCtx := NewContext(nil, options)
	if !propagate {
		nullCtx.enclosingContext = c
	}
	return nullCtx, nil
}

// resolveRemoteContext dereferences a context given as a URL string
// (contexts[i] == a string), guards against a context that includes
// itself transitively, and folds the fetched context's own @context
// entry into result via a nested parse call.
func (c *Context) resolveRemoteContext(result *Context, ctxURL string, remoteContexts []string,
	overrideProtected bool) (*Context, []string, error) {

	uri := Resolve(result.values["@base"].(string), ctxURL)

	for _, seen := range remoteContexts {
		if seen == uri {
			return nil, nil, NewJsonLdError(RecursiveContextInclusion, uri)
		}
	}
	remoteContexts = append(remoteContexts, uri)

	rd, err := c.options.ContextLoader.Load(uri)
	if err != nil {
		return nil, nil, NewJsonLdError(LoadingRemoteContextFailed,
			fmt.Errorf("dereferencing a URL did not result in a valid JSON-LD context (%s): %w", uri, err))
	}
	remoteContextMap, isMap := rd.Document.(map[string]interface{})
	remoteContext, hasContextKey := remoteContextMap["@context"]
	if !isMap || !hasContextKey {
		return nil, nil, NewJsonLdError(InvalidRemoteContext, remoteContext)
	}

	remoteContextsCpy := make([]string, 0, len(remoteContexts))
	copy(remoteContextsCpy, remoteContexts)
	next, err := result.parse(remoteContext, remoteContextsCpy, true, true, false, overrideProtected)
	if err != nil {
		return nil, nil, err
	}
	return next, remoteContexts, nil
}

// applyProcessingMode computes result's processingMode from an explicit
// @version entry in contextMap (1.1 mode, rejecting a conflicting
// explicit 1.0 mode) or inherits c's, defaulting to 1.0 when neither
// says otherwise.
func (result *Context) applyProcessingMode(c *Context, contextMap map[string]interface{}) error {
	pm, hasProcessingMode := c.values["processingMode"]

	versionValue, versionPresent := contextMap["@version"]
	switch {
	case versionPresent:
		if versionValue != 1.1 {
			return NewJsonLdError(InvalidVersionValue, fmt.Sprintf("unsupported JSON-LD version: %s", versionValue))
		}
		if hasProcessingMode && pm.(string) == JsonLd_1_0 {
			return NewJsonLdError(ProcessingModeConflict, fmt.Sprintf("@version: %v not compatible with %s", versionValue, pm))
		}
		result.values["processingMode"] = JsonLd_1_1
		result.values["@version"] = versionValue
	case !hasProcessingMode:
		result.values["processingMode"] = JsonLd_1_0
	default:
		result.values["processingMode"] = pm
	}
	return nil
}

// resolveImport handles an @import entry: it may only be used in 1.1
// mode, must point at an object with no @import of its own, and that
// object's entries are overridden by anything already present in
// contextMap before the two are merged.
func (c *Context) resolveImport(result *Context, contextMap map[string]interface{}) (map[string]interface{}, error) {
	importValue, importFound := contextMap["@import"]
	if !importFound {
		return contextMap, nil
	}

	if result.processingMode(1.0) {
		return nil, NewJsonLdError(InvalidContextEntry, "@import may only be used in 1.1 mode")
	}
	importStr, isString := importValue.(string)
	if !isString {
		return nil, NewJsonLdError(InvalidImportValue, "@import must be a string")
	}
	uri := Resolve(result.values["@base"].(string), importStr)

	rd, err := c.options.ContextLoader.Load(uri)
	if err != nil {
		return nil, NewJsonLdError(LoadingRemoteContextFailed,
			fmt.Errorf("dereferencing a URL did not result in a valid JSON-LD context (%s): %w", uri, err))
	}
	importCtxDocMap, isMap := rd.Document.(map[string]interface{})
	importedContext, hasContextKey := importCtxDocMap["@context"]
	if !isMap || !hasContextKey {
		return nil, NewJsonLdError(InvalidRemoteContext, importedContext)
	}

	importCtxMap, isMap := importedContext.(map[string]interface{})
	if !isMap {
		return nil, NewJsonLdError(InvalidRemoteContext, fmt.Sprintf("%s must be an object", importStr))
	}
	if _, found := importCtxMap["@import"]; found {
		return nil, NewJsonLdError(InvalidContextEntry, fmt.Sprintf("%s must not include @import entry", importStr))
	}

	for k, v := range contextMap {
		importCtxMap[k] = v
	}
	return importCtxMap, nil
}

// applyBaseEntry handles an @base entry, resolving it relative to the
// current @base unless it is itself absolute. It is skipped while
// parsing a remote context, since @base never propagates out of one.
func (result *Context) applyBaseEntry(contextMap map[string]interface{}, parsingARemoteContext bool) error {
	baseValue, basePresent := contextMap["@base"]
	if parsingARemoteContext || !basePresent {
		return nil
	}
	if baseValue == nil {
		delete(result.values, "@base")
		return nil
	}
	baseString, isString := baseValue.(string)
	if !isString {
		return NewJsonLdError(InvalidBaseIRI, "the value of @base in a @context must be a string or null")
	}
	if IsAbsoluteIri(baseString) {
		result.values["@base"] = baseValue
		return nil
	}
	baseURI := result.values["@base"].(string)
	if !IsAbsoluteIri(baseURI) {
		return NewJsonLdError(InvalidBaseIRI, baseURI)
	}
	result.values["@base"] = Resolve(baseURI, baseString)
	return nil
}

func (result *Context) applyLanguageEntry(contextMap map[string]interface{}) error {
	languageValue, languagePresent := contextMap["@language"]
	if !languagePresent {
		return nil
	}
	if languageValue == nil {
		delete(result.values, "@language")
		return nil
	}
	languageString, isString := languageValue.(string)
	if !isString {
		return NewJsonLdError(InvalidDefaultLanguage, languageValue)
	}
	result.values["@language"] = strings.ToLower(languageString)
	return nil
}

func (result *Context) applyDirectionEntry(contextMap map[string]interface{}) error {
	directionValue, directionPresent := contextMap["@direction"]
	if !directionPresent {
		return nil
	}
	if directionValue == nil {
		delete(result.values, "@direction")
		return nil
	}
	directionString, isString := directionValue.(string)
	if !isString || (directionString != "rtl" && directionString != "ltr") {
		return NewJsonLdError(InvalidBaseDirection, directionValue)
	}
	result.values["@direction"] = strings.ToLower(directionString)
	return nil
}

// applyPropagateEntry type-checks (but does not apply; that already
// happened earlier in parse, before result was cloned) an explicit
// @propagate entry, recording in defined that it was seen so
// createTermDefinition doesn't try to treat "@propagate" as a term.
func (c *Context) applyPropagateEntry(contextMap map[string]interface{}, defined map[string]bool) error {
	propagateValue, propagatePresent := contextMap["@propagate"]
	if !propagatePresent {
		return nil
	}
	if c.processingMode(1.0) {
		return NewJsonLdError(InvalidContextEntry,
			fmt.Sprintf("@propagate not compatible with %s", c.values["processingMode"]))
	}
	if _, isBool := propagateValue.(bool); !isBool {
		return NewJsonLdError(InvalidPropagateValue, "@propagate value must be a boolean")
	}
	defined["@propagate"] = true
	return nil
}

func (result *Context) applyVocabEntry(c *Context, contextMap map[string]interface{}) error {
	vocabValue, vocabPresent := contextMap["@vocab"]
	if !vocabPresent {
		return nil
	}
	if vocabValue == nil {
		delete(result.values, "@vocab")
		return nil
	}
	vocabString, isString := vocabValue.(string)
	if !isString {
		return NewJsonLdError(InvalidVocabMapping, "@vocab must be a string or null")
	}
	if !IsAbsoluteIri(vocabString) && c.processingMode(1.0) {
		return NewJsonLdError(InvalidVocabMapping, "@vocab must be an absolute IRI in 1.0 mode")
	}
	expandedVocab, err := result.ExpandIri(vocabString, true, true, nil, nil)
	if err != nil {
		return err
	}
	result.values["@vocab"] = expandedVocab
	return nil
}

// applyProtectedEntry records, in defined, whether this local context
// is declaring all of its own term definitions protected - either
// explicitly via its own @protected entry, or because it was parsed
// while already inside a protected scope.
func applyProtectedEntry(contextMap map[string]interface{}, protected bool, defined map[string]bool) {
	if protectedVal, protectedPresent := contextMap["@protected"]; protectedPresent {
		defined["@protected"] = protectedVal.(bool)
	} else if protected {
		defined["@protected"] = true
	}
}

// CompactValue performs value compaction on an object with @value or @id as the only property.
// See https://www.w3.org/TR/2019/CR-json-ld11-api-20191212/#value-compaction
func (c *Context) CompactValue(activeProperty string, value map[string]interface{}) (interface{}, error) {

	// 1
	var result interface{} = value

	// 2
	language := c.GetLanguageMapping(activeProperty)

	// 3
	direction := c.GetDirectionMapping(activeProperty)

	isIndexContainer := c.HasContainerMapping(activeProperty, "@index")
	// whether or not the value has an @index that must be preserved
	_, hasIndex := value["@index"]
	idVal, hasID := value["@id"]
	typeVal, hasType := value["@type"]

	idOrIndex := true
	for k := range value {
		if k != "@id" && k != "@index" {
			idOrIndex = false
			break
		}
	}

	propType := c.GetTermDefinition(activeProperty)["@type"]

	languageVal := value["@language"]
	directionVal := value["@direction"]
	var err error

	if hasID && idOrIndex { // 4
		if propType == "@id" { // 4.1
			result, err = c.CompactIri(idVal.(string), nil, false, false)
			if err != nil {
				return nil, err
			}
		} else if propType == "@vocab" { // 4.2
			result, err = c.CompactIri(idVal.(string), nil, true, false)
			if err != nil {
				return nil, err
			}
		} else {
			compactedID, err := c.CompactIri("@id", nil, true, false)
			if err != nil {
				return nil, err
			}
			compactedValue, err := c.CompactIri(idVal.(string), nil, false, false)
			if err != nil {
				return nil, err
			}
			result = map[string]interface{}{
				compactedID: compactedValue,
			}
		}
	} else if hasType && typeVal == propType { // 5
		// compact common datatype
		result = value["@value"]
	} else if propType == "@none" || (hasType && typeVal != propType) { // 6
		// use original expanded value
		result = value
	} else if _, isString := value["@value"].(string); !isString && ((hasIndex && isIndexContainer) || !hasIndex) { // 7
		result = value["@value"]
	} else if (languageVal == language) && directionVal == direction { // 8
		// compact language and direction
		if (hasIndex && isIndexContainer) || !hasIndex {
			result = value["@value"]

			return result, nil
		}
	}

	resultMap, isMap := result.(map[string]interface{})
	if isMap && resultMap["@type"] != nil && value["@type"] != "@json" { // 6.1

		// create a copy of result (because it can be the same map as 'value'
		newMap := make(map[string]interface{}, len(resultMap))
		for k, v := range resultMap {
			newMap[k] = v
		}

		// compact values of @type
		if tt, isArray := newMap["@type"].([]interface{}); isArray {
			newTT := make([]interface{}, len(tt))
			for i, t := range tt {
				newTT[i], err = c.CompactIri(t.(string), nil, true, false)
				if err != nil {
					return nil, err
				}
			}
			newMap["@type"] = newTT
		} else {
			newMap["@type"], err = c.CompactIri(newMap["@type"].(string), nil, true, false)
			if err != nil {
				return nil, err
			}
		}

		result = newMap
	}

	// 9
	resultMap, isMap = result.(map[string]interface{})
	if isMap {
		newMap := make(map[string]interface{}, len(resultMap))
		for k, v := range resultMap {
			if k == "@index" && !(hasIndex && !isIndexContainer) {
				// don't preserve @index
				continue
			}
			keyAlias, err := c.CompactIri(k, nil, true, false)
			if err != nil {
				return nil, err
			}
			newMap[keyAlias] = v
		}

		result = newMap
	}

	return result, nil
}

// processingMode returns true if the given version is compatible with the current processing mode
func (c *Context) processingMode(version float64) bool {
	mode, hasMode := c.values["processingMode"]
	if version >= 1.1 {
		if !hasMode {
			return false
		}
		return mode.(string) >= fmt.Sprintf("json-ld-%v", version)
	}
	if !hasMode {
		return true
	}
	return mode.(string) == JsonLd_1_0
}

// createTermDefinition creates a term definition in the active context
// for a term being processed in a local context as described in
// http://www.w3.org/TR/json-ld-api/#create-term-definition
func (c *Context) createTermDefinition(context map[string]interface{}, term string,
	defined map[string]bool, overrideProtected bool) error {

	if definedValue, inDefined := defined[term]; inDefined {
		if definedValue {
			return nil
		}
		return NewJsonLdError(CyclicIRIMapping, term)
	}

	defined[term] = false

	value := context[term]
	mapValue, isMap := value.(map[string]interface{})
	idValue, hasID := mapValue["@id"]
	if value == nil || (isMap && hasID && idValue == nil) {
		c.termDefinitions[term] = nil
		defined[term] = true
		return nil
	}

	simpleTerm := false
	if _, isString := value.(string); isString {
		mapValue = map[string]interface{}{"@id": value}
		simpleTerm = true
		isMap = true
	}

	if !isMap {
		return NewJsonLdError(InvalidTermDefinition, value)
	}

	if skip, err := c.checkKeywordRedefinition(term, value); err != nil {
		return err
	} else if skip {
		return nil
	}

	// keep reference to previous mapping for potential `@protected` check
	prevDefinition := c.termDefinitions[term]
	delete(c.termDefinitions, term)

	val := mapValue

	if err := c.validDefinitionKeys(val); err != nil {
		return err
	}

	// always compute whether term has a colon as an optimization for _compact_iri
	colIndex := strings.Index(term, ":")
	termHasColon := colIndex > 0

	definition := map[string]interface{}{"@reverse": false}

	skip, err := c.resolveIdOrReverseMapping(context, term, val, defined, definition, termHasColon, simpleTerm)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}

	if err := c.deriveImplicitIdMapping(context, term, definition, termHasColon, colIndex, defined, overrideProtected); err != nil {
		return err
	}

	c.markProtected(term, mapValue, definition, defined)
	defined[term] = true

	if err := applyTypeMapping(c, context, term, val, definition, defined); err != nil {
		return err
	}

	if err := c.applyContainerMapping(term, val, definition); err != nil {
		return err
	}

	if err := applyIndexMapping(term, val, definition); err != nil {
		return err
	}

	if ctxVal, hasCtx := val["@context"]; hasCtx {
		definition["@context"] = ctxVal
	}

	if err := applyLanguageMapping(term, val, definition); err != nil {
		return err
	}

	if err := applyPrefixMapping(term, val, definition); err != nil {
		return err
	}

	if err := applyDirectionMapping(term, val, definition); err != nil {
		return err
	}

	if err := applyNestMapping(val, definition); err != nil {
		return err
	}

	if id := definition["@id"]; id == "@context" || id == "@preserve" {
		return NewJsonLdError(InvalidKeywordAlias, "@context and @preserve cannot be aliased")
	}

	if err := checkProtectedOverride(term, prevDefinition, definition, overrideProtected, c.protected); err != nil {
		return err
	}

	c.termDefinitions[term] = definition
	return nil
}

// checkKeywordRedefinition rejects redefining a keyword, except for the
// JSON-LD 1.1 carve-out that lets @type be redefined as a plain @set
// container (used to collect multiple types without @container: @set
// repeated on every term). skip reports a silently-ignored term (one
// beginning with "@" that the pattern reserves for future keywords).
func (c *Context) checkKeywordRedefinition(term string, value interface{}) (skip bool, err error) {
	if IsKeyword(term) {
		vmap, _ := value.(map[string]interface{})
		hasAllowedKeysOnly := true
		for k := range vmap {
			if k != "@container" && k != "@protected" {
				hasAllowedKeysOnly = false
				break
			}
		}
		isSet := vmap["@container"] == "@set" || vmap["@container"] == nil
		if c.processingMode(1.1) && term == "@type" && hasAllowedKeysOnly && isSet {
			return false, nil
		}
		return false, NewJsonLdError(KeywordRedefinition, term)
	}
	if ignoredKeywordPattern.MatchString(term) {
		return true, nil
	}
	return false, nil
}

func (c *Context) validDefinitionKeys(val map[string]interface{}) error {
	validKeys := map[string]bool{
		"@container": true,
		"@id":        true,
		"@language":  true,
		"@reverse":   true,
		"@type":      true,
	}
	if c.processingMode(1.1) {
		validKeys["@context"] = true
		validKeys["@direction"] = true
		validKeys["@index"] = true
		validKeys["@nest"] = true
		validKeys["@prefix"] = true
		validKeys["@protected"] = true
	}
	for k := range val {
		if _, isValid := validKeys[k]; !isValid {
			return NewJsonLdError(InvalidTermDefinition, fmt.Sprintf("a term definition must not contain %s", k))
		}
	}
	return nil
}

// resolveIdOrReverseMapping handles steps 11, 13 and 14 of create term
// definition: a @reverse entry (mutually exclusive with @id/@nest) or an
// explicit @id entry, each expanded and validated as an absolute IRI,
// keyword or blank node identifier. skip reports a silently-ignored
// value (one beginning with "@" reserved for future keywords).
func (c *Context) resolveIdOrReverseMapping(context map[string]interface{}, term string, val map[string]interface{},
	defined map[string]bool, definition map[string]interface{}, termHasColon, simpleTerm bool) (skip bool, err error) {

	if reverseValue, present := val["@reverse"]; present {
		if _, idPresent := val["@id"]; idPresent {
			return false, NewJsonLdError(InvalidReverseProperty, "an @reverse term definition must not contain @id.")
		}
		if _, nestPresent := val["@nest"]; nestPresent {
			return false, NewJsonLdError(InvalidReverseProperty, "an @reverse term definition must not contain @nest.")
		}
		reverseStr, isString := reverseValue.(string)
		if !isString {
			return false, NewJsonLdError(InvalidIRIMapping,
				fmt.Sprintf("expected string for @reverse value. got %v", reverseValue))
		}
		id, err := c.ExpandIri(reverseStr, false, true, context, defined)
		if err != nil {
			return false, err
		}
		if !IsAbsoluteIri(id) {
			return false, NewJsonLdError(InvalidIRIMapping, fmt.Sprintf(
				"@context @reverse value must be an absolute IRI or a blank node identifier, got %s", id))
		}
		if ignoredKeywordPattern.MatchString(reverseStr) {
			return true, nil
		}
		definition["@id"] = id
		definition["@reverse"] = true
		return false, nil
	}

	idValue, hasID := val["@id"]
	if !hasID {
		return false, nil
	}
	idStr, isString := idValue.(string)
	if !isString {
		return false, NewJsonLdError(InvalidIRIMapping, "expected value of @id to be a string")
	}
	if term == idStr {
		return false, nil
	}
	if !IsKeyword(idStr) && ignoredKeywordPattern.MatchString(idStr) {
		return true, nil
	}

	res, err := c.ExpandIri(idStr, false, true, context, defined)
	if err != nil {
		return false, err
	}
	if !IsKeyword(res) && !IsAbsoluteIri(res) {
		return false, NewJsonLdError(InvalidIRIMapping,
			"resulting IRI mapping should be a keyword, absolute IRI or blank node")
	}
	if res == "@context" {
		return false, NewJsonLdError(InvalidKeywordAlias, "cannot alias @context")
	}
	definition["@id"] = res

	if iriLikeTermPattern.MatchString(term) {
		defined[term] = true
		termIRI, err := c.ExpandIri(term, false, true, context, defined)
		if err != nil {
			return false, err
		}
		if termIRI != res {
			return false, NewJsonLdError(InvalidIRIMapping,
				fmt.Sprintf("term %s expands to %s, not %s", term, res, termIRI))
		}
		delete(defined, term)
	}

	// NOTE: definition["_prefix"] is implemented in Python and JS libraries as follows:
	//
	// definition["_prefix"] = !termHasColon && regexExp.MatchString(res) && (simpleTerm || c.processingMode(1.0))
	//
	// but the test https://json-ld.org/test-suite/tests/compact-manifest.jsonld#t0038 fails.

	termHasSuffix := false
	if len(res) > 0 {
		switch res[len(res)-1] {
		case ':', '/', '?', '#', '[', ']', '@':
			termHasSuffix = true
		}
	}
	definition["_prefix"] = !termHasColon && termHasSuffix && (simpleTerm || c.processingMode(1.0))
	return false, nil
}

// deriveImplicitIdMapping covers term 15: when a term has no explicit
// @id, derive one from the term itself - either by splitting it as a
// compact IRI on its first colon (minting the prefix's own term
// definition first if needed), or by prefixing it with @vocab.
func (c *Context) deriveImplicitIdMapping(context map[string]interface{}, term string, definition map[string]interface{},
	termHasColon bool, colIndex int, defined map[string]bool, overrideProtected bool) error {

	if _, hasID := definition["@id"]; hasID {
		return nil
	}

	if termHasColon {
		prefix := term[0:colIndex]
		if _, containsPrefix := context[prefix]; containsPrefix {
			if err := c.createTermDefinition(context, prefix, defined, overrideProtected); err != nil {
				return err
			}
		}
		if termDef, hasTermDef := c.termDefinitions[prefix]; hasTermDef {
			termDefMap, _ := termDef.(map[string]interface{})
			suffix := term[colIndex+1:]
			definition["@id"] = termDefMap["@id"].(string) + suffix
		} else {
			definition["@id"] = term
		}
		return nil
	}

	if vocabValue, containsVocab := c.values["@vocab"]; containsVocab {
		definition["@id"] = vocabValue.(string) + term
		return nil
	}
	if term != "@type" {
		return NewJsonLdError(InvalidIRIMapping, "relative term definition without vocab mapping")
	}
	return nil
}

// markProtected records term as protected, both on the Context (so a
// later nullify/override check can see it) and on its own definition,
// when the term definition says so explicitly or the enclosing context
// declared every term protected by default.
func (c *Context) markProtected(term string, mapValue, definition map[string]interface{}, defined map[string]bool) {
	valProtected, protectedFound := mapValue["@protected"]
	protectedExplicitlyFalse := protectedFound && !valProtected.(bool)
	if (protectedFound && valProtected.(bool)) || (defined["@protected"] && !protectedExplicitlyFalse) {
		c.protected[term] = true
		definition["protected"] = true
	}
}

// applyTypeMapping handles term 10: an explicit @type entry, expanded
// to an absolute IRI unless it is one of the special @id/@vocab/@json/
// @none markers (the latter two gated on 1.1 processing mode).
func applyTypeMapping(c *Context, context map[string]interface{}, term string, val, definition map[string]interface{},
	defined map[string]bool) error {

	typeValue, present := val["@type"]
	if !present {
		return nil
	}
	typeStr, isString := typeValue.(string)
	if !isString {
		return NewJsonLdError(InvalidTypeMapping, typeValue)
	}
	if (typeStr == "@json" || typeStr == "@none") && c.processingMode(1.0) {
		return NewJsonLdError(InvalidTypeMapping,
			fmt.Sprintf("unknown mapping for @type: %s on term %s", typeStr, term))
	}
	if typeStr != "@id" && typeStr != "@vocab" && typeStr != "@json" && typeStr != "@none" {
		var err error
		typeStr, err = c.ExpandIri(typeStr, false, true, context, defined)
		if err != nil {
			var ldErr *JsonLdError
			if ok := errors.As(err, &ldErr); !ok || ldErr.Code != InvalidIRIMapping {
				return err
			}
			return NewJsonLdError(InvalidTypeMapping, typeStr)
		}
		if !IsAbsoluteIri(typeStr) {
			return NewJsonLdError(InvalidTypeMapping, "an @context @type value must be an absolute IRI")
		}
		if strings.HasPrefix(typeStr, "_:") {
			return NewJsonLdError(InvalidTypeMapping, "an @context @type values must be an IRI, not a blank node identifier")
		}
	}
	definition["@type"] = typeStr
	return nil
}

// applyContainerMapping handles term 16: validating and normalizing an
// explicit @container entry (a single keyword or an array combining one
// of @graph/@set/@list with @id/@index/@type per the 1.1 combination
// rules) and cross-checking it against @reverse.
func (c *Context) applyContainerMapping(term string, val, definition map[string]interface{}) error {
	containerVal, hasContainer := val["@container"]
	if !hasContainer {
		return nil
	}

	containerArray, isArray := containerVal.([]interface{})
	var container []interface{}
	containerValueMap := make(map[string]bool)
	if isArray {
		for _, v := range containerArray {
			container = append(container, v)
			containerValueMap[v.(string)] = true
		}
	} else {
		container = []interface{}{containerVal}
		containerValueMap[containerVal.(string)] = true
	}

	validContainers := map[string]bool{
		"@list":     true,
		"@set":      true,
		"@index":    true,
		"@language": true,
	}
	if c.processingMode(1.1) {
		validContainers["@graph"] = true
		validContainers["@id"] = true
		validContainers["@type"] = true

		if _, hasList := containerValueMap["@list"]; hasList && len(container) != 1 {
			return NewJsonLdError(InvalidContainerMapping,
				"@context @container with @list must have no other values.")
		}

		if _, hasGraph := containerValueMap["@graph"]; hasGraph {
			validKeys := map[string]bool{"@graph": true, "@id": true, "@index": true, "@set": true}
			for key := range containerValueMap {
				if _, found := validKeys[key]; !found {
					return NewJsonLdError(InvalidContainerMapping,
						"@context @container with @graph must have no other values other than @id, @index, and @set")
				}
			}
		} else {
			maxLen := 1
			if _, hasSet := containerValueMap["@set"]; hasSet {
				maxLen = 2
			}
			if len(container) > maxLen {
				return NewJsonLdError(InvalidContainerMapping, "@set can only be combined with one more type")
			}
		}

		if _, hasType := containerValueMap["@type"]; hasType {
			if _, tdHasType := definition["@type"]; !tdHasType {
				definition["@type"] = "@id"
			}
			if definition["@type"] != "@id" && definition["@type"] != "@vocab" {
				return NewJsonLdError(InvalidTypeMapping, "container: @type requires @type to be @id or @vocab")
			}
		}
	} else if _, isString := containerVal.(string); !isString {
		return NewJsonLdError(InvalidContainerMapping, "@container must be a string")
	}

	for _, v := range container {
		if _, isValidContainer := validContainers[v.(string)]; !isValidContainer {
			allowedValues := make([]string, 0, len(validContainers))
			for k := range validContainers {
				allowedValues = append(allowedValues, k)
			}
			return NewJsonLdError(InvalidContainerMapping, fmt.Sprintf(
				"@context @container value must be one of the following: %q", allowedValues))
		}
	}

	_, hasSet := containerValueMap["@set"]
	_, hasList := containerValueMap["@list"]
	if hasSet && hasList {
		return NewJsonLdError(InvalidContainerMapping, "@set not allowed with @list")
	}

	if reverseVal, hasReverse := definition["@reverse"]; hasReverse && reverseVal.(bool) {
		for key := range containerValueMap {
			if key != "@index" && key != "@set" {
				return NewJsonLdError(InvalidReverseProperty,
					"@context @container value for an @reverse type definition must be @index or @set")
			}
		}
	}

	definition["@container"] = container
	if term == "@type" {
		definition["@id"] = "@type"
	}
	return nil
}

func applyIndexMapping(term string, val, definition map[string]interface{}) error {
	indexVal, hasIndex := val["@index"]
	if !hasIndex {
		return nil
	}
	hasIndexContainer := false
	if container, isArray := definition["@container"].([]interface{}); isArray {
		for _, v := range container {
			if v == "@index" {
				hasIndexContainer = true
			}
		}
	}
	if !hasIndexContainer {
		return NewJsonLdError(InvalidTermDefinition,
			fmt.Sprintf("@index without @index in @container: %s on term %s", indexVal, term))
	}
	if indexStr, isString := indexVal.(string); !isString || strings.HasPrefix(indexStr, "@") {
		return NewJsonLdError(InvalidTermDefinition,
			fmt.Sprintf("@index must expand to an IRI: %s on term %s", indexVal, term))
	}
	definition["@index"] = indexVal
	return nil
}

func applyLanguageMapping(term string, val, definition map[string]interface{}) error {
	_, hasType := val["@type"]
	languageVal, hasLanguage := val["@language"]
	if !hasLanguage || hasType {
		return nil
	}
	if language, isString := languageVal.(string); isString {
		definition["@language"] = strings.ToLower(language)
		return nil
	}
	if languageVal == nil {
		definition["@language"] = nil
		return nil
	}
	return NewJsonLdError(InvalidLanguageMapping, "@language must be a string or null")
}

func applyPrefixMapping(term string, val, definition map[string]interface{}) error {
	prefixVal, hasPrefix := val["@prefix"]
	if !hasPrefix {
		return nil
	}
	if invalidPrefixPattern.MatchString(term) {
		return NewJsonLdError(InvalidTermDefinition, "@prefix used on compact or relative IRI term")
	}
	prefix, isBool := prefixVal.(bool)
	if !isBool {
		return NewJsonLdError(InvalidPrefixValue, "@context value for @prefix must be boolean")
	}
	if idVal, hasID := definition["@id"]; hasID && IsKeyword(idVal) {
		return NewJsonLdError(InvalidTermDefinition, "keywords may not be used as prefixes")
	}
	definition["_prefix"] = prefix
	return nil
}

func applyDirectionMapping(term string, val, definition map[string]interface{}) error {
	directionVal, hasDirection := val["@direction"]
	if !hasDirection {
		return nil
	}
	if dir, isString := directionVal.(string); isString {
		definition["@direction"] = strings.ToLower(dir)
		return nil
	}
	if directionVal == nil {
		definition["@direction"] = nil
		return nil
	}
	return NewJsonLdError(InvalidBaseDirection,
		fmt.Sprintf("direction must be null, 'ltr', or 'rtl', was %s on term %s", directionVal, term))
}

func applyNestMapping(val, definition map[string]interface{}) error {
	nestVal, hasNest := val["@nest"]
	if !hasNest {
		return nil
	}
	nest, isString := nestVal.(string)
	if !isString || (nest != "@nest" && nest[0] == '@') {
		return NewJsonLdError(InvalidNestValue,
			"@context @nest value must be a string which is not a keyword other than @nest")
	}
	definition["@nest"] = nest
	return nil
}

// checkProtectedOverride enforces that a protected term's redefinition
// is either identical to its previous definition or explicitly
// permitted by overrideProtected (used when a term is being redefined
// by the very scope that protected it).
func checkProtectedOverride(term string, prevDefinition interface{}, definition map[string]interface{},
	overrideProtected bool, protected map[string]bool) error {

	if prevDefinition == nil {
		return nil
	}
	prevDefMap := prevDefinition.(map[string]interface{})
	protectedVal, found := prevDefMap["protected"]
	if !found || !protectedVal.(bool) || overrideProtected {
		return nil
	}

	protected[term] = true
	definition["protected"] = true
	if !DeepCompare(prevDefinition, definition, false) {
		return NewJsonLdError(ProtectedTermRedefinition, "invalid JSON-LD syntax; tried to redefine a protected term")
	}
	return nil
}

// exitToEnclosing returns the context that was shadowed when this one
// was produced by a non-propagating Parse, or this context itself if it
// never shadowed anything. scopeFrame.exitScope (scope.go) calls this
// to restore the walker's context once a non-propagating scope's node
// has been fully processed.
func (c *Context) exitToEnclosing() *Context {
	if c.enclosingContext == nil {
		return c
	}
	return CopyContext(c.enclosingContext)
}

// hasEnclosingContext reports whether exitToEnclosing has a real
// enclosing context to revert to, as opposed to returning c itself.
func (c *Context) hasEnclosingContext() bool {
	return c.enclosingContext != nil
}

// ExpandIri expands a string value to a full IRI.
//
// The string may be a term, a prefix, a relative IRI, or an absolute IRI.
// The associated absolute IRI will be returned.
//
// value: the string value to expand.
// relative: true to resolve IRIs against the base IRI, false not to.
// vocab: true to concatenate after @vocab, false not to.
// context: the local context being processed (only given if called during context processing).
// defined: a map for tracking cycles in context definitions (only given if called during context processing).
func (c *Context) ExpandIri(value string, relative bool, vocab bool, context map[string]interface{},
	defined map[string]bool) (string, error) {
	// 1)
	if IsKeyword(value) {
		return value, nil
	}

	if ignoredKeywordPattern.MatchString(value) {
		return "", nil
	}

	// 2)
	if context != nil {
		if _, containsKey := context[value]; containsKey && !defined[value] {
			if err := c.createTermDefinition(context, value, defined, false); err != nil {
				return "", err
			}
		}
	}
	// 3)
	if termDef, hasTermDef := c.termDefinitions[value]; vocab && hasTermDef {
		termDefMap, isMap := termDef.(map[string]interface{})
		if isMap && termDefMap != nil {
			return termDefMap["@id"].(string), nil
		}
		return "", nil
	}

	// 4)
	// check if value contains a colon (`:`) anywhere but as the first character
	colIndex := strings.Index(value, ":")
	if colIndex > 0 {
		prefix := value[0:colIndex]
		suffix := value[colIndex+1:]
		if prefix == "_" || strings.HasPrefix(suffix, "//") {
			return value, nil
		}
		if context != nil {
			if _, containsPrefix := context[prefix]; containsPrefix && !defined[prefix] {
				if err := c.createTermDefinition(context, prefix, defined, false); err != nil {
					return "", err
				}
			}
		}
		// If active context contains a term definition for prefix, return the result of concatenating
		// the IRI mapping associated with prefix and suffix.
		termDef, hasPrefix := c.termDefinitions[prefix]
		if hasPrefix && termDef.(map[string]interface{})["@id"] != "" && termDef.(map[string]interface{})["_prefix"].(bool) {
			termDefMap := termDef.(map[string]interface{})
			return termDefMap["@id"].(string) + suffix, nil
		} else if IsAbsoluteIri(value) {
			return value, nil
		}
		// Otherwise, it is a relative IRI
	}

	// 5)
	if vocabValue, containsVocab := c.values["@vocab"]; vocab && containsVocab {
		return vocabValue.(string) + value, nil
	} else if relative {
		// 6)
		baseValue, hasBase := c.values["@base"]
		var base string
		if hasBase {
			base = baseValue.(string)
		}
		return Resolve(base, value), nil
	} else if context != nil && IsRelativeIri(value) {
		return "", NewJsonLdError(InvalidIRIMapping, "not an absolute IRI: "+value)
	}
	// 7)
	return value, nil
}

// CompactIri compacts an IRI or keyword into a term or CURIE if it can be.
// If the IRI has an associated value it may be passed.
//
// iri: the IRI to compact.
// value: the value to check or None.
// relativeToVocab: true to compact using @vocab if available, false not to.
// reverse: true if a reverse property is being compacted, false if not.
//
// Returns the compacted term, prefix, keyword alias, or original IRI.
func (c *Context) CompactIri(iri string, value interface{}, relativeToVocab bool, reverse bool) (string, error) {
	if iri == "" {
		return "", nil
	}

	inverseCtx := c.GetInverse()

	// term is a keyword, force relativeToVocab to True
	if IsKeyword(iri) {
		if alias, ok := keywordAlias(inverseCtx, iri); ok {
			return alias, nil
		}
		relativeToVocab = true
	}

	if relativeToVocab {
		if _, containsIRI := inverseCtx[iri]; containsIRI {
			if term, err := c.selectCompactionTerm(iri, value, reverse); err != nil {
				return "", err
			} else if term != "" {
				return term, nil
			}
		}

		if vocabVal, containsVocab := c.values["@vocab"]; containsVocab {
			vocab := vocabVal.(string)
			if strings.HasPrefix(iri, vocab) && iri != vocab {
				// use suffix as relative iri if it is not a term in the
				// active context
				suffix := iri[len(vocab):]
				if _, hasSuffix := c.termDefinitions[suffix]; !hasSuffix {
					return suffix, nil
				}
			}
		}
	}

	compactIRI, err := c.compactIriAsPrefix(iri, value)
	if err != nil {
		return "", err
	}
	if compactIRI != "" {
		return compactIRI, nil
	}

	for term, td := range c.termDefinitions {
		if tdMap, isMap := td.(map[string]interface{}); isMap {
			prefix, hasPrefix := tdMap["_prefix"]
			if hasPrefix && prefix.(bool) && strings.HasPrefix(iri, term+":") {
				return "", NewJsonLdError(IRIConfusedWithPrefix, fmt.Sprintf("Absolute IRI %s confused with prefix %s", iri, term))
			}
		}
	}

	if !relativeToVocab {
		return RemoveBase(c.values["@base"].(string), iri), nil
	}
	return iri, nil
}

// selectCompactionTerm implements the value-driven half of IRI
// compaction (JSON-LD API §IRI Compaction, steps 2.2-2.15): building the
// ordered list of candidate @container combinations and preferred
// type/language values that best describe value, then asking the
// inverse context (via SelectTerm) for the term registered against
// iri that matches them most specifically. Returns "" if no term in
// the active context's inverse entry for iri matches any candidate.
func (c *Context) selectCompactionTerm(iri string, value interface{}, reverse bool) (string, error) {
	defaultLanguage := c.compactionDefaultLanguage()

	containers := make([]string, 0)

	valueMap, isObject := value.(map[string]interface{})
	if isObject {
		_, hasIndex := valueMap["@index"]
		_, hasGraph := valueMap["@graph"]
		if hasIndex && !hasGraph {
			containers = append(containers, "@index", "@index@set")
		}

		// if value is a preserve object, use its value
		if pv, hasPreserve := valueMap["@preserve"]; hasPreserve {
			value = pv.([]interface{})[0]
			valueMap, isObject = value.(map[string]interface{})
		}
	}

	// prefer most specific container including @graph
	if IsGraph(value) {
		_, hasIndex := valueMap["@index"]
		_, hasID := valueMap["@id"]

		if hasIndex {
			containers = append(containers, "@graph@index", "@graph@index@set", "@index", "@index@set")
		}
		if hasID {
			containers = append(containers, "@graph@id", "@graph@id@set")
		}
		containers = append(containers, "@graph", "@graph@set", "@set")
		if !hasIndex {
			containers = append(containers, "@graph@index", "@graph@index@set", "@index", "@index@set")
		}
		if !hasID {
			containers = append(containers, "@graph@id", "@graph@id@set")
		}
	} else if isObject && !IsValue(value) {
		containers = append(containers, "@id", "@id@set", "@type", "@set@type")
	}

	typeLanguage := "@language"
	typeLanguageValue := "@null"

	switch {
	case reverse:
		typeLanguage = "@type"
		typeLanguageValue = "@reverse"
		containers = append(containers, "@set")
	default:
		if valueList, containsList := valueMap["@list"]; containsList {
			if _, containsIndex := valueMap["@index"]; !containsIndex {
				containers = append(containers, "@list")
			}
			typeLanguage, typeLanguageValue = commonListTypeLanguage(valueList.([]interface{}), defaultLanguage)
		} else {
			typeLanguage, typeLanguageValue = singleValueTypeLanguage(valueMap, isObject, value)
			containers = append(containers, "@set")
		}
	}

	containers = append(containers, "@none")

	// an index map can be used to index values using @none, so add as
	// a low priority
	if isObject {
		if _, hasIndex := valueMap["@index"]; !hasIndex {
			containers = append(containers, "@index", "@index@set")
		}
	}

	// values without type or language can use @language map
	if IsValue(value) && len(value.(map[string]interface{})) == 1 {
		containers = append(containers, "@language", "@language@set")
	}

	if typeLanguageValue == "" {
		typeLanguageValue = "@null"
	}

	preferredValues, typeLanguage, err := c.preferredCompactionValues(typeLanguage, typeLanguageValue, valueMap, isObject)
	if err != nil {
		return "", err
	}

	return c.SelectTerm(iri, containers, typeLanguage, preferredValues), nil
}

// compactionDefaultLanguage computes the "default language" used as a
// fallback preferred value for untyped, unlabeled values: the active
// context's @language and @direction combined, or "@none" if neither is
// set.
func (c *Context) compactionDefaultLanguage() string {
	langVal, hasLang := c.values["@language"]
	if dir, dirFound := c.values["@direction"]; dirFound {
		return fmt.Sprintf("%s_%s", langVal, dir)
	}
	if hasLang {
		return langVal.(string)
	}
	return "@none"
}

// commonListTypeLanguage derives the typeLanguage/typeLanguageValue pair
// for a @list value: the type or language shared by every list item, or
// "@none" if the items disagree.
func commonListTypeLanguage(list []interface{}, defaultLanguage string) (typeLanguage, typeLanguageValue string) {
	typeLanguage = "@language"

	var commonType, commonLanguage string
	if len(list) == 0 {
		commonLanguage = defaultLanguage
		commonType = "@id"
	}

	for _, item := range list {
		itemLanguage := "@none"
		itemType := "@none"

		if IsValue(item) {
			itemMap := item.(map[string]interface{})
			dirVal, hasDir := itemMap["@direction"]
			langVal, hasLang := itemMap["@language"]
			switch {
			case hasDir && hasLang:
				itemLanguage = fmt.Sprintf("%s_%s", itemMap["@language"], dirVal)
			case hasDir:
				itemLanguage = fmt.Sprintf("_%s", dirVal)
			case hasLang:
				itemLanguage = langVal.(string)
			default:
				if typeVal, hasType := itemMap["@type"]; hasType {
					itemType = typeVal.(string)
				} else {
					itemLanguage = "@null"
				}
			}
		} else {
			itemType = "@id"
		}

		if commonLanguage == "" {
			commonLanguage = itemLanguage
		} else if commonLanguage != itemLanguage && IsValue(item) {
			commonLanguage = "@none"
		}

		if commonType == "" {
			commonType = itemType
		} else if commonType != itemType {
			commonType = "@none"
		}

		if commonLanguage == "@none" && commonType == "@none" {
			break
		}
	}

	if commonLanguage == "" {
		commonLanguage = "@none"
	}
	if commonType == "" {
		commonType = "@none"
	}

	if commonType != "@none" {
		return "@type", commonType
	}
	return typeLanguage, commonLanguage
}

// singleValueTypeLanguage derives the typeLanguage/typeLanguageValue
// pair for a single (non-list) value: its own @language/@direction or
// @type when it is a value object, or @id when it is a node reference.
func singleValueTypeLanguage(valueMap map[string]interface{}, isObject bool, value interface{}) (typeLanguage, typeLanguageValue string) {
	typeLanguage = "@language"

	if IsValue(value) {
		langVal, hasLang := valueMap["@language"]
		dirVal, hasDir := valueMap["@direction"]
		_, hasIndex := valueMap["@index"]
		switch {
		case hasLang && !hasIndex:
			if hasDir {
				typeLanguageValue = fmt.Sprintf("%s_%s", langVal, dirVal)
			} else {
				typeLanguageValue = langVal.(string)
			}
		case hasDir && !hasIndex:
			typeLanguageValue = fmt.Sprintf("_%s", dirVal)
		default:
			if typeVal, hasType := valueMap["@type"]; hasType {
				typeLanguage = "@type"
				typeLanguageValue = typeVal.(string)
			}
		}
	} else {
		typeLanguage = "@type"
		typeLanguageValue = "@id"
	}

	return typeLanguage, typeLanguageValue
}

// preferredCompactionValues builds the ordered preferredValues list
// (JSON API §IRI Compaction step 2.10-2.13): @id/@vocab preference for
// node references, the computed typeLanguageValue otherwise, always
// terminated by @none/@any, plus a direction-only fallback for any
// "language_direction"-shaped entry.
func (c *Context) preferredCompactionValues(typeLanguage, typeLanguageValue string, valueMap map[string]interface{},
	isObject bool) (preferredValues []string, outTypeLanguage string, err error) {

	outTypeLanguage = typeLanguage
	preferredValues = make([]string, 0)

	idVal, hasID := valueMap["@id"]
	if (typeLanguageValue == "@reverse" || typeLanguageValue == "@id") && isObject && hasID {
		if typeLanguageValue == "@reverse" {
			preferredValues = append(preferredValues, "@reverse")
		}

		result, compactErr := c.CompactIri(idVal.(string), nil, true, false)
		if compactErr != nil {
			return nil, "", compactErr
		}
		resultVal, hasResult := c.termDefinitions[result]
		check := false
		if hasResult {
			resultIDVal, hasResultID := resultVal.(map[string]interface{})["@id"]
			check = hasResultID && idVal == resultIDVal
		}
		if check {
			preferredValues = append(preferredValues, "@vocab", "@id", "@none")
		} else {
			preferredValues = append(preferredValues, "@id", "@vocab", "@none")
		}
	} else {
		if valueList, containsList := valueMap["@list"]; containsList && valueList == nil {
			outTypeLanguage = "@any"
		}
		preferredValues = append(preferredValues, typeLanguageValue, "@none")
	}

	preferredValues = append(preferredValues, "@any")

	// if containers included `@language` and preferred_values includes something
	// of the form language-tag_direction, add just the _direction part, to select
	// terms that have that direction.
	for _, pv := range preferredValues {
		if idx := strings.LastIndex(pv, "_"); idx != -1 {
			preferredValues = append(preferredValues, pv[idx:])
		}
	}

	return preferredValues, outTypeLanguage, nil
}

// keywordAlias looks up whatever term the active context uses in place
// of iri itself (e.g. a document that defines "id": {"@id": "@id"}).
func keywordAlias(inverseCtx map[string]interface{}, iri string) (string, bool) {
	v, found := inverseCtx[iri]
	if !found {
		return "", false
	}
	v, found = v.(map[string]interface{})["@none"]
	if !found {
		return "", false
	}
	v, found = v.(map[string]interface{})["@type"]
	if !found {
		return "", false
	}
	v, found = v.(map[string]interface{})["@none"]
	if !found {
		return "", false
	}
	return v.(string), true
}

// compactIriAsPrefix implements steps 4-5 of IRI compaction: look for a
// term whose IRI mapping is a prefix of iri and that is itself usable
// as a CURIE prefix, preferring the shortest (then lexicographically
// least) candidate term when more than one qualifies.
func (c *Context) compactIriAsPrefix(iri string, value interface{}) (string, error) {
	compactIRI := ""
	for term, termDefinitionVal := range c.termDefinitions {
		if termDefinitionVal == nil || strings.Contains(term, ":") {
			continue
		}
		termDefinition := termDefinitionVal.(map[string]interface{})
		idStr := termDefinition["@id"].(string)
		if iri == idStr || !strings.HasPrefix(iri, idStr) {
			continue
		}

		candidate := term + ":" + iri[len(idStr):]
		candidateVal, containsCandidate := c.termDefinitions[candidate]
		prefix, hasPrefix := termDefinition["_prefix"]
		if (compactIRI == "" || CompareShortestLeast(candidate, compactIRI)) && hasPrefix && prefix.(bool) &&
			(!containsCandidate || (iri == candidateVal.(map[string]interface{})["@id"] && value == nil)) {
			compactIRI = candidate
		}
	}
	return compactIRI, nil
}

// GetPrefixes returns a map of potential RDF prefixes based on the JSON-LD Term Definitions
// in this context. No guarantees of the prefixes are given, beyond that it will not contain ":".
//
// onlyCommonPrefixes: If true, the result will not include "not so useful" prefixes, such as
// "term1": "http://example.com/term1", e.g. all IRIs will end with "/" or "#".
// If false, all potential prefixes are returned.
//
// Returns a map from prefix string to IRI string
func (c *Context) GetPrefixes(onlyCommonPrefixes bool) map[string]string {
	prefixes := make(map[string]string)

	for term, termDefinition := range c.termDefinitions {
		if strings.Contains(term, ":") {
			continue
		}
		if termDefinition == nil {
			continue
		}
		termDefinitionMap := termDefinition.(map[string]interface{})
		id := termDefinitionMap["@id"].(string)
		if id == "" {
			continue
		}
		if strings.HasPrefix(term, "@") || strings.HasPrefix(id, "@") {
			continue
		}
		if !onlyCommonPrefixes || strings.HasSuffix(id, "/") || strings.HasSuffix(id, "#") {
			prefixes[term] = id
		}
	}

	return prefixes
}

// GetInverse generates an inverse context for use in the compaction algorithm,
// if not already generated for the given active context.
// See http://www.w3.org/TR/json-ld-api/#inverse-context-creation for further details.
func (c *Context) GetInverse() map[string]interface{} {
	if c.inverse != nil {
		return c.inverse
	}
	c.inverse = make(map[string]interface{})

	defaultLanguage := "@none"
	if langVal, hasLang := c.values["@language"]; hasLang {
		defaultLanguage = langVal.(string)
	}

	// create term selections for each mapping in the context, ordered by
	// shortest and then lexicographically least
	terms := GetKeys(c.termDefinitions)
	sort.Sort(ShortestLeast(terms))

	for _, term := range terms {
		definitionVal := c.termDefinitions[term]
		if definitionVal == nil {
			continue
		}
		definition := definitionVal.(map[string]interface{})

		containerJoin := containerJoinKey(definition)
		iri := definition["@id"].(string)

		containerMap, present := c.inverse[iri].(map[string]interface{})
		if !present {
			containerMap = make(map[string]interface{})
			c.inverse[iri] = containerMap
		}

		typeLanguageMap, present := containerMap[containerJoin].(map[string]interface{})
		if !present {
			typeLanguageMap = map[string]interface{}{
				"@language": make(map[string]interface{}),
				"@type":     make(map[string]interface{}),
				"@any":      map[string]interface{}{"@none": term},
			}
			containerMap[containerJoin] = typeLanguageMap
		}

		populateInverseEntry(c.values, typeLanguageMap, definition, term, defaultLanguage)
	}

	return c.inverse
}

// containerJoinKey computes the inverse-context key for a term's
// @container value: its component keywords sorted and concatenated, or
// "@none" for a term with no @container at all.
func containerJoinKey(definition map[string]interface{}) string {
	containerVal, present := definition["@container"]
	if !present {
		return "@none"
	}
	container := containerVal.([]interface{})
	strList := make([]string, 0, len(container))
	for _, v := range container {
		strList = append(strList, v.(string))
	}
	sort.Strings(strList)
	return strings.Join(strList, "")
}

// populateInverseEntry records term as the preferred choice, within
// typeLanguageMap, for whichever of @reverse/@type/@language dimension
// its definition is most specific about - the first term seen for a
// given slot wins, since terms are visited shortest-then-least first
// (except a typed term's @type slot, which the last such term overwrites).
func populateInverseEntry(contextValues map[string]interface{}, typeLanguageMap, definition map[string]interface{},
	term, defaultLanguage string) {

	langVal, hasLang := definition["@language"]
	dirVal, hasDir := definition["@direction"]
	typeVal, hasType := definition["@type"]

	typeMap, _ := typeLanguageMap["@type"].(map[string]interface{})
	languageMap, _ := typeLanguageMap["@language"].(map[string]interface{})

	switch {
	case definition["@reverse"] == true:
		setDefault(typeMap, "@reverse", term)
	case hasType && typeVal == "@none":
		setDefault(typeMap, "@any", term)
		setDefault(languageMap, "@any", term)
		setDefault(typeLanguageMap["@any"].(map[string]interface{}), "@any", term)
	case hasType:
		// last-write-wins here: this slot's guard checks for a literal
		// "@type" entry, which no branch ever writes, so it never blocks.
		typeMap[typeVal.(string)] = term
	case hasLang && hasDir:
		langDir := "@null"
		switch {
		case langVal != nil && dirVal != nil:
			langDir = fmt.Sprintf("%s_%s", langVal.(string), dirVal.(string))
		case langVal != nil:
			langDir = langVal.(string)
		case dirVal != nil:
			langDir = "_" + dirVal.(string)
		}
		setDefault(languageMap, langDir, term)
	case hasLang:
		language := "@null"
		if langVal != nil {
			language = langVal.(string)
		}
		setDefault(languageMap, language, term)
	case hasDir:
		dir := "@none"
		if dirVal != nil {
			dir = "_" + dirVal.(string)
		}
		setDefault(languageMap, dir, term)
	default:
		if defDir, found := contextValues["@direction"]; found {
			langDir := "_" + defDir.(string)
			if hasLang {
				langDir = fmt.Sprintf("%s_%s", langVal.(string), defDir.(string))
			}
			setDefault(languageMap, langDir, term)
			setDefault(languageMap, "@none", term)
			setDefault(typeMap, "@none", term)
		} else {
			setDefault(languageMap, defaultLanguage, term)
			setDefault(languageMap, "@none", term)
			setDefault(typeMap, "@none", term)
		}
	}
}

func setDefault(m map[string]interface{}, key, value string) {
	if _, present := m[key]; !present {
		m[key] = value
	}
}

// SelectTerm picks the preferred compaction term from the inverse context entry.
// See http://www.w3.org/TR/json-ld-api/#term-selection
//
// This algorithm, invoked via the IRI Compaction algorithm, makes use of an
// active context's inverse context to find the term that is best used to
// compact an IRI. Other information about a value associated with the IRI
// is given, including which container mappings and which type mapping or
// language mapping would be best used to express the value.
func (c *Context) SelectTerm(iri string, containers []string, typeLanguage string, preferredValues []string) string {
	inv := c.GetInverse()
	containerMap := inv[iri].(map[string]interface{})
	for _, container := range containers {
		containerVal, hasContainer := containerMap[container]
		if !hasContainer {
			continue
		}
		typeLanguageMap := containerVal.(map[string]interface{})
		valueMap := typeLanguageMap[typeLanguage].(map[string]interface{})

		for _, item := range preferredValues {
			itemVal, containsItem := valueMap[item]
			if !containsItem {
				continue
			}
			return itemVal.(string)
		}
	}
	return ""
}

// GetContainer retrieves container mapping for the given property.
func (c *Context) GetContainer(property string) []interface{} {
	propertyMap, isMap := c.termDefinitions[property].(map[string]interface{})
	if isMap {
		if container, hasContainer := propertyMap["@container"]; hasContainer {
			return container.([]interface{})
		}
	}

	return []interface{}{}
}

// HasContainerMapping reports whether property's @container includes val.
func (c *Context) HasContainerMapping(property string, val string) bool {
	propertyMap, isMap := c.termDefinitions[property].(map[string]interface{})
	if isMap {
		if container, hasContainer := propertyMap["@container"]; hasContainer {
			for _, entry := range container.([]interface{}) {
				if entry == val {
					return true
				}
			}
		}
	}

	return false
}

// IsReverseProperty returns true if the given property is a reverse property
func (c *Context) IsReverseProperty(property string) bool {
	td := c.GetTermDefinition(property)
	if td == nil {
		return false
	}
	reverse, containsReverse := td["@reverse"]
	return containsReverse && reverse.(bool)
}

// GetTypeMapping returns type mapping for the given property
func (c *Context) GetTypeMapping(property string) string {
	rval := ""
	if defaultLang, hasDefault := c.values["@type"]; hasDefault {
		rval = defaultLang.(string)
	}

	td := c.GetTermDefinition(property)
	if td != nil {
		if val, contains := td["@type"]; contains && val != nil {
			return val.(string)
		}
	}

	return rval
}

// GetLanguageMapping returns language mapping for the given property
func (c *Context) GetLanguageMapping(property string) interface{} {
	td := c.GetTermDefinition(property)
	if td != nil {
		if val, found := td["@language"]; found {
			return val
		}
	}

	if defaultLang, hasDefault := c.values["@language"]; hasDefault {
		return defaultLang
	}

	return nil
}

// GetDirectionMapping returns direction mapping for the given property
func (c *Context) GetDirectionMapping(property string) interface{} {
	td := c.GetTermDefinition(property)
	if td != nil {
		if val, found := td["@direction"]; found {
			return val
		}
	}

	if defaultDir, hasDefault := c.values["@direction"]; hasDefault {
		return defaultDir
	}

	return nil
}

// GetTermDefinition returns a term definition for the given key
func (c *Context) GetTermDefinition(key string) map[string]interface{} {
	value, _ := c.termDefinitions[key].(map[string]interface{})
	return value
}

// ExpandValue expands the given value by using the coercion and keyword rules in the context.
func (c *Context) ExpandValue(activeProperty string, value interface{}) (interface{}, error) {
	rval := make(map[string]interface{})
	td := c.GetTermDefinition(activeProperty)

	// If the active property has a type mapping in active context that is @id, return a new JSON object
	// containing a single key-value pair where the key is @id and the value is the result of using
	// the IRI Expansion algorithm, passing active context, value, and true for document relative.
	if td != nil && td["@type"] == "@id" {
		if strVal, isString := value.(string); isString {
			var err error
			rval["@id"], err = c.ExpandIri(strVal, true, false, nil, nil)
			if err != nil {
				return nil, err
			}
		} else {
			rval["@value"] = value
		}
		return rval, nil
	}
	// If active property has a type mapping in active context that is @vocab, return a new JSON object
	// containing a single key-value pair where the key is @id and the value is the result of using
	// the IRI Expansion algorithm, passing active context, value, true for vocab, and true for document relative.
	if td != nil && td["@type"] == "@vocab" {
		if strVal, isString := value.(string); isString {
			var err error
			rval["@id"], err = c.ExpandIri(strVal, true, true, nil, nil)
			if err != nil {
				return nil, err
			}
		} else {
			rval["@value"] = value
		}
		return rval, nil
	}

	rval["@value"] = value
	if typeVal, containsType := td["@type"]; td != nil && containsType && typeVal != "@id" && typeVal != "@vocab" &&
		typeVal != "@none" {
		rval["@type"] = typeVal
	} else if _, isString := value.(string); isString {
		langVal, containsLang := td["@language"]
		if containsLang {
			if langVal != nil {
				rval["@language"] = langVal.(string)
			}
		} else if defaultLangVal, hasDefaultLang := c.values["@language"]; hasDefaultLang {
			rval["@language"] = defaultLangVal
		}
		dirVal, containsDir := td["@direction"]
		if containsDir {
			if dirVal != nil {
				rval["@direction"] = dirVal.(string)
			}
		} else if dirVal := c.values["@direction"]; dirVal != nil {
			rval["@direction"] = dirVal
		}
	}
	return rval, nil
}

// Serialize transforms the context back into JSON form.
func (c *Context) Serialize() (map[string]interface{}, error) {
	ctx := make(map[string]interface{})

	baseVal, hasBase := c.values["@base"]
	if hasBase && baseVal != c.options.Base {
		ctx["@base"] = baseVal
	}
	if versionVal, hasVersion := c.values["@version"]; hasVersion {
		ctx["@version"] = versionVal
	}
	if langVal, hasLang := c.values["@language"]; hasLang {
		ctx["@language"] = langVal
	}
	if dirVal, hasDir := c.values["@direction"]; hasDir {
		ctx["@direction"] = dirVal
	}
	if vocabVal, hasVocab := c.values["@vocab"]; hasVocab {
		ctx["@vocab"] = vocabVal
	}
	for term, definitionVal := range c.termDefinitions {
		// Note: definitionVal may be nil for terms which are set to be ignored
		// (see the definition for null value in JSON-LD spec)
		definition, _ := definitionVal.(map[string]interface{})
		langVal, hasLang := definition["@language"]
		containerVal, hasContainer := definition["@container"]
		typeMappingVal, hasType := definition["@type"]
		reverseVal, hasReverse := definition["@reverse"]
		if !hasLang && !hasContainer && !hasType && (!hasReverse || reverseVal == false) {
			var cid interface{}
			id, hasID := definition["@id"]
			if !hasID {
				cid = nil
				ctx[term] = cid
			} else if IsKeyword(id) {
				ctx[term] = id
			} else {
				var err error
				cid, err = c.CompactIri(id.(string), nil, false, false)
				if err != nil {
					return nil, err
				}
				if term == cid {
					ctx[term] = id
				} else {
					ctx[term] = cid
				}
				ctx[term] = cid
			}
		} else {
			defn := make(map[string]interface{})
			cid, err := c.CompactIri(definition["@id"].(string), nil, false, false)
			if err != nil {
				return nil, err
			}
			reverseProperty := reverseVal.(bool)
			if !(term == cid && !reverseProperty) {
				if reverseProperty {
					defn["@reverse"] = cid
				} else {
					defn["@id"] = cid
				}
			}
			if hasType {
				typeMapping := typeMappingVal.(string)
				if IsKeyword(typeMapping) {
					defn["@type"] = typeMapping
				} else {
					defn["@type"], err = c.CompactIri(typeMapping, nil, true, false)
					if err != nil {
						return nil, err
					}
				}
			}
			if hasContainer {
				if av, isArray := containerVal.([]string); isArray && len(av) == 1 {
					defn["@container"] = av[0]
				} else {
					defn["@container"] = containerVal
				}
			}
			if hasLang {
				if langVal == false {
					defn["@language"] = nil
				} else {
					defn["@language"] = langVal
				}
			}
			ctx[term] = defn
		}
	}

	rval := make(map[string]interface{})
	if len(ctx) != 0 {
		rval["@context"] = ctx
	}
	return rval, nil
}
