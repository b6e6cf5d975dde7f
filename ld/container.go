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
	"github.com/tidwall/gjson"
)

// containerMapKind identifies which compact container-map shorthand a
// property's value object is using. Only one of these applies to a given
// object literal; @set/@list/@graph modify how the map's entries are
// collected, not which kind of key they carry.
type containerMapKind int

const (
	notContainerMap containerMapKind = iota
	languageMap
	indexMap
	idMap
	typeMap
)

// containerMapKindFor inspects a property's term definition to decide
// whether its object-shaped value should be read as a language, index,
// id or type map. Object syntax always wins over array syntax: a term
// whose value the author wrote as an array rather than an object isn't
// using map shorthand, regardless of its container mapping.
func containerMapKindFor(ctx *Context, property string, value interface{}) containerMapKind {
	if _, isMap := value.(map[string]interface{}); !isMap {
		return notContainerMap
	}
	switch {
	case ctx.HasContainerMapping(property, "@language"):
		return languageMap
	case ctx.HasContainerMapping(property, "@index"):
		return indexMap
	case ctx.HasContainerMapping(property, "@id"):
		return idMap
	case ctx.HasContainerMapping(property, "@type"):
		return typeMap
	default:
		return notContainerMap
	}
}

// expandContainerMap unpacks a language/index/id/type container map into
// the list of node or value items the generic per-item expansion path
// expects, visiting map keys in the order they were declared in the
// source document (required for @index and @id maps to produce
// deterministic @index/@id assignment when a downstream QuadSink cares
// about emission order, and simply good practice for @language maps).
func expandContainerMap(ctx *Context, kind containerMapKind, property string, value map[string]interface{}, raw gjson.Result) ([]interface{}, error) {
	keys := orderedKeys(raw)
	if keys == nil {
		// raw didn't line up with value (e.g. value was synthesised, not
		// parsed from source); fall back to an arbitrary but still
		// deterministic order so behaviour doesn't vary run to run.
		keys = GetOrderedKeys(value)
	}

	var items []interface{}
	for _, key := range keys {
		entry, present := value[key]
		if !present {
			continue
		}
		entryItems := Arrayify(entry)

		switch kind {
		case languageMap:
			for _, item := range entryItems {
				str, isString := item.(string)
				if !isString {
					return nil, NewJsonLdError(InvalidLanguageMapValue, item)
				}
				valueObj := map[string]interface{}{"@value": str}
				if key != "@none" {
					valueObj["@language"] = key
				}
				items = append(items, valueObj)
			}

		case indexMap:
			indexProperty := "@index"
			if td := ctx.GetTermDefinition(property); td != nil {
				if customIndex, ok := td["@index"].(string); ok {
					expanded, err := ctx.ExpandIri(customIndex, false, true, nil, nil)
					if err != nil {
						return nil, err
					}
					indexProperty = expanded
				}
			}
			onGraph := ctx.HasContainerMapping(property, "@graph")
			for _, item := range entryItems {
				node := toNodeObject(item)
				if onGraph {
					// The index names the graph wrapping this entry, not a
					// member of the entry itself.
					wrapper := map[string]interface{}{"@graph": []interface{}{node}}
					if key != "@none" {
						wrapper[indexProperty] = key
					}
					items = append(items, wrapper)
					continue
				}
				if key != "@none" {
					node[indexProperty] = key
				}
				items = append(items, node)
			}

		case idMap:
			onGraph := ctx.HasContainerMapping(property, "@graph")
			for _, item := range entryItems {
				node := toNodeObject(item)
				if onGraph {
					// The key names the graph wrapping this entry (a node
					// with both "@id" and "@graph"), not the entry's own id.
					wrapper := map[string]interface{}{"@graph": []interface{}{node}}
					if key != "@none" {
						expanded, err := ctx.ExpandIri(key, true, false, nil, nil)
						if err != nil {
							return nil, err
						}
						wrapper["@id"] = expanded
					}
					items = append(items, wrapper)
					continue
				}
				if key != "@none" {
					expanded, err := ctx.ExpandIri(key, true, false, nil, nil)
					if err != nil {
						return nil, err
					}
					node["@id"] = expanded
				}
				items = append(items, node)
			}

		case typeMap:
			for _, item := range entryItems {
				node := toNodeObject(item)
				if key != "@none" {
					expanded, err := ctx.ExpandIri(key, false, true, nil, nil)
					if err != nil {
						return nil, err
					}
					types := Arrayify(node["@type"])
					node["@type"] = append([]interface{}{expanded}, types...)
				}
				items = append(items, node)
			}
		}
	}

	return items, nil
}

// toNodeObject normalises a container-map entry (a node object, or a
// bare string naming one) into a mutable map so callers can attach the
// key-derived @index/@id/@type entry.
func toNodeObject(item interface{}) map[string]interface{} {
	switch v := item.(type) {
	case map[string]interface{}:
		clone := make(map[string]interface{}, len(v)+1)
		for k, val := range v {
			clone[k] = val
		}
		return clone
	case string:
		return map[string]interface{}{"@id": v}
	default:
		return map[string]interface{}{}
	}
}
