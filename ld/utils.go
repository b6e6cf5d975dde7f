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
	"sort"
	"strings"
)

// IsKeyword reports whether key is one of the reserved JSON-LD keywords.
func IsKeyword(key interface{}) bool {
	s, isString := key.(string)
	if !isString {
		return false
	}
	switch s {
	case "@base", "@container", "@context", "@default", "@direction",
		"@embed", "@explicit", "@json", "@id", "@included",
		"@index", "@first", "@graph", "@import", "@language",
		"@list", "@nest", "@none", "@omitDefault", "@prefix",
		"@preserve", "@propagate", "@protected", "@requireAll",
		"@reverse", "@set", "@type", "@value", "@version",
		"@vocab":
		return true
	default:
		return false
	}
}

// DeepCompare reports whether v1 and v2 are structurally equal. Maps
// compare key-by-key regardless of insertion order; lists compare
// element-by-element when listOrderMatters, or as multisets (each
// element matched at most once) otherwise - term-definition equality
// for the protected-term-redefinition check needs the multiset form,
// since JSON object key order isn't significant but the values stored
// under @container commonly are small unordered sets themselves.
func DeepCompare(v1, v2 interface{}, listOrderMatters bool) bool {
	if v1 == nil || v2 == nil {
		return v1 == nil && v2 == nil
	}

	switch t1 := v1.(type) {
	case map[string]interface{}:
		t2, ok := v2.(map[string]interface{})
		return ok && deepCompareMaps(t1, t2, listOrderMatters)
	case []interface{}:
		t2, ok := v2.([]interface{})
		return ok && deepCompareLists(t1, t2, listOrderMatters)
	default:
		if v1 == v2 {
			return true
		}
		// json.Decoder.UseNumber() produces json.Number values that
		// won't compare equal to a plain float64/int even when they
		// represent the same number; fall back to a textual compare.
		return normalizeValue(v1) == normalizeValue(v2)
	}
}

func deepCompareMaps(m1, m2 map[string]interface{}, listOrderMatters bool) bool {
	if len(m1) != len(m2) {
		return false
	}
	for key, val1 := range m1 {
		val2, present := m2[key]
		if !present || !DeepCompare(val1, val2, listOrderMatters) {
			return false
		}
	}
	return true
}

func deepCompareLists(l1, l2 []interface{}, listOrderMatters bool) bool {
	if len(l1) != len(l2) {
		return false
	}
	if listOrderMatters {
		for i, v := range l1 {
			if !DeepCompare(v, l2[i], true) {
				return false
			}
		}
		return true
	}

	matched := make([]bool, len(l2))
	for _, v := range l1 {
		found := false
		for j, candidate := range l2 {
			if !matched[j] && DeepCompare(v, candidate, false) {
				matched[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func normalizeValue(v interface{}) string {
	if f, isFloat := v.(float64); isFloat {
		return fmt.Sprintf("%f", f)
	}
	if n, isNumber := v.(json.Number); isNumber {
		if f, err := n.Float64(); err == nil {
			return fmt.Sprintf("%f", f)
		}
	}
	return fmt.Sprintf("%s", v)
}

// IsAbsoluteIri reports whether value is an absolute IRI or a blank
// node identifier.
func IsAbsoluteIri(value string) bool {
	if strings.HasPrefix(value, "_:") {
		return true
	}
	u, err := url.Parse(value)
	return err == nil && u.IsAbs()
}

// IsRelativeIri reports whether value is neither a keyword nor an
// absolute IRI.
func IsRelativeIri(value string) bool {
	return !IsKeyword(value) && !IsAbsoluteIri(value)
}

// IsList reports whether v is a @list-valued object.
func IsList(v interface{}) bool {
	vMap, isMap := v.(map[string]interface{})
	_, hasList := vMap["@list"]
	return isMap && hasList
}

// IsGraph reports whether v is a graph object: a map whose only keys,
// besides @graph itself, are @id and/or @index.
func IsGraph(v interface{}) bool {
	vMap, isMap := v.(map[string]interface{})
	if !isMap {
		return false
	}
	if _, hasGraph := vMap["@graph"]; !hasGraph {
		return false
	}
	for k := range vMap {
		if k != "@id" && k != "@index" && k != "@graph" {
			return false
		}
	}
	return true
}

// IsValue reports whether v is a @value-valued object.
func IsValue(v interface{}) bool {
	vMap, isMap := v.(map[string]interface{})
	_, hasValue := vMap["@value"]
	return isMap && hasValue
}

// Arrayify returns v unchanged if it is already a []interface{},
// otherwise wraps it in a single-element one.
func Arrayify(v interface{}) []interface{} {
	if av, isArray := v.([]interface{}); isArray {
		return av
	}
	return []interface{}{v}
}

// CompareShortestLeast orders a before b by length first, then
// lexicographically - the term-selection tie-break the JSON-LD API
// spec calls "shortest, then least" when picking a compact IRI or
// term out of several otherwise-equal candidates.
func CompareShortestLeast(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ShortestLeast sorts strings per CompareShortestLeast.
type ShortestLeast []string

func (s ShortestLeast) Len() int           { return len(s) }
func (s ShortestLeast) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s ShortestLeast) Less(i, j int) bool { return CompareShortestLeast(s[i], s[j]) }

// GetKeys returns the keys of m in unspecified order.
func GetKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}

// GetOrderedKeys returns the keys of m sorted lexicographically.
func GetOrderedKeys(m map[string]interface{}) []string {
	keys := GetKeys(m)
	sort.Strings(keys)
	return keys
}
