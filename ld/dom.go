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
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// DecodeDocument parses raw JSON-LD source into two parallel trees
// describing the same document: a standard Go value (object -> map[string]
// interface{}, number -> json.Number, same shape encoding/json would
// produce) that the context engine and value encoder already operate on,
// and a gjson.Result that preserves the source's object member order.
//
// map[string]interface{} iteration order is undefined, but the node
// walker's container dispatch (@language, @index, @id and @type maps)
// must visit entries in the order they were declared. Rather than
// reshape the whole engine around an ordered map type, the walker reads
// values from the decoded tree and consults the gjson tree, in lockstep,
// only at the points where declaration order is observable.
func DecodeDocument(data []byte) (interface{}, gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, gjson.Result{}, NewJsonLdError(InvalidInput, "invalid JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, gjson.Result{}, NewJsonLdError(InvalidInput, err)
	}

	return value, gjson.ParseBytes(data), nil
}

// orderedKeys returns an object's member names in source declaration
// order. Returns nil if raw does not describe a JSON object.
func orderedKeys(raw gjson.Result) []string {
	if !raw.IsObject() {
		return nil
	}
	keys := make([]string, 0, 4)
	raw.ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	return keys
}

// rawChild returns the gjson.Result for the named member of a JSON
// object, or the zero Result if raw is not an object or has no such
// member.
func rawChild(raw gjson.Result, key string) gjson.Result {
	if !raw.IsObject() {
		return gjson.Result{}
	}
	return raw.Get(gjson.Escape(key))
}

// rawIndex returns the gjson.Result for the i'th element of a JSON
// array, or the zero Result if raw is not an array or is too short.
func rawIndex(raw gjson.Result, i int) gjson.Result {
	if !raw.IsArray() {
		return gjson.Result{}
	}
	var found gjson.Result
	idx := 0
	raw.ForEach(func(_, val gjson.Result) bool {
		if idx == i {
			found = val
			return false
		}
		idx++
		return true
	})
	return found
}
