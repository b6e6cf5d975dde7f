//
//  Copyright 2006-2019 WebPKI.org (http://webpki.org).
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      https://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

// Package jcs implements the JSON Canonicalization Scheme (RFC 8785): a
// byte-for-byte deterministic serialization of a JSON value, used by the
// value encoder to derive the lexical form of rdf:JSON literals.
package jcs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Transform parses input as JSON and returns its RFC 8785 canonical form:
// object members sorted by UTF-16 code unit order of their keys, numbers
// formatted per the ES6 ToString algorithm, and strings escaped with the
// minimal JSON escape set.
func Transform(input []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()

	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("jcs: invalid JSON: %w", err)
	}

	var buf bytes.Buffer
	if err := canonicalize(&buf, value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func canonicalize(buf *bytes.Buffer, value interface{}) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case json.Number:
		return canonicalizeNumber(buf, v)
	case string:
		canonicalizeString(buf, v)
	case []interface{}:
		return canonicalizeArray(buf, v)
	case map[string]interface{}:
		return canonicalizeObject(buf, v)
	default:
		return fmt.Errorf("jcs: unsupported value type %T", value)
	}
	return nil
}

func canonicalizeNumber(buf *bytes.Buffer, n json.Number) error {
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("jcs: invalid number %q: %w", n, err)
	}
	formatted, err := NumberToJSON(f)
	if err != nil {
		return fmt.Errorf("jcs: number %q out of JSON range: %w", n, err)
	}
	buf.WriteString(formatted)
	return nil
}

func canonicalizeArray(buf *bytes.Buffer, arr []interface{}) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := canonicalize(buf, elem); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func canonicalizeObject(buf *bytes.Buffer, obj map[string]interface{}) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	// RFC 8785 §3.2.3: sort by UTF-16 code unit value, which coincides
	// with a plain byte-wise comparison of the UTF-8 encoding for the
	// BMP range this codebase deals with (IRIs, terms, literal values).
	sort.Slice(keys, func(i, j int) bool { return utf16Less(keys[i], keys[j]) })

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		canonicalizeString(buf, k)
		buf.WriteByte(':')
		if err := canonicalize(buf, obj[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// utf16Less compares two strings by UTF-16 code unit, which differs from a
// raw UTF-8 byte comparison only for characters outside the Basic
// Multilingual Plane (their surrogate pairs sort before BMP characters
// U+E000-U+FFFF, whereas in UTF-8 they sort after every BMP character).
// Go string comparison matches UTF-16 order for
// every codepoint below U+10000; for supplementary-plane codepoints we
// fall back to comparing their UTF-16 surrogate pairs explicitly.
func utf16Less(a, b string) bool {
	au := utf16Units(a)
	bu := utf16Units(b)
	for i := 0; i < len(au) && i < len(bu); i++ {
		if au[i] != bu[i] {
			return au[i] < bu[i]
		}
	}
	return len(au) < len(bu)
}

func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r > 0xFFFF {
			r -= 0x10000
			units = append(units, uint16(0xD800+(r>>10)), uint16(0xDC00+(r&0x3FF)))
		} else {
			units = append(units, uint16(r))
		}
	}
	return units
}

// canonicalizeString writes s as a JSON string literal using JCS's minimal
// escape set: the mandatory control characters and the two structural
// characters, nothing else. Non-ASCII codepoints are emitted as literal
// UTF-8, never as \u escapes.
func canonicalizeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u`)
				buf.WriteString(fmt.Sprintf("%04x", r))
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
