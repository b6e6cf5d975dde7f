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

import "github.com/tidwall/gjson"

// Transducer converts JSON-LD documents directly into RDF quads, handed
// to a caller-supplied QuadSink as they are produced. It is the
// package's single entry point: there is no intermediate expanded
// document or node map, and nothing is buffered beyond the one node
// currently being walked.
//
// A Transducer is not safe for concurrent use: each ToRDFFromBytes/ToRDFFromValue
// call mints blank node identifiers from a fresh IdentifierIssuer scoped
// to that call and never touches another call's issuer, but
// Options.ContextLoader is shared across calls, and the default
// CachingContextLoader keeps its cache in a plain map with no locking.
// Two goroutines sharing one Transducer (and hence one Options) can race
// on that cache exactly as the teacher's JsonLdApi does when reused
// across calls; give each goroutine its own Transducer (or its own
// ContextLoader) instead.
type Transducer struct {
	opts *Options
}

// NewTransducer creates a Transducer from opts. A nil opts is replaced
// with NewOptions("").
func NewTransducer(opts *Options) *Transducer {
	if opts == nil {
		opts = NewOptions("")
	}
	return &Transducer{opts: opts}
}

// ToRDFFromBytes parses raw JSON-LD source and streams the resulting
// quads to sink.
func (t *Transducer) ToRDFFromBytes(data []byte, sink QuadSink) error {
	doc, raw, err := DecodeDocument(data)
	if err != nil {
		return err
	}
	return t.walk(doc, raw, sink)
}

// ToRDFFromValue streams the quads for an already-decoded JSON-LD
// document (the shapes encoding/json produces: map[string]interface{},
// []interface{}, string, json.Number, bool, nil) to sink. Since no
// source text accompanies it, @language/@index/@id/@type container
// maps are visited in lexicographic rather than declaration order; use
// ToRDFFromBytes when that distinction matters.
func (t *Transducer) ToRDFFromValue(doc interface{}, sink QuadSink) error {
	return t.walk(doc, gjson.Result{}, sink)
}

func (t *Transducer) walk(doc interface{}, raw gjson.Result, sink QuadSink) error {
	baseCtx := NewContext(nil, t.opts)
	if t.opts.ExpandContext != nil {
		parsed, err := baseCtx.Parse(t.opts.ExpandContext)
		if err != nil {
			return err
		}
		baseCtx = parsed
	}

	w := newNodeWalker(t.opts, sink)
	return w.walkDocument(baseCtx, doc, raw)
}
