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
	"io"

	"github.com/charmbracelet/log"
)

const (
	JsonLd_1_0 = "json-ld-1.0" //nolint:stylecheck
	JsonLd_1_1 = "json-ld-1.1" //nolint:stylecheck
)

// Options controls how a Transducer resolves contexts and emits RDF. It
// mirrors the subset of http://www.w3.org/TR/json-ld-api/#the-jsonldoptions-type
// relevant to context processing and expansion-to-RDF; the compaction and
// framing fields of that type have no meaning here and are not carried.
type Options struct {
	// http://www.w3.org/TR/json-ld-api/#widl-JsonLdOptions-base
	Base string
	// http://www.w3.org/TR/json-ld-api/#widl-JsonLdOptions-expandContext
	ExpandContext interface{}
	// http://www.w3.org/TR/json-ld-api/#widl-JsonLdOptions-processingMode
	ProcessingMode string
	// ContextLoader resolves remote context IRIs. See ContextLoader.
	ContextLoader ContextLoader

	// RDF conversion options: http://www.w3.org/TR/json-ld-api/#serialize-rdf-as-json-ld-algorithm
	UseRdfType            bool
	UseNativeTypes        bool
	ProduceGeneralizedRdf bool

	// MaxImportDepth holds a nesting limit for @import and remote
	// contexts. The context engine does not read it: @import and
	// remote-context nesting are not depth-limited by it, and
	// ContextOverflow is never raised.
	MaxImportDepth int

	// Logger is a structured logger carried on the options; no component
	// of this package writes to it. Defaults to a discard logger.
	Logger *log.Logger
}

// defaultMaxImportDepth is the MaxImportDepth NewOptions sets, per the
// reserved constant named in the external interfaces contract.
const defaultMaxImportDepth = 10

// NewOptions creates Options with the given base IRI and sane defaults:
// JSON-LD 1.1 processing, a caching HTTP context loader, and a discard
// logger.
func NewOptions(base string) *Options {
	return &Options{
		Base:           base,
		ProcessingMode: JsonLd_1_1,
		ContextLoader:  NewCachingContextLoader(NewDefaultContextLoader(nil)),
		MaxImportDepth: defaultMaxImportDepth,
		Logger:         log.New(io.Discard),
	}
}

// Copy creates a shallow copy of the Options, safe to mutate independently
// (e.g. to flip ProduceGeneralizedRdf for a single call).
func (opt *Options) Copy() *Options {
	cp := *opt
	return &cp
}
