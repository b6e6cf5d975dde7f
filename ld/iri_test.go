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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIRI(t *testing.T) {
	parsed := parseIRI("http://www.example.com")

	assert.Equal(t, "http:", parsed.Protocol)
	assert.Equal(t, "www.example.com", parsed.Host)
}

func TestParseIRI_NetworkPathReference(t *testing.T) {
	parsed := parseIRI("//example.com/a/b")

	assert.Equal(t, "example.com", parsed.Authority)
	assert.Equal(t, "/a/b", parsed.NormalizedPath)
}

func TestRemoveBase(t *testing.T) {
	result := RemoveBase(
		"http://json-ld.org/test-suite/tests/compact-0045-in.jsonld",
		"http://json-ld.org/test-suite/parent-node",
	)
	assert.Equal(t, "../parent-node", result)

	result = RemoveBase(
		"http://example.com/",
		"http://example.com/relative-url",
	)
	assert.Equal(t, "relative-url", result)

	result = RemoveBase(
		"http://json-ld.org/test-suite/tests/compact-0066-in.jsonld",
		"http://json-ld.org/test-suite/",
	)
	assert.Equal(t, "../", result)

	result = RemoveBase(
		"http://example.com/api/things/1",
		"http://example.com/api/things/1",
	)
	assert.Equal(t, "1", result)
}

func TestRemoveBase_EmptyBaseReturnsIRIUnchanged(t *testing.T) {
	assert.Equal(t, "http://example.com/x", RemoveBase("", "http://example.com/x"))
}

func TestRemoveBase_UnrelatedRootReturnsIRIUnchanged(t *testing.T) {
	result := RemoveBase("http://example.com/", "http://other.org/thing")
	assert.Equal(t, "http://other.org/thing", result)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "http://example.com/b", Resolve("http://example.com/a", "b"))
	assert.Equal(t, "path/only", Resolve("", "path/only"))
	assert.Equal(t, "http://example.com/a", Resolve("http://example.com/a", ""))
	assert.Equal(t, "http://example.com/a?q=1", Resolve("http://example.com/a#frag", "?q=1"))
}

func TestRemoveDotSegments(t *testing.T) {
	assert.Equal(t, "/a/c", removeDotSegments("/a/b/../c", true))
	assert.Equal(t, "/a/b/", removeDotSegments("/a/b/", true))
	assert.Equal(t, "a/b", removeDotSegments("a//b", true))
	assert.Equal(t, "..", removeDotSegments("..", false))
}
