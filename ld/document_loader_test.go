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

package ld_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/deepend-io/jsonld-rdf/ld"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.jsonld")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestDefaultContextLoader_Load(t *testing.T) {
	path := writeFixture(t, `{"@type": "t1"}`)

	dl := NewDefaultContextLoader(nil)
	loaded, err := dl.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "t1", loaded.Document.(map[string]interface{})["@type"])
}

func TestParseLinkHeader(t *testing.T) {
	rval := ParseLinkHeader(`<remote-doc/0010-context.jsonld>; rel="http://www.w3.org/ns/json-ld#context"`)

	assert.Equal(
		t,
		map[string][]map[string]string{
			"http://www.w3.org/ns/json-ld#context": {{
				"target": "remote-doc/0010-context.jsonld",
				"rel":    "http://www.w3.org/ns/json-ld#context",
			}},
		},
		rval,
	)
}

func TestCachingContextLoader_PreloadBypassesNext(t *testing.T) {
	cl := NewCachingContextLoader(NewDefaultContextLoader(nil))
	cl.Preload("http://www.example.com/person", map[string]interface{}{"@type": "t1"})

	loaded, err := cl.Load("http://www.example.com/person")
	require.NoError(t, err)
	assert.Equal(t, "t1", loaded.Document.(map[string]interface{})["@type"])
}

func TestCachingContextLoader_CachesLocalFilesForever(t *testing.T) {
	path := writeFixture(t, `{"@type": "t1"}`)

	cl := NewCachingContextLoader(NewDefaultContextLoader(nil))
	first, err := cl.Load(path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	second, err := cl.Load(path)
	require.NoError(t, err)
	assert.Equal(t, first.Document, second.Document)
}
