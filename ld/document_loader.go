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
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/pquerna/cachecontrol"
)

const (
	// An HTTP Accept header that prefers JSON-LD.
	acceptHeader = "application/ld+json, application/json;q=0.9, application/javascript;q=0.5, text/javascript;q=0.5, text/plain;q=0.2, */*;q=0.1"

	ApplicationJSONLDType = "application/ld+json"

	// JSON-LD link header rel, per the external-interfaces contract.
	linkHeaderRel = "http://www.w3.org/ns/json-ld#context"
)

// LoadedContext is a context document retrieved by a ContextLoader: its
// parsed JSON, the URL it was ultimately fetched from (after redirects),
// and an out-of-band context URL discovered via a Link header, if any.
type LoadedContext struct {
	DocumentURL string
	Document    interface{}
	ContextURL  string
}

// ContextLoader resolves a context IRI to its JSON document. The context
// engine (see Context.Parse) calls Load once per distinct remote IRI per
// top-level call and never assumes the result is cached by the caller.
type ContextLoader interface {
	Load(iri string) (*LoadedContext, error)
}

// DefaultContextLoader retrieves contexts over HTTP(S) or from the local
// filesystem for file:// and bare paths.
type DefaultContextLoader struct {
	httpClient *http.Client
}

// NewDefaultContextLoader creates a DefaultContextLoader. A nil httpClient
// selects http.DefaultClient.
func NewDefaultContextLoader(httpClient *http.Client) *DefaultContextLoader {
	rval := &DefaultContextLoader{httpClient: httpClient}
	if rval.httpClient == nil {
		rval.httpClient = http.DefaultClient
	}
	return rval
}

// DocumentFromReader decodes a JSON document streamed from r.
func DocumentFromReader(r io.Reader) (interface{}, error) {
	var document interface{}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&document); err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, err)
	}
	return document, nil
}

// Load fetches and parses the context document at iri.
func (dl *DefaultContextLoader) Load(iri string) (*LoadedContext, error) {
	parsedURL, err := url.Parse(iri)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, fmt.Sprintf("error parsing URL: %s", iri))
	}

	loaded := &LoadedContext{}

	protocol := parsedURL.Scheme
	if protocol != "http" && protocol != "https" {
		loaded.DocumentURL = iri
		path := iri
		if protocol == "file" {
			path = parsedURL.Path
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, NewJsonLdError(LoadingDocumentFailed, err)
		}
		defer file.Close()

		loaded.Document, err = DocumentFromReader(file)
		if err != nil {
			return nil, NewJsonLdError(LoadingDocumentFailed, err)
		}
		return loaded, nil
	}

	req, err := http.NewRequest("GET", iri, http.NoBody)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, err)
	}
	req.Header.Add("Accept", acceptHeader)

	res, err := dl.httpClient.Do(req)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, NewJsonLdError(LoadingDocumentFailed,
			fmt.Sprintf("bad response status code: %d", res.StatusCode))
	}

	loaded.DocumentURL = res.Request.URL.String()

	if target, contextURL, err := discoverContextLink(res, iri); err != nil {
		return nil, err
	} else if target != "" {
		return dl.Load(target)
	} else if contextURL != "" {
		loaded.ContextURL = contextURL
	}

	loaded.Document, err = DocumentFromReader(res.Body)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, err)
	}
	return loaded, nil
}

// discoverContextLink inspects the Link header for an out-of-band context
// (rel=context) or an alternate application/ld+json representation to
// follow instead. A non-empty first return value means "follow this URL
// instead"; a non-empty contextURL is the context link's target for the
// caller to record.
func discoverContextLink(res *http.Response, originalURL string) (redirectTo, contextURL string, err error) {
	linkHeader := res.Header.Get("Link")
	if linkHeader == "" {
		return "", "", nil
	}

	contentType := res.Header.Get("Content-Type")
	parsed := ParseLinkHeader(linkHeader)

	contextLink := parsed[linkHeaderRel]
	if contextLink != nil && contentType != ApplicationJSONLDType &&
		(contentType == "application/json" || rApplicationJSON.MatchString(contentType)) {
		if len(contextLink) > 1 {
			return "", "", NewJsonLdError(MultipleContextLinkHeaders, nil)
		} else if len(contextLink) == 1 {
			contextURL = contextLink[0]["target"]
		}
	}

	alternateLink := parsed["alternate"]
	if len(alternateLink) > 0 &&
		alternateLink[0]["type"] == ApplicationJSONLDType &&
		!rApplicationJSON.MatchString(contentType) {
		return Resolve(originalURL, alternateLink[0]["target"]), "", nil
	}

	return "", contextURL, nil
}

var rSplitOnComma = regexp.MustCompile("(?:<[^>]*?>|\"[^\"]*?\"|[^,])+")
var rLinkHeader = regexp.MustCompile(`\s*<([^>]*?)>\s*(?:;\s*(.*))?`)
var rApplicationJSON = regexp.MustCompile(`^application/(\w*\+)?json$`)
var rParams = regexp.MustCompile("(.*?)=(?:(?:\"([^\"]*?)\")|([^\"]*?))\\s*(?:(?:;\\s*)|$)")

// ParseLinkHeader parses an RFC 8288 Link header. Results are keyed by rel.
//
//	Link: <http://json-ld.org/contexts/person.jsonld>; \
//	  rel="http://www.w3.org/ns/json-ld#context"; type="application/ld+json"
func ParseLinkHeader(header string) map[string][]map[string]string {
	rval := make(map[string][]map[string]string)

	entries := rSplitOnComma.FindAllString(header, -1)
	if len(entries) == 0 {
		return rval
	}

	for _, entry := range entries {
		if !rLinkHeader.MatchString(entry) {
			continue
		}
		match := rLinkHeader.FindStringSubmatch(entry)

		result := map[string]string{"target": match[1]}
		matches := rParams.FindAllStringSubmatch(match[2], -1)
		for _, m := range matches {
			if m[2] == "" {
				result[m[1]] = m[3]
			} else {
				result[m[1]] = m[2]
			}
		}
		rel := result["rel"]
		rval[rel] = append(rval[rel], result)
	}
	return rval
}

type cachedContext struct {
	loaded       *LoadedContext
	expireTime   time.Time
	neverExpires bool
}

// CachingContextLoader wraps another ContextLoader and honors RFC 7234
// caching semantics on the responses it sees, so a context imported by
// many documents in a batch is fetched once per its HTTP-stated lifetime.
// Local files never expire once loaded. Preload lets tests seed known
// contexts without touching the network.
type CachingContextLoader struct {
	next  ContextLoader
	cache map[string]*cachedContext
}

// NewCachingContextLoader wraps next with an RFC 7234-aware cache.
func NewCachingContextLoader(next ContextLoader) *CachingContextLoader {
	return &CachingContextLoader{
		next:  next,
		cache: make(map[string]*cachedContext),
	}
}

// Preload seeds the cache with doc for iri, bypassing next entirely. Used
// by tests to pin down context resolution without a network dependency.
func (l *CachingContextLoader) Preload(iri string, doc interface{}) {
	l.cache[iri] = &cachedContext{
		loaded:       &LoadedContext{DocumentURL: iri, Document: doc},
		neverExpires: true,
	}
}

// Load returns the cached context for iri if still fresh, otherwise
// delegates to next and, when the response permits it, caches the result.
func (l *CachingContextLoader) Load(iri string) (*LoadedContext, error) {
	now := time.Now()
	if entry, ok := l.cache[iri]; ok && (entry.neverExpires || entry.expireTime.After(now)) {
		return entry.loaded, nil
	}

	httpLoader, isHTTP := l.next.(*DefaultContextLoader)
	if !isHTTP {
		loaded, err := l.next.Load(iri)
		if err != nil {
			return nil, err
		}
		l.cache[iri] = &cachedContext{loaded: loaded, neverExpires: true}
		return loaded, nil
	}
	return l.loadHTTP(httpLoader, iri)
}

func (l *CachingContextLoader) loadHTTP(httpLoader *DefaultContextLoader, iri string) (*LoadedContext, error) {
	parsedURL, err := url.Parse(iri)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, fmt.Sprintf("error parsing URL: %s", iri))
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		loaded, err := httpLoader.Load(iri)
		if err != nil {
			return nil, err
		}
		l.cache[iri] = &cachedContext{loaded: loaded, neverExpires: true}
		return loaded, nil
	}

	req, err := http.NewRequest("GET", iri, http.NoBody)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, err)
	}
	req.Header.Add("Accept", acceptHeader)

	res, err := httpLoader.httpClient.Do(req)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, NewJsonLdError(LoadingDocumentFailed,
			fmt.Sprintf("bad response status code: %d", res.StatusCode))
	}

	loaded := &LoadedContext{DocumentURL: res.Request.URL.String()}

	redirectTo, contextURL, err := discoverContextLink(res, iri)
	if err != nil {
		return nil, err
	}
	if redirectTo != "" {
		return l.Load(redirectTo)
	}
	if contextURL != "" {
		loaded.ContextURL = contextURL
	}

	reasons, expireTime, ccErr := cachecontrol.CachableResponse(req, res, cachecontrol.Options{})
	shouldCache := ccErr == nil && len(reasons) == 0

	loaded.Document, err = DocumentFromReader(res.Body)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, err)
	}

	if shouldCache {
		l.cache[iri] = &cachedContext{loaded: loaded, expireTime: expireTime}
	}
	return loaded, nil
}
