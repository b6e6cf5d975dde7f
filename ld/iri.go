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

// IRI resolution per RFC 3986 §5: splitting a URL into components,
// removing dot segments, and resolving a relative reference against a
// base. ExpandIri (in context.go) layers compact-IRI and @vocab expansion
// on top of Resolve.

import (
	"net/url"
	"regexp"
	"strings"
)

// splitIRI is a URL broken into the RFC 3986 components RemoveBase and
// Resolve need: Authority and NormalizedPath drive the shared-prefix
// walk in RemoveBase; Protocol and Href identify the root to strip.
type splitIRI struct {
	Href     string
	Protocol string
	Host     string
	Auth     string
	Hostname string
	Path     string
	Query    string
	Hash     string

	// derived, not pulled straight from the regex match
	Pathname       string
	NormalizedPath string
	Authority      string
}

var iriPattern = regexp.MustCompile(`^(?:([^:/?#]+):)?(?://((?:(([^:@]*)(?::([^:@]*))?)?@)?([^:/?#]*)(?::(\d*))?))?((((?:[^?#/]*/)*)([^?#]*))(?:\?([^#]*))?(?:#(.*))?)`)

// parseIRI splits urlStr into its RFC 3986 components. The pattern's
// groups are all optional, so it always matches; a urlStr with no
// recognizable structure just yields a mostly-empty splitIRI.
func parseIRI(urlStr string) *splitIRI {
	u := &splitIRI{Href: urlStr}

	matches := iriPattern.FindStringSubmatch(urlStr)
	if matches == nil {
		return u
	}

	u.Protocol = matches[1]
	u.Host = matches[2]
	u.Auth = matches[3]
	u.Hostname = matches[6]
	path := matches[9]
	u.Query = matches[12]
	u.Hash = matches[13]

	// normalize to node.js API: a host with no path implies "/"
	if u.Host != "" && path == "" {
		path = "/"
	}
	u.Path = path
	u.Pathname = path

	resolveAuthority(u)
	u.NormalizedPath = removeDotSegments(u.Pathname, u.Authority != "")

	if u.Query != "" {
		u.Path += "?" + u.Query
	}
	if u.Protocol != "" {
		u.Protocol += ":"
	}
	if u.Hash != "" {
		u.Hash = "#" + u.Hash
	}

	return u
}

// resolveAuthority fills in u.Authority. For a scheme-less reference that
// starts with "//" but for which the regex captured no Host, it takes the
// authority from the start of u.Pathname and trims it back out of
// u.Pathname; a "//host/path" reference has its host captured in Host.
func resolveAuthority(u *splitIRI) {
	if !strings.Contains(u.Href, ":") && strings.HasPrefix(u.Href, "//") && u.Host == "" {
		u.Pathname = u.Pathname[2:]
		if idx := strings.IndexByte(u.Pathname, '/'); idx == -1 {
			u.Authority = u.Pathname
			u.Pathname = ""
		} else {
			u.Authority = u.Pathname[:idx]
			u.Pathname = u.Pathname[idx:]
		}
		return
	}

	u.Authority = u.Host
	if u.Auth != "" {
		u.Authority = u.Auth + "@" + u.Authority
	}
}

// removeDotSegments applies RFC 3986 §5.2.4 to path. A leading ".."
// only survives in the output when path has no authority to anchor it
// to (an authority-relative path can never climb above its root).
// Internal empty segments collapse (so "a//b" normalizes to "a/b"),
// but a *trailing* empty segment is preserved, since it represents a
// real trailing slash in path.
func removeDotSegments(path string, hasAuthority bool) string {
	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))
	for i, segment := range segments {
		isLast := i == len(segments)-1
		switch {
		case segment == ".", segment == "" && !isLast:
			continue
		case segment == "..":
			switch {
			case hasAuthority, len(out) > 0 && out[len(out)-1] != "..":
				if len(out) > 0 {
					out = out[:len(out)-1]
				}
			default:
				out = append(out, "..")
			}
		default:
			out = append(out, segment)
		}
	}

	rval := strings.Join(out, "/")
	if strings.HasPrefix(path, "/") {
		rval = "/" + rval
	}
	return rval
}

// RemoveBase expresses iri relative to base, as a bare path/query/hash,
// when iri shares base's root; otherwise it returns iri unchanged.
// CompactIri falls back to it once no term or prefix in the active
// context shortens the IRI.
func RemoveBase(base, iri string) string {
	if base == "" {
		return iri
	}

	baseIRI := parseIRI(base)

	root := ""
	if baseIRI.Href != "" {
		root = baseIRI.Protocol + "//" + baseIRI.Authority
	} else if !strings.HasPrefix(iri, "//") {
		// support network-path reference with empty base
		root = "//"
	}

	if strings.Index(iri, root) != 0 {
		return iri
	}

	rel := parseIRI(iri[len(root):])
	return joinRelativeSegments(baseIRI, rel)
}

// joinRelativeSegments walks the shared path prefix of base and rel,
// then emits one "../" per unmatched base segment followed by rel's
// remaining segments, query and fragment.
func joinRelativeSegments(base, rel *splitIRI) string {
	baseSegments := strings.Split(base.NormalizedPath, "/")
	relSegments := strings.Split(rel.NormalizedPath, "/")

	keepLast := 1
	if rel.Hash != "" || rel.Query != "" {
		keepLast = 0
	}

	for len(baseSegments) > 0 && len(relSegments) > keepLast && baseSegments[0] == relSegments[0] {
		baseSegments = baseSegments[1:]
		relSegments = relSegments[1:]
	}

	var b strings.Builder
	if len(baseSegments) > 0 {
		// a trailing segment that isn't itself a directory (base
		// doesn't end in "/") doesn't count towards the climb, nor
		// does a leading empty segment from a base that started at "/"
		if !strings.HasSuffix(base.NormalizedPath, "/") || baseSegments[0] == "" {
			baseSegments = baseSegments[:len(baseSegments)-1]
		}
		for range baseSegments {
			b.WriteString("../")
		}
	}
	if len(relSegments) > 0 {
		b.WriteString(relSegments[0])
		for _, s := range relSegments[1:] {
			b.WriteByte('/')
			b.WriteString(s)
		}
	}

	if rel.Query != "" {
		b.WriteByte('?')
		b.WriteString(rel.Query)
	}
	b.WriteString(rel.Hash)

	if b.Len() == 0 {
		return "./"
	}
	return b.String()
}

// Resolve resolves pathToResolve against baseURI, per RFC 3986 §5.3,
// using net/url for the generic reference-resolution algorithm and
// removeDotSegments to match the rest of this file's dot-segment
// handling (net/url already removes dot segments on its own, but this
// package's test suite targets a Java port that does not discard
// unnecessary ones, so neither does this).
func Resolve(baseURI, pathToResolve string) string {
	if baseURI == "" {
		return pathToResolve
	}
	if strings.TrimSpace(pathToResolve) == "" {
		return baseURI
	}

	base, err := url.Parse(baseURI)
	if err != nil {
		return pathToResolve
	}

	if strings.HasPrefix(pathToResolve, "?") {
		base.Fragment = ""
		base.RawQuery = pathToResolve[1:]
		return base.String()
	}

	ref, _ := url.Parse(pathToResolve)
	resolved := base.ResolveReference(ref)
	if resolved.Path != "" {
		resolved.Path = removeDotSegments(resolved.Path, true)
	}
	return resolved.String()
}
