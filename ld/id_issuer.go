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

import "strconv"

// IdentifierIssuer mints blank node identifiers of the form prefixN,
// remembering the mapping so that a second request for the same
// original identifier returns the one already issued. The walker uses
// one issuer per ToRDFFromBytes/ToRDFFromValue call to alias unlabeled or relative subjects,
// and encodeList uses a caller-supplied one to label list cells.
type IdentifierIssuer struct {
	prefix   string
	counter  int
	assigned map[string]string
	order    []string
}

// NewIdentifierIssuer returns an issuer that mints identifiers
// prefix0, prefix1, and so on.
func NewIdentifierIssuer(prefix string) *IdentifierIssuer {
	return &IdentifierIssuer{
		prefix:   prefix,
		assigned: make(map[string]string),
	}
}

// GetId returns the identifier assigned to oldID, minting and
// recording a new one if oldID hasn't been seen before. Passing ""
// always mints a fresh identifier without recording it.
func (ii *IdentifierIssuer) GetId(oldID string) string {
	if oldID != "" {
		if existing, ok := ii.assigned[oldID]; ok {
			return existing
		}
	}

	id := ii.prefix + strconv.Itoa(ii.counter)
	ii.counter++

	if oldID != "" {
		ii.assigned[oldID] = id
		ii.order = append(ii.order, oldID)
	}

	return id
}

// HasId reports whether oldID has already been assigned an identifier.
func (ii *IdentifierIssuer) HasId(oldID string) bool {
	_, ok := ii.assigned[oldID]
	return ok
}

// Clone returns an independent copy of ii: mutating the clone through
// GetId never affects the original's counter or mappings.
func (ii *IdentifierIssuer) Clone() *IdentifierIssuer {
	clone := &IdentifierIssuer{
		prefix:   ii.prefix,
		counter:  ii.counter,
		assigned: make(map[string]string, len(ii.assigned)),
		order:    append([]string(nil), ii.order...),
	}
	for k, v := range ii.assigned {
		clone.assigned[k] = v
	}
	return clone
}
