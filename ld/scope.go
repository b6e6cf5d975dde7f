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

// scopeFrame tracks a property-scoped context entered by the node walker
// (childContextFor and nodeRecursionContextFor enter one when descending
// into a property whose term definition carries a "@context"; type-scoped
// contexts are applied by applyTypeScopedContexts through Context.parse
// directly). Context.parse already threads an enclosingContext pointer for
// the non-propagating case (see Context.exitToEnclosing); scopeFrame also
// snapshots parent's term definitions so changedTerms can report which
// terms the scope introduced or redefined.
type scopeFrame struct {
	parent *Context

	// entered is the context active for the duration of this scope; it
	// is parent itself when localContext is nil, and a new Context
	// otherwise.
	entered *Context

	// termsBefore is the snapshot of parent's term definitions, by term
	// name, taken before entering. A term present here with a different
	// value in entered.termDefinitions was redefined by this scope; a
	// term absent here but present in entered was newly introduced.
	termsBefore map[string]interface{}
}

// enterScope applies localContext over parent, honoring propagate exactly
// as the context engine's own Parse/parse does: propagate=false pins
// parent as the revert target (Context.enclosingContext) so that once this
// scope's node (and only this node, not its children re-entering their own
// scopes) is done being walked, exitToEnclosing restores parent verbatim.
// A nil or empty localContext is a no-op scope.
func enterScope(parent *Context, localContext interface{}, propagate bool) (*scopeFrame, error) {
	frame := &scopeFrame{parent: parent, termsBefore: snapshotTerms(parent)}

	if localContext == nil {
		frame.entered = parent
		return frame, nil
	}

	entered, err := parent.parse(localContext, nil, false, propagate, false, false)
	if err != nil {
		return nil, err
	}
	frame.entered = entered
	return frame, nil
}

// exitScope returns the context to continue with once the node/property
// this scope was entered for is done: a copy of entered's enclosing
// context when entered carries one (as a non-propagating scope does),
// otherwise parent itself. Nothing in the package calls it.
func (f *scopeFrame) exitScope() *Context {
	if f.entered == f.parent {
		return f.parent
	}
	if f.entered.hasEnclosingContext() {
		return f.entered.exitToEnclosing()
	}
	return f.parent
}

// changedTerms reports which terms in scope differ from the parent scope,
// split into newly introduced vs redefined. Nothing in the package calls
// it; protected-term enforcement happens in createTermDefinition.
func (f *scopeFrame) changedTerms() (added, redefined []string) {
	for term, def := range f.entered.termDefinitions {
		prev, existed := f.termsBefore[term]
		if !existed {
			added = append(added, term)
		} else if !deepEqualTermDef(prev, def) {
			redefined = append(redefined, term)
		}
	}
	return added, redefined
}

func snapshotTerms(ctx *Context) map[string]interface{} {
	snap := make(map[string]interface{}, len(ctx.termDefinitions))
	for k, v := range ctx.termDefinitions {
		snap[k] = v
	}
	return snap
}

func deepEqualTermDef(a, b interface{}) bool {
	return DeepCompare(a, b, true)
}
