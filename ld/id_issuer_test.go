package ld

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierIssuer_GetIdReusesMapping(t *testing.T) {
	issuer := NewIdentifierIssuer("_:b")

	first := issuer.GetId("_:orig")
	assert.Equal(t, "_:b0", first)
	assert.Equal(t, first, issuer.GetId("_:orig"), "a second request for the same original ID must return the same minted ID")
	assert.Equal(t, "_:b1", issuer.GetId("_:other"), "a different original ID gets the next counter value")
}

func TestIdentifierIssuer_GetIdEmptyOldIDAlwaysMintsFresh(t *testing.T) {
	issuer := NewIdentifierIssuer("_:b")

	assert.Equal(t, "_:b0", issuer.GetId(""))
	assert.Equal(t, "_:b1", issuer.GetId(""), "empty old IDs are never remembered, so each call advances the counter")
}

func TestIdentifierIssuer_HasId(t *testing.T) {
	issuer := NewIdentifierIssuer("_:b")

	assert.False(t, issuer.HasId("_:orig"))
	issuer.GetId("_:orig")
	assert.True(t, issuer.HasId("_:orig"))
}

func TestIdentifierIssuer_CloneIsIndependent(t *testing.T) {
	issuer := NewIdentifierIssuer("_:b")
	issuer.GetId("_:orig")

	clone := issuer.Clone()
	assert.True(t, clone.HasId("_:orig"))

	clone.GetId("_:fresh")
	assert.True(t, clone.HasId("_:fresh"))
	assert.False(t, issuer.HasId("_:fresh"), "mutating the clone must not affect the original")
}
