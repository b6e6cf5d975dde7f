package ld

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stretchr/testify/assert"
)

func TestContext_Parse(t *testing.T) {
	expectedError := errors.New("failed")
	opts := NewOptions("")
	opts.ContextLoader = errorContextLoader{err: expectedError}

	t.Run("ContextLoader can't resolve @context URL", func(t *testing.T) {
		ctx := NewContext(nil, opts)
		_, err := ctx.Parse("http://example.org/foo.ldjson")
		jsonLDError := new(JsonLdError)
		require.ErrorAs(t, err, &jsonLDError)
		assert.Equal(t, LoadingRemoteContextFailed, jsonLDError.Code)
		assert.ErrorIs(t, err, expectedError, "ContextLoader error is not wrapped")
	})
	t.Run("ContextLoader can't resolve @import", func(t *testing.T) {
		ctx := NewContext(nil, opts)
		_, err := ctx.Parse(map[string]interface{}{
			"@import": "http://example.org/foo.ldjson",
		})
		jsonLDError := new(JsonLdError)
		require.ErrorAs(t, err, &jsonLDError)
		assert.Equal(t, LoadingRemoteContextFailed, jsonLDError.Code)
		assert.ErrorIs(t, err, expectedError, "ContextLoader error is not wrapped")
	})
}

type errorContextLoader struct {
	err error
}

func (l errorContextLoader) Load(iri string) (*LoadedContext, error) {
	return nil, l.err
}
