package ld

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Copy(t *testing.T) {
	base := NewOptions("http://example.com/")
	base.UseRdfType = true
	base.ProduceGeneralizedRdf = true

	cp := base.Copy()
	assert.Equal(t, *base, *cp)

	cp.ProduceGeneralizedRdf = false
	assert.True(t, base.ProduceGeneralizedRdf, "Copy must not alias the original")
}

func TestNewOptions_Defaults(t *testing.T) {
	opts := NewOptions("")
	assert.Equal(t, JsonLd_1_1, opts.ProcessingMode)
	assert.Equal(t, defaultMaxImportDepth, opts.MaxImportDepth)
	assert.NotNil(t, opts.ContextLoader)
	assert.NotNil(t, opts.Logger)
}
