package jcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform_SortsKeysAndFormatsNumbers(t *testing.T) {
	out, err := Transform([]byte(`{"b":1,"a":2.0,"c":[3,1.5e2]}`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"b":1,"c":[3,150]}`, string(out))
}

func TestTransform_EscapesOnlyMandatoryCharacters(t *testing.T) {
	out, err := Transform([]byte(`{"k":"a\nb\tc\"d/eé"}`))
	require.NoError(t, err)
	assert.Equal(t, "{\"k\":\"a\\nb\\tc\\\"d/eé\"}", string(out))
}

func TestTransform_NegativeZeroBecomesZero(t *testing.T) {
	out, err := Transform([]byte(`-0`))
	require.NoError(t, err)
	assert.Equal(t, "0", string(out))
}

func TestTransform_NonASCIIKeyOrderByUTF16CodeUnits(t *testing.T) {
	out, err := Transform([]byte(`{"€":"euro","😀":"emoji","a":"ascii"}`))
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":\"ascii\",\"€\":\"euro\",\"😀\":\"emoji\"}", string(out))
}
