package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesScanPreservesDecimalPrecision(t *testing.T) {
	var a Attributes
	require.NoError(t, a.Scan([]byte(`{"bank":"Itaú","credit_limit":12345.6789,"blocked":false}`)))

	assert.Equal(t, "Itaú", a.GetString("bank"))
	assert.True(t, a.GetDecimal("credit_limit").Equal(decimal.RequireFromString("12345.6789")))
	assert.False(t, a.GetBool("blocked"))
	assert.True(t, a.Has("blocked"))
	assert.False(t, a.Has("brand"))
}

func TestAttributesScanNil(t *testing.T) {
	a := Attributes{"k": "v"}
	require.NoError(t, a.Scan(nil))
	assert.Nil(t, a)

	v, err := a.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestAttributesSetAllocates(t *testing.T) {
	var a Attributes
	a.Set("brand", "Camil")
	assert.Equal(t, "Camil", a.GetString("brand"))
}
