package rule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"minQuantity"`
	NCM         string `json:"ncm"`
}

func TestEngineValidate(t *testing.T) {
	eng, err := NewEngine([]Rule{
		{
			Name:       "min-stock",
			Expression: "int(self.minQuantity) <= int(self.quantity)",
			Message:    "estoque abaixo do mínimo",
		},
		{
			Name:       "ncm-shape",
			Expression: "self.ncm.matches('^[0-9]{8}$')",
			Message:    "NCM deve ter 8 dígitos",
		},
	})
	require.NoError(t, err)

	ctx := context.Background()

	assert.NoError(t, eng.Validate(ctx, payload{Quantity: 50, MinQuantity: 10, NCM: "19059090"}))

	err = eng.Validate(ctx, payload{Quantity: 5, MinQuantity: 10, NCM: "19059090"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "estoque abaixo do mínimo")

	err = eng.Validate(ctx, payload{Quantity: 50, MinQuantity: 10, NCM: "1905.90.90"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NCM")
}

func TestEngineRejectsBadRules(t *testing.T) {
	_, err := NewEngine([]Rule{{Name: "broken", Expression: "self.quantity +"}})
	assert.Error(t, err, "syntax error")

	_, err = NewEngine([]Rule{{Name: "non-bool", Expression: "self.quantity"}})
	assert.Error(t, err, "non-boolean output")
}

func TestEmptyEngineAcceptsEverything(t *testing.T) {
	eng, err := NewEngine(nil)
	require.NoError(t, err)
	assert.NoError(t, eng.Validate(context.Background(), payload{}))
}
