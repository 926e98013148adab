package currency

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func newUSD(rate string) *Currency {
	c := NewCurrency("USD", "Dólar Americano", strptr("USD"), strptr("$"))
	c.Rate = decimal.RequireFromString(rate)
	return c
}

func TestCurrencyValidate(t *testing.T) {
	ctx := context.Background()

	c := newUSD("5.43")
	require.NoError(t, c.Validate(ctx))

	bad := NewCurrency("USD", "Dólar", strptr("usd"), strptr("$"))
	assert.Error(t, bad.Validate(ctx))

	noSymbol := NewCurrency("USD", "Dólar", strptr("USD"), nil)
	assert.Error(t, noSymbol.Validate(ctx))

	negative := newUSD("5.43")
	negative.Rate = decimal.NewFromInt(-1)
	assert.Error(t, negative.Validate(ctx))
}

func TestConversionAtRate(t *testing.T) {
	usd := newUSD("5.00")

	base := usd.ToBase(decimal.NewFromInt(100))
	assert.True(t, base.Equal(decimal.NewFromInt(500)), "got %s", base)

	back := usd.FromBase(base)
	assert.True(t, back.Equal(decimal.NewFromInt(100)), "got %s", back)
}

func TestConversionPassThroughWithoutRate(t *testing.T) {
	usd := NewCurrency("USD", "Dólar Americano", strptr("USD"), strptr("$"))
	amount := decimal.RequireFromString("123.45")

	assert.True(t, usd.ToBase(amount).Equal(amount))
	assert.True(t, usd.FromBase(amount).Equal(amount))
}

func TestConversionPassThroughForBase(t *testing.T) {
	brl := NewCurrency("BRL", "Real Brasileiro", strptr("BRL"), strptr("R$"))
	brl.IsBase = true
	brl.Rate = decimal.NewFromInt(1)
	amount := decimal.RequireFromString("99.90")

	assert.True(t, brl.ToBase(amount).Equal(amount))
	assert.True(t, brl.FromBase(amount).Equal(amount))
}

func TestFormat(t *testing.T) {
	usd := newUSD("5.43")
	assert.Equal(t, "$ 1234.57", usd.Format(decimal.RequireFromString("1234.5678")))
}
