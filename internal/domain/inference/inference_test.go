package inference

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferPackaging_FromDescription(t *testing.T) {
	tests := []struct {
		name      string
		desc      string
		wantUnits int
		wantValue string
		wantType  string
	}{
		{"box pattern", "Loia-Potato Chips 20X300Gr", 20, "300", "g"},
		{"box pattern lowercase", "Azeite Extra 12x400g", 12, "400", "g"},
		{"box with spaces", "Feijao Preto 30 X 1 KG", 30, "1", "kg"},
		{"box with comma decimal", "Oleo de Coco 6x1,5L", 6, "1.5", "l"},
		{"single unit", "Farinha de Mandioca 500G", 1, "500", "g"},
		{"single unit liters", "Agua de Coco 1L", 1, "1", "l"},
		{"milliliters", "Molho de Pimenta 24X150ML", 24, "150", "ml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferPackaging(tt.desc, nil)
			assert.Equal(t, tt.wantUnits, got.UnitsPerPackage)
			assert.True(t, got.UnitMeasureValue.Equal(decimal.RequireFromString(tt.wantValue)),
				"value: want %s, got %s", tt.wantValue, got.UnitMeasureValue)
			assert.Equal(t, tt.wantType, got.UnitMeasureType)
		})
	}
}

func TestInferPackaging_ExplicitFieldsWin(t *testing.T) {
	explicit := &Packaging{
		UnitsPerPackage:  10,
		UnitMeasureValue: decimal.NewFromInt(250),
		UnitMeasureType:  "g",
	}

	// Description says 20X300 but the stock record already carries a
	// valid triple, so the description is never consulted.
	got := InferPackaging("Chips 20X300Gr", explicit)
	assert.Equal(t, 10, got.UnitsPerPackage)
	assert.True(t, got.UnitMeasureValue.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, "g", got.UnitMeasureType)
}

func TestInferPackaging_ExplicitPieceUnitIgnored(t *testing.T) {
	// "un" is not a weight unit, so the explicit triple is not usable
	// and the description takes over.
	explicit := &Packaging{
		UnitsPerPackage:  5,
		UnitMeasureValue: decimal.NewFromInt(1),
		UnitMeasureType:  "un",
	}

	got := InferPackaging("Biscoito 12X200G", explicit)
	assert.Equal(t, 12, got.UnitsPerPackage)
	assert.Equal(t, "g", got.UnitMeasureType)
}

func TestInferPackaging_GrNormalized(t *testing.T) {
	got := InferPackaging("Doce de Leite 24X350GR", nil)
	assert.Equal(t, "g", got.UnitMeasureType)
}

func TestInferPackaging_NoMatch(t *testing.T) {
	got := InferPackaging("Produto sem embalagem", nil)
	assert.True(t, got.IsZero())

	got = InferPackaging("", nil)
	assert.True(t, got.IsZero())
}

func TestParseQtyUnit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12X400G", "4.8"},
		{"12x400g", "4.8"},
		{"20X300GR", "6"},
		{"6X1KG", "6"},
		{"6X1,5KG", "6"}, // value match stops at the comma, decimals need a dot
		{"24X150ML", "3.6"},
		{"4X5L", "20"},
		{"", "0"},
		{"400G", "0"},
		{"12X", "0"},
		{"X400G", "0"},
		{"12X400", "0"},
		{"abcXdefG", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseQtyUnit(tt.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"want %s, got %s", tt.want, got)
		})
	}
}

func TestQuantityToKilograms(t *testing.T) {
	got := QuantityToKilograms("12X400G", 5)
	require.True(t, got.Equal(decimal.NewFromInt(24)), "got %s", got)

	got = QuantityToKilograms("12X400G", 0)
	assert.True(t, got.IsZero())

	got = QuantityToKilograms("garbage", 5)
	assert.True(t, got.IsZero())
}

func TestParseBrazilianNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"1234,56", 1234.56},
		{"1,234.56", 1234.56},
		{"1234.56", 1234.56},
		{"12", 12},
		{"0,5", 0.5},
		{"-3,25", -3.25},
		{"  42  ", 42},
		{"", 0},
		{"abc", 0},
		{"R$ 10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseBrazilianNumber(tt.in), 1e-9)
		})
	}
}

func TestQtyUnitString(t *testing.T) {
	p := Packaging{UnitsPerPackage: 12, UnitMeasureValue: decimal.NewFromInt(400), UnitMeasureType: "g"}
	assert.Equal(t, "12X400G", p.QtyUnitString())

	p = Packaging{UnitsPerPackage: 1, UnitMeasureValue: decimal.RequireFromString("1.5"), UnitMeasureType: "l"}
	assert.Equal(t, "1X1.5L", p.QtyUnitString())

	assert.Equal(t, "", Packaging{}.QtyUnitString())
}
