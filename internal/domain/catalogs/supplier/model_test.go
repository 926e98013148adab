package supplier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCNPJ(t *testing.T) {
	assert.Equal(t, "11222333000181", NormalizeCNPJ("11.222.333/0001-81"))
	assert.Equal(t, "11222333000181", NormalizeCNPJ("11222333000181"))
	assert.Equal(t, "", NormalizeCNPJ("sem cnpj"))
}

func TestValidateCNPJ(t *testing.T) {
	tests := []struct {
		name    string
		cnpj    string
		wantErr bool
	}{
		{"valid formatted", "11.222.333/0001-81", false},
		{"valid bare digits", "00000000000191", false},
		{"wrong check digit", "11222333000180", true},
		{"wrong first check digit", "11222333000171", true},
		{"repeated digits", "11111111111111", true},
		{"too short", "1122233300018", true},
		{"too long", "112223330001811", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCNPJ(tt.cnpj)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSupplierValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid supplier", func(t *testing.T) {
		sp := New("FN-001", "Fazenda Boa Vista LTDA", "11.222.333/0001-81")
		sp.Address = "Rodovia BR-101, km 42, Itajaí - SC"
		sp.FDA = "12345678901"
		require.NoError(t, sp.Validate(ctx))
		assert.Equal(t, "11222333000181", sp.CNPJ)
	})

	t.Run("invalid cnpj rejected", func(t *testing.T) {
		sp := New("FN-002", "Fornecedor Inválido", "11222333000180")
		assert.Error(t, sp.Validate(ctx))
	})

	t.Run("empty cnpj allowed", func(t *testing.T) {
		sp := New("FN-003", "Fornecedor Sem CNPJ", "")
		assert.NoError(t, sp.Validate(ctx))
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		sp := New("FN-004", "Fazenda Boa Vista LTDA", "00000000000191")
		bad := "not-an-email"
		sp.Email = &bad
		assert.Error(t, sp.Validate(ctx))
	})
}
