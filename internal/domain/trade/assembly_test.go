package trade

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/id"
)

func TestAssemble_SavedStateWinsVerbatim(t *testing.T) {
	saved := []SupplierGroup{{
		Info: "FDA#999 EDITED SUPPLIER, SOMEWHERE",
		Items: []LineItem{
			{Code: "42", Qty: 7, Desc: "edited by hand", Price: decimal.NewFromInt(9)},
		},
	}}

	src := Source{
		OperationID:   id.New(),
		OperationType: TypeImport,
		Saved:         saved,
		// Lineage present, but saved state must never be recomputed over.
		NfeData: []NfeExtract{{
			Fornecedor: NfeSupplier{Nome: "Ignored", CNPJ: "11222333000181"},
			Produtos:   []NfeProduct{{Code: "1", Name: "Ignored", Quantity: 1}},
		}},
	}

	doc := Assemble(src, nil, nil)

	before, err := json.Marshal(saved)
	require.NoError(t, err)
	after, err := json.Marshal(doc.Suppliers)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestAssemble_ImportLineage(t *testing.T) {
	supplierID := id.New()
	itemID := id.New()

	suppliers := []SupplierRef{{
		ID:      supplierID,
		Name:    "Loia Alimentos",
		CNPJ:    "11.222.333/0001-81",
		Address: "Rua das Flores 10, Sao Paulo",
		FDA:     "12345",
	}}
	items := []ItemRef{{
		ID:         itemID,
		SupplierID: supplierID,
		Code:       "100",
		Name:       "Loia-Potato Chips 20X300Gr",
		NameEn:     "Potato Chips",
		NCM:        "1905.90.90",
	}}

	src := Source{
		OperationID:   id.New(),
		OperationType: TypeImport,
		NfeData: []NfeExtract{{
			Fornecedor: NfeSupplier{Nome: "LOIA ALIMENTOS LTDA", CNPJ: "11222333000181"},
			NotaFiscal: NfeInvoice{Numero: "1234", PesoLiquido: decimal.NewFromInt(120), PesoBruto: decimal.NewFromInt(125)},
			Produtos: []NfeProduct{{
				Code:      "100",
				Name:      "Loia-Potato Chips 20X300Gr",
				NCM:       "19059090",
				Quantity:  10,
				CostPrice: decimal.RequireFromString("55.555"),
			}},
		}},
	}

	doc := Assemble(src, suppliers, items)

	require.Len(t, doc.Suppliers, 1)
	group := doc.Suppliers[0]
	require.NotNil(t, group.SupplierID)
	assert.Equal(t, supplierID, *group.SupplierID)
	assert.Equal(t, "FDA#12345 LOIA ALIMENTOS, RUA DAS FLORES 10, SAO PAULO", group.Info)

	require.Len(t, group.Items, 1)
	line := group.Items[0]
	assert.Equal(t, itemID, line.ItemID)
	assert.Equal(t, "Potato Chips", line.NameEn)
	assert.True(t, line.Price.Equal(decimal.RequireFromString("55.56")), "price: %s", line.Price)
	assert.Equal(t, "20X300G", line.QtyUnit)
	// 20 * 300g = 6kg per package, 10 packages.
	assert.True(t, line.QtyKg.Equal(decimal.NewFromInt(60)), "qty_kg: %s", line.QtyKg)

	assert.True(t, doc.NfeNetWeight.Equal(decimal.NewFromInt(120)))
	assert.True(t, doc.NfeGrossWeight.Equal(decimal.NewFromInt(125)))
}

func TestAssemble_ImportUnregisteredSupplier(t *testing.T) {
	src := Source{
		OperationID:   id.New(),
		OperationType: TypeImport,
		NfeData: []NfeExtract{{
			Fornecedor: NfeSupplier{Nome: "Fornecedor Novo", CNPJ: "99888777000166"},
			Produtos:   []NfeProduct{{Code: "1", Name: "Azeite 12X500ML", Quantity: 2}},
		}},
	}

	doc := Assemble(src, nil, nil)

	require.Len(t, doc.Suppliers, 1)
	group := doc.Suppliers[0]
	assert.Nil(t, group.SupplierID)
	assert.Contains(t, group.Info, "FORNECEDOR NOVO")
	assert.Contains(t, group.Info, "(Não cadastrado)")

	// Packaging inferred from the description since nothing else matched.
	require.Len(t, group.Items, 1)
	assert.Equal(t, "12X500ML", group.Items[0].QtyUnit)
}

func TestAssemble_ManualFallbackGroupsBySupplier(t *testing.T) {
	supplierA, supplierB := id.New(), id.New()
	suppliers := []SupplierRef{
		{ID: supplierA, Name: "A", CNPJ: "1", Address: "Addr A", FDA: "77"},
		{ID: supplierB, Name: "B", CNPJ: "2", Address: "Addr B"},
	}

	src := Source{
		OperationID:   id.New(),
		OperationType: TypeManual,
		Items: []SourceItem{
			{
				ItemRef:              ItemRef{ID: id.New(), SupplierID: supplierA, Code: "1", Name: "Feijao 30X1KG", UnitsPerPackage: 30},
				OperationQuantity:    60, // base units → 2 packages for manual ops
				OperationPrice:       decimal.NewFromInt(10),
				HasOperationQuantity: true,
			},
			{
				ItemRef:              ItemRef{ID: id.New(), SupplierID: supplierB, Code: "2", Name: "Arroz 10X1KG", UnitsPerPackage: 10},
				OperationQuantity:    10,
				OperationPrice:       decimal.NewFromInt(4),
				HasOperationQuantity: true,
			},
		},
	}

	doc := Assemble(src, suppliers, nil)

	require.Len(t, doc.Suppliers, 2)
	assert.Equal(t, "FDA#77 A, ADDR A", doc.Suppliers[0].Info)
	assert.Equal(t, "FDA#N/A B, ADDR B", doc.Suppliers[1].Info)
	assert.EqualValues(t, 2, doc.Suppliers[0].Items[0].Qty)
	assert.EqualValues(t, 1, doc.Suppliers[1].Items[0].Qty)
}

func TestAssemble_SimulationQuantitiesAreAlreadyPackages(t *testing.T) {
	supplierID := id.New()
	src := Source{
		OperationID:   id.New(),
		OperationType: TypeSimulationPreview,
		Items: []SourceItem{{
			ItemRef:              ItemRef{ID: id.New(), SupplierID: supplierID, Code: "1", Name: "Feijao 30X1KG", UnitsPerPackage: 30},
			OperationQuantity:    5,
			OperationPrice:       decimal.NewFromInt(10),
			HasOperationQuantity: true,
		}},
	}

	doc := Assemble(src, nil, nil)

	require.Len(t, doc.Suppliers, 1)
	// 5 means 5 packages for simulation previews, not 5/30.
	assert.EqualValues(t, 5, doc.Suppliers[0].Items[0].Qty)
}

func TestAssemble_StockSnapshotFallback(t *testing.T) {
	supplierID := id.New()
	src := Source{
		OperationID:   id.New(),
		OperationType: TypeManual,
		Items: []SourceItem{{
			// No operation quantity: line falls back to stock quantity
			// and cost price.
			ItemRef: ItemRef{
				ID: id.New(), SupplierID: supplierID, Code: "9",
				Name: "Molho 24X150ML", Quantity: 48, CostPrice: decimal.NewFromInt(3),
				UnitsPerPackage: 24,
			},
		}},
	}

	doc := Assemble(src, nil, nil)

	require.Len(t, doc.Suppliers, 1)
	line := doc.Suppliers[0].Items[0]
	assert.EqualValues(t, 2, line.Qty)
	assert.True(t, line.Price.Equal(decimal.NewFromInt(3)))
}

func TestNormalizeCNPJ(t *testing.T) {
	assert.Equal(t, "11222333000181", NormalizeCNPJ("11.222.333/0001-81"))
	assert.Equal(t, "11222333000181", NormalizeCNPJ("11222333000181"))
	assert.Equal(t, "", NormalizeCNPJ("n/a"))
}
