package trade

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/id"
)

type stubNumberChecker struct {
	taken map[string]bool
}

func (s *stubNumberChecker) InvoiceNumberTaken(_ context.Context, number string, _ id.ID) (bool, error) {
	return s.taken[number], nil
}

func editorDoc() *Document {
	return &Document{
		OperationID:   id.New(),
		InvoiceNumber: "1001",
		Suppliers: []SupplierGroup{{
			Info: "FDA#1 A, ADDR",
			Items: []LineItem{
				{Code: "100", Qty: 10, Price: decimal.NewFromInt(5), QtyUnit: "12X400G", QtyKg: decimal.NewFromInt(48)},
			},
		}},
		Costs: []CostLine{{Description: "Freight", Value: decimal.NewFromInt(100)}},
	}
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("suppliers.0.items.2.price")
	require.NoError(t, err)
	assert.Equal(t, PathItemField, p.Kind)
	assert.Equal(t, 0, p.Supplier)
	assert.Equal(t, 2, p.Item)
	assert.Equal(t, "price", p.Field)

	p, err = ParsePath("invoiceNumber")
	require.NoError(t, err)
	assert.Equal(t, PathRoot, p.Kind)

	p, err = ParsePath("suppliers.1.info")
	require.NoError(t, err)
	assert.Equal(t, PathSupplierInfo, p.Kind)
	assert.Equal(t, 1, p.Supplier)

	p, err = ParsePath("costs.0.value")
	require.NoError(t, err)
	assert.Equal(t, PathCostField, p.Kind)

	_, err = ParsePath("suppliers.x.items.0.price")
	assert.Error(t, err)
	_, err = ParsePath("suppliers.0.items.0")
	assert.Error(t, err)
	_, err = ParsePath("")
	assert.Error(t, err)
}

func TestEditor_NumericFieldBrazilianParsing(t *testing.T) {
	e := NewEditor(nil)
	doc := editorDoc()

	err := e.Apply(context.Background(), doc, "suppliers.0.items.0.price", "1.234,56")
	require.NoError(t, err)
	assert.True(t, doc.Suppliers[0].Items[0].Price.Equal(decimal.RequireFromString("1234.56")),
		"got %s", doc.Suppliers[0].Items[0].Price)

	err = e.Apply(context.Background(), doc, "costs.0.value", "2,5")
	require.NoError(t, err)
	assert.True(t, doc.Costs[0].Value.Equal(decimal.RequireFromString("2.5")))
}

func TestEditor_RawTextField(t *testing.T) {
	e := NewEditor(nil)
	doc := editorDoc()

	require.NoError(t, e.Apply(context.Background(), doc, "suppliers.0.items.0.nameEn", "Black Beans"))
	assert.Equal(t, "Black Beans", doc.Suppliers[0].Items[0].NameEn)

	require.NoError(t, e.Apply(context.Background(), doc, "header.incoterm", "FOB SANTOS"))
	assert.Equal(t, "FOB SANTOS", doc.Header["incoterm"])
}

func TestEditor_InvoiceDateGate(t *testing.T) {
	e := NewEditor(nil)
	doc := editorDoc()

	// Feb 30 does not exist.
	err := e.Apply(context.Background(), doc, "invoiceDate", "30-02-2024")
	assert.Error(t, err)
	assert.Empty(t, doc.InvoiceDate)

	err = e.Apply(context.Background(), doc, "invoiceDate", "15-03-2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", doc.InvoiceDate)
	assert.Equal(t, "March 15, 2024", DisplayInvoiceDate(doc.InvoiceDate))

	err = e.Apply(context.Background(), doc, "invoiceDate", "2024-03-15")
	assert.Error(t, err, "ISO input must be rejected, entry format is DD-MM-YYYY")
}

func TestEditor_InvoiceNumberGate(t *testing.T) {
	e := NewEditor(&stubNumberChecker{taken: map[string]bool{"2002": true}})
	doc := editorDoc()

	// Duplicate of another operation: rejected, document untouched.
	err := e.Apply(context.Background(), doc, "invoiceNumber", "2002")
	assert.Error(t, err)
	assert.Equal(t, "1001", doc.InvoiceNumber)

	// Non-numeric: rejected.
	err = e.Apply(context.Background(), doc, "invoiceNumber", "INV-1")
	assert.Error(t, err)
	assert.Equal(t, "1001", doc.InvoiceNumber)

	// Own unchanged number: accepted (checker excludes the operation).
	err = e.Apply(context.Background(), doc, "invoiceNumber", "1001")
	require.NoError(t, err)

	err = e.Apply(context.Background(), doc, "invoiceNumber", "3003")
	require.NoError(t, err)
	assert.Equal(t, "3003", doc.InvoiceNumber)
}

func TestEditor_QtyUnitGateRecomputesWeight(t *testing.T) {
	e := NewEditor(nil)
	doc := editorDoc()

	err := e.Apply(context.Background(), doc, "suppliers.0.items.0.qty_unit", "20X300G")
	require.NoError(t, err)
	line := doc.Suppliers[0].Items[0]
	assert.Equal(t, "20X300G", line.QtyUnit)
	// 20*300g = 6kg per package, 10 packages.
	assert.True(t, line.QtyKg.Equal(decimal.NewFromInt(60)), "got %s", line.QtyKg)

	// Bad format: rejected, nothing changes.
	err = e.Apply(context.Background(), doc, "suppliers.0.items.0.qty_unit", "20*300G")
	assert.Error(t, err)
	assert.Equal(t, "20X300G", doc.Suppliers[0].Items[0].QtyUnit)
}

func TestEditCycleKeepsSavedPricesPristine(t *testing.T) {
	e := NewEditor(nil)
	opID := id.New()

	saved := []SupplierGroup{{
		Info: "FDA#1 A, ADDR",
		Items: []LineItem{
			{Code: "100", Qty: 10, Price: decimal.NewFromInt(5), QtyUnit: "12X400G"},
		},
	}}
	dist := Distribution{Active: true, Value: decimal.NewFromInt(100), Type: "flat"}

	// The edit-persist cycle as the operation service composes it:
	// assemble from saved state, edit, persist the edited state, and
	// reprice only the returned view. Entered prices must survive any
	// number of cycles; repricing the persisted state would stack the
	// distribution on every pass (5 -> 15 -> 25 -> ...).
	for cycle := 0; cycle < 3; cycle++ {
		src := Source{OperationID: opID, Saved: saved, Distribution: dist}
		doc := Assemble(src, nil, nil)

		require.NoError(t, e.Apply(context.Background(), doc, "header.notes", "edited"))

		view := ApplyDistribution(doc)
		assert.True(t, view.Suppliers[0].Items[0].Price.Equal(decimal.NewFromInt(15)),
			"cycle %d: rendered price %s", cycle, view.Suppliers[0].Items[0].Price)

		saved = doc.Suppliers
		assert.True(t, saved[0].Items[0].Price.Equal(decimal.NewFromInt(5)),
			"cycle %d: persisted price %s", cycle, saved[0].Items[0].Price)
	}
}

func TestEditor_QtyEditRecomputesWeight(t *testing.T) {
	e := NewEditor(nil)
	doc := editorDoc()

	// 12*400g = 4.8kg per package, 10 packages.
	err := e.Apply(context.Background(), doc, "suppliers.0.items.0.qty", "10")
	require.NoError(t, err)
	line := doc.Suppliers[0].Items[0]
	assert.EqualValues(t, 10, line.Qty)
	assert.True(t, line.QtyKg.Equal(decimal.NewFromInt(48)), "got %s", line.QtyKg)

	err = e.Apply(context.Background(), doc, "suppliers.0.items.0.qty", "5")
	require.NoError(t, err)
	line = doc.Suppliers[0].Items[0]
	assert.True(t, line.QtyKg.Equal(decimal.NewFromInt(24)), "got %s", line.QtyKg)
}

func TestEditor_ManualWeightStopsRecomputation(t *testing.T) {
	e := NewEditor(nil)
	doc := editorDoc()

	// Direct qty_kg edit marks the line weight as manual.
	require.NoError(t, e.Apply(context.Background(), doc, "suppliers.0.items.0.qty_kg", "99,5"))
	line := doc.Suppliers[0].Items[0]
	assert.True(t, line.ManualWeight)
	assert.True(t, line.QtyKg.Equal(decimal.RequireFromString("99.5")))

	// Subsequent qty_unit and qty edits keep the manual weight.
	require.NoError(t, e.Apply(context.Background(), doc, "suppliers.0.items.0.qty_unit", "20X300G"))
	assert.True(t, doc.Suppliers[0].Items[0].QtyKg.Equal(decimal.RequireFromString("99.5")))

	require.NoError(t, e.Apply(context.Background(), doc, "suppliers.0.items.0.qty", "7"))
	assert.True(t, doc.Suppliers[0].Items[0].QtyKg.Equal(decimal.RequireFromString("99.5")))
}

func TestEditor_ManualNetWeightOverride(t *testing.T) {
	e := NewEditor(nil)
	doc := editorDoc()

	require.NoError(t, e.Apply(context.Background(), doc, "manualNetWeight", "1.000,5"))
	require.NotNil(t, doc.ManualNetWeight)
	assert.True(t, doc.ManualNetWeight.Equal(decimal.RequireFromString("1000.5")))

	totals := doc.Totals()
	assert.True(t, totals.NetWeightKg.Equal(decimal.RequireFromString("1000.5")))
}

func TestEditor_OutOfRangeIndexRejected(t *testing.T) {
	e := NewEditor(nil)
	doc := editorDoc()

	assert.Error(t, e.Apply(context.Background(), doc, "suppliers.5.items.0.price", "1"))
	assert.Error(t, e.Apply(context.Background(), doc, "suppliers.0.items.9.price", "1"))
	assert.Error(t, e.Apply(context.Background(), doc, "costs.3.value", "1"))
}
