package trade

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDoc() *Document {
	return &Document{
		Suppliers: []SupplierGroup{
			{
				Info: "FDA#123 SUPPLIER A, RUA X",
				Items: []LineItem{
					{Code: "100", Qty: 10, Price: decimal.NewFromInt(5), QtyKg: decimal.NewFromInt(48)},
					{Code: "200", Qty: 5, Price: decimal.NewFromInt(20), QtyKg: decimal.NewFromInt(30)},
				},
			},
			{
				Info: "FDA#N/A SUPPLIER B, RUA Y",
				Items: []LineItem{
					{Code: "300", Qty: 2, Price: decimal.NewFromInt(25), QtyKg: decimal.NewFromInt(12)},
				},
			},
		},
	}
}

func docTotalBRL(d *Document) decimal.Decimal {
	total := decimal.Zero
	for _, g := range d.Suppliers {
		for _, it := range g.Items {
			total = total.Add(it.Price.Mul(decimal.NewFromInt(it.Qty)))
		}
	}
	return total
}

func TestApplyDistribution_InactiveIsIdentity(t *testing.T) {
	doc := testDoc()
	doc.Distribution = Distribution{Active: false, Value: decimal.NewFromInt(100)}

	got := ApplyDistribution(doc)

	// Same pointer back: no copy, no mutation.
	assert.Same(t, doc, got)
	assert.True(t, doc.Suppliers[0].Items[0].Price.Equal(decimal.NewFromInt(5)))
}

func TestApplyDistribution_FlatConservesTotal(t *testing.T) {
	doc := testDoc()
	doc.Distribution = Distribution{Active: true, Value: decimal.NewFromInt(30), Type: "flat"}
	before := docTotalBRL(doc) // 10*5 + 5*20 + 2*25 = 200

	got := ApplyDistribution(doc)

	require.NotSame(t, doc, got)
	after := docTotalBRL(got)
	want := before.Add(decimal.NewFromInt(30))
	diff := after.Sub(want).Abs()
	assert.True(t, diff.LessThan(decimal.RequireFromString("0.01")),
		"total not conserved: want %s, got %s", want, after)

	// Input stayed pristine.
	assert.True(t, doc.Suppliers[0].Items[0].Price.Equal(decimal.NewFromInt(5)))
}

func TestApplyDistribution_PercentageConservesTotal(t *testing.T) {
	doc := testDoc()
	doc.Distribution = Distribution{Active: true, Value: decimal.NewFromInt(10), Type: DistributionPercentage}
	before := docTotalBRL(doc)

	got := ApplyDistribution(doc)

	after := docTotalBRL(got)
	want := before.Mul(decimal.RequireFromString("1.10"))
	diff := after.Sub(want).Abs()
	assert.True(t, diff.LessThan(decimal.RequireFromString("0.01")),
		"total not conserved: want %s, got %s", want, after)
}

func TestApplyDistribution_ProportionalShares(t *testing.T) {
	doc := &Document{
		Suppliers: []SupplierGroup{{
			Items: []LineItem{
				{Qty: 1, Price: decimal.NewFromInt(75)},
				{Qty: 1, Price: decimal.NewFromInt(25)},
			},
		}},
		Distribution: Distribution{Active: true, Value: decimal.NewFromInt(100), Type: "flat"},
	}

	got := ApplyDistribution(doc)

	// 75/25 split of the extra 100: 75+75=150, 25+25=50.
	assert.True(t, got.Suppliers[0].Items[0].Price.Equal(decimal.NewFromInt(150)),
		"got %s", got.Suppliers[0].Items[0].Price)
	assert.True(t, got.Suppliers[0].Items[1].Price.Equal(decimal.NewFromInt(50)),
		"got %s", got.Suppliers[0].Items[1].Price)
}

func TestApplyDistribution_ZeroTotalIsNoop(t *testing.T) {
	doc := &Document{
		Suppliers: []SupplierGroup{{
			Items: []LineItem{{Qty: 0, Price: decimal.Zero}},
		}},
		Distribution: Distribution{Active: true, Value: decimal.NewFromInt(50), Type: "flat"},
	}

	got := ApplyDistribution(doc)
	assert.Same(t, doc, got)
}

func TestConvert(t *testing.T) {
	rate := decimal.RequireFromString("5.00")
	assert.True(t, Convert(decimal.NewFromInt(100), rate).Equal(decimal.NewFromInt(20)))

	// No valid rate: pass-through, document stays BRL.
	assert.True(t, Convert(decimal.NewFromInt(100), decimal.Zero).Equal(decimal.NewFromInt(100)))
	assert.True(t, Convert(decimal.NewFromInt(100), decimal.NewFromInt(-1)).Equal(decimal.NewFromInt(100)))
}

func TestTotals_WeightAggregates(t *testing.T) {
	doc := testDoc() // qty_kg: 48 + 30 + 12 = 90
	doc.PtaxRate = decimal.NewFromInt(5)

	totals := doc.Totals()
	assert.True(t, totals.NetWeightKg.Equal(decimal.NewFromInt(90)), "net: %s", totals.NetWeightKg)
	assert.True(t, totals.GrossWeightKg.Equal(decimal.RequireFromString("93.15")), "gross: %s", totals.GrossWeightKg)
	assert.EqualValues(t, 17, totals.TotalPackages)
}

func TestTotals_ManualWeightWinsOutright(t *testing.T) {
	doc := testDoc()
	manualNet := decimal.NewFromInt(100)
	doc.ManualNetWeight = &manualNet

	totals := doc.Totals()
	// Manual replaces the computed value entirely, never blended.
	assert.True(t, totals.NetWeightKg.Equal(manualNet))
	assert.True(t, totals.GrossWeightKg.Equal(decimal.RequireFromString("103.5")))

	manualGross := decimal.NewFromInt(120)
	doc.ManualGrossWeight = &manualGross
	totals = doc.Totals()
	assert.True(t, totals.GrossWeightKg.Equal(manualGross))
}

func TestTotals_NoCompoundingConversion(t *testing.T) {
	doc := &Document{
		PtaxRate: decimal.NewFromInt(5),
		Suppliers: []SupplierGroup{{
			Items: []LineItem{{Qty: 1, Price: decimal.NewFromInt(50), QtyKg: decimal.NewFromInt(10)}},
		}},
		Costs: []CostLine{{Description: "Freight", Value: decimal.NewFromInt(250)}},
	}

	totals := doc.Totals()
	// Product: 10kg * (50/5) = 100 USD. Costs: 250/5 = 50 USD.
	assert.True(t, totals.ProductSubtotalUSD.Equal(decimal.NewFromInt(100)), "products: %s", totals.ProductSubtotalUSD)
	assert.True(t, totals.CostsSubtotalUSD.Equal(decimal.NewFromInt(50)), "costs: %s", totals.CostsSubtotalUSD)
	assert.True(t, totals.GrandTotalUSD.Equal(decimal.NewFromInt(150)), "grand: %s", totals.GrandTotalUSD)
}
