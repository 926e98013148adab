package trade

import "github.com/shopspring/decimal"

// DistributionPercentage spreads a percentage of the document total;
// any other type is treated as a flat BRL amount.
const DistributionPercentage = "percentage"

var oneHundred = decimal.NewFromInt(100)

// ApplyDistribution spreads the configured extra cost across all line
// items proportionally to their BRL value share and reprices each line.
//
// The input document is never mutated: an inactive distribution returns
// it as-is, an active one returns a deep copy with new prices. Keeping
// the original pristine is what makes the toggle lossless.
func ApplyDistribution(doc *Document) *Document {
	dist := doc.Distribution
	if !dist.Active {
		return doc
	}

	totalBRL := decimal.Zero
	for _, g := range doc.Suppliers {
		for _, it := range g.Items {
			totalBRL = totalBRL.Add(lineTotal(it))
		}
	}
	if totalBRL.IsZero() {
		return doc
	}

	amountToAdd := dist.Value
	if dist.Type == DistributionPercentage {
		amountToAdd = totalBRL.Mul(dist.Value).Div(oneHundred)
	}

	out := doc.Clone()
	for gi := range out.Suppliers {
		for ii := range out.Suppliers[gi].Items {
			it := &out.Suppliers[gi].Items[ii]
			itemTotal := lineTotal(*it)
			proportion := itemTotal.Div(totalBRL)
			newTotal := itemTotal.Add(amountToAdd.Mul(proportion))
			if it.Qty > 0 {
				it.Price = newTotal.Div(decimal.NewFromInt(it.Qty)).Round(4)
			} else {
				it.Price = decimal.Zero
			}
		}
	}
	return out
}

func lineTotal(it LineItem) decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(it.Qty))
}
