// Package inference derives canonical packaging data from free-text
// product descriptions and from heterogeneous numeric input.
//
// Imported catalogs arrive with packaging either as structured fields or
// buried in the item name ("Loia-Potato Chips 20X300Gr"). The functions
// here normalize both shapes into a single triple: units per package,
// measure value and measure unit, plus a kilogram equivalent used by
// trade documents for weight totals.
package inference

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Measurement units recognized in descriptions and qty-unit strings.
const (
	UnitGram      = "g"
	UnitGramAlt   = "gr"
	UnitKilogram  = "kg"
	UnitLiter     = "l"
	UnitMillilite = "ml"
	UnitPiece     = "un"
)

var (
	// <int> x <decimal><unit>, unit optional, comma tolerated as decimal
	// separator. Matches "12x400G", "20 X 300,5 GR", "6x1KG".
	packagePattern = regexp.MustCompile(`(?i)(\d+)\s*[x]\s*(\d+(?:[.,]\d+)?)\W*(G|GR|KG|L|ML)?`)

	// Bare <decimal><unit> for single-unit products ("400G", "1,5L").
	singlePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\W*(G|GR|KG|L|ML)`)

	// Leading numeric prefix after separator normalization.
	numberPrefix = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)

	qtyUnitValue = regexp.MustCompile(`^[0-9.]+`)
	qtyUnitUnit  = regexp.MustCompile(`[A-Z]+$`)
)

// Packaging is the canonical package breakdown of one stock unit.
type Packaging struct {
	UnitsPerPackage  int             `json:"unitsPerPackage"`
	UnitMeasureValue decimal.Decimal `json:"unitMeasureValue"`
	UnitMeasureType  string          `json:"unitMeasureType"`
}

// IsZero reports whether nothing could be inferred.
func (p Packaging) IsZero() bool {
	return p.UnitsPerPackage == 0 && p.UnitMeasureValue.IsZero() && p.UnitMeasureType == ""
}

// Valid reports whether the triple is usable as-is: a positive measure,
// a positive package count and a concrete measure unit.
func (p Packaging) Valid() bool {
	return p.UnitMeasureValue.GreaterThan(decimal.Zero) &&
		p.UnitsPerPackage > 0 &&
		p.UnitMeasureType != "" &&
		p.UnitMeasureType != UnitPiece
}

// QtyUnitString renders the triple in the "12X400G" form used on trade
// documents. Returns "" when the triple is unusable.
func (p Packaging) QtyUnitString() string {
	unit := strings.ToUpper(p.UnitMeasureType)
	switch {
	case p.UnitsPerPackage > 0 && p.UnitMeasureValue.GreaterThan(decimal.Zero):
		return strconv.Itoa(p.UnitsPerPackage) + "X" + p.UnitMeasureValue.String() + unit
	case p.UnitMeasureValue.GreaterThan(decimal.Zero):
		return p.UnitMeasureValue.String() + unit
	default:
		return ""
	}
}

// InferPackaging resolves the packaging triple for a product.
//
// Priority order:
//  1. explicit fields, when they already form a valid triple;
//  2. a "<int> x <decimal><unit>" pattern in the description;
//  3. a bare "<decimal><unit>" pattern (units per package = 1).
//
// When nothing matches the zero value is returned and the caller decides
// how to fall back (stock lookup or manual entry). "gr" is normalized to
// "g" in every branch.
func InferPackaging(description string, explicit *Packaging) Packaging {
	if explicit != nil && explicit.Valid() {
		out := *explicit
		out.UnitMeasureType = normalizeUnit(out.UnitMeasureType)
		return out
	}

	if m := packagePattern.FindStringSubmatch(description); m != nil {
		units, _ := strconv.Atoi(m[1])
		return Packaging{
			UnitsPerPackage:  units,
			UnitMeasureValue: parseDecimalComma(m[2]),
			UnitMeasureType:  normalizeUnit(m[3]),
		}
	}

	if m := singlePattern.FindStringSubmatch(description); m != nil {
		return Packaging{
			UnitsPerPackage:  1,
			UnitMeasureValue: parseDecimalComma(m[1]),
			UnitMeasureType:  normalizeUnit(m[2]),
		}
	}

	return Packaging{}
}

// ParseQtyUnit parses a "<N>X<value><UNIT>" string and returns the
// kilogram weight of a single package (N * value, scaled to kg for
// gram/milliliter units). Malformed input yields zero, never an error:
// these strings come straight from user-edited document fields.
func ParseQtyUnit(s string) decimal.Decimal {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "X")
	if len(parts) != 2 {
		return decimal.Zero
	}

	n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || n == 0 {
		return decimal.Zero
	}

	valueStr := qtyUnitValue.FindString(parts[1])
	unit := qtyUnitUnit.FindString(parts[1])
	if valueStr == "" || unit == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return decimal.Zero
	}

	switch unit {
	case "G", "GR", "ML":
		value = value.Div(decimal.NewFromInt(1000))
	}
	return value.Mul(decimal.NewFromInt(int64(n)))
}

// QuantityToKilograms returns the total kilogram weight of a line:
// the per-package weight of qtyUnit multiplied by the package count.
func QuantityToKilograms(qtyUnit string, packages int64) decimal.Decimal {
	return ParseQtyUnit(qtyUnit).Mul(decimal.NewFromInt(packages))
}

// ParseBrazilianNumber parses numeric input that may use either the
// Brazilian convention ("1.234,56") or the plain one ("1,234.56").
// The last separator present decides which convention applies.
// Anything non-numeric parses to 0: the value feeds arithmetic on
// trade documents and must never poison it.
func ParseBrazilianNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	if lastComma > lastDot {
		// Brazilian: dots are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	prefix := numberPrefix.FindString(s)
	if prefix == "" {
		return 0
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0
	}
	return f
}

func normalizeUnit(u string) string {
	u = strings.ToLower(u)
	if u == UnitGramAlt {
		return UnitGram
	}
	return u
}

func parseDecimalComma(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return d
}
