// Package currency provides the Currency catalog.
// Currencies represent monetary units with PTAX exchange rates against
// the base currency (BRL).
package currency

import (
	"context"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
)

var isoCodeRE = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency represents a monetary unit.
type Currency struct {
	entity.Catalog

	// ISOCode is the ISO 4217 alphabetic code (e.g., "USD", "BRL")
	ISOCode *string `db:"iso_code" json:"isoCode"`

	// Symbol is the currency symbol (e.g., "$", "R$")
	Symbol *string `db:"symbol" json:"symbol"`

	// DecimalPlaces is the number of decimal places
	DecimalPlaces int `db:"decimal_places" json:"decimalPlaces"`

	// IsBase indicates if this is the base (accounting) currency.
	// Exactly one currency is base; for this business that is BRL.
	IsBase bool `db:"is_base" json:"isBase"`

	// Rate is the latest PTAX sale rate: how many units of the base
	// currency one unit of this currency buys. Zero means no rate
	// has been loaded yet.
	Rate decimal.Decimal `db:"rate" json:"rate"`

	// RateDate is the quotation date of Rate.
	RateDate *time.Time `db:"rate_date" json:"rateDate,omitempty"`
}

// NewCurrency creates a new Currency with required fields.
func NewCurrency(code, name string, isoCode, symbol *string) *Currency {
	return &Currency{
		Catalog:       entity.NewCatalog(code, name),
		ISOCode:       isoCode,
		Symbol:        symbol,
		DecimalPlaces: 2,
	}
}

// Validate implements entity.Validatable interface.
func (c *Currency) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidISOCode(c.ISOCode) {
		return apperror.NewValidation("ISO code must be 3 uppercase letters").
			WithDetail("field", "isoCode").
			WithDetail("value", c.ISOCode)
	}

	if c.Symbol == nil || *c.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}

	if c.DecimalPlaces < 0 || c.DecimalPlaces > 8 {
		return apperror.NewValidation("decimal places must be between 0 and 8").
			WithDetail("field", "decimalPlaces")
	}

	if c.Rate.IsNegative() {
		return apperror.NewValidation("rate must not be negative").
			WithDetail("field", "rate")
	}

	return nil
}

// Format formats an amount according to currency settings.
func (c *Currency) Format(amount decimal.Decimal) string {
	rounded := amount.Round(int32(c.DecimalPlaces))
	return *c.Symbol + " " + rounded.StringFixed(int32(c.DecimalPlaces))
}

// FromBase converts an amount in the base currency into this currency
// at the stored rate. Amounts pass through unchanged when no rate is
// loaded, so documents remain usable before the first PTAX fetch.
func (c *Currency) FromBase(amount decimal.Decimal) decimal.Decimal {
	if c.IsBase || c.Rate.LessThanOrEqual(decimal.Zero) {
		return amount
	}
	return amount.Div(c.Rate)
}

// ToBase converts an amount in this currency into the base currency.
func (c *Currency) ToBase(amount decimal.Decimal) decimal.Decimal {
	if c.IsBase || c.Rate.LessThanOrEqual(decimal.Zero) {
		return amount
	}
	return amount.Mul(c.Rate)
}

func isValidISOCode(code *string) bool {
	if code == nil {
		return false
	}
	return isoCodeRE.MatchString(*code)
}
