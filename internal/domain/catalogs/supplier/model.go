// Package supplier provides the Supplier catalog: the Brazilian
// producers the trading business buys from. Suppliers are matched to
// imported fiscal notes by normalized CNPJ.
package supplier

import (
	"context"
	"regexp"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
)

// Pre-compiled regex patterns for validation (performance optimization)
var (
	nonDigitsRE  = regexp.MustCompile(`\D`)
	repeatedRE   = regexp.MustCompile(`^(\d)\1+$`)
	digitsOnlyRE = regexp.MustCompile(`^\d+$`)
	emailRE      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Supplier represents a registered supplier.
type Supplier struct {
	entity.Catalog

	// CNPJ is the Brazilian company tax id (14 digits). Stored
	// normalized (digits only); this is the uniqueness key in practice.
	CNPJ string `db:"cnpj" json:"cnpj"`

	// Address is the full street address used on document headers.
	Address string `db:"address" json:"address"`

	// FDA is the US FDA registration number printed on export
	// documents ("FDA#..."); empty renders as N/A.
	FDA string `db:"fda" json:"fda"`

	Email       *string `db:"email" json:"email,omitempty"`
	Salesperson *string `db:"salesperson" json:"salesperson,omitempty"`
	Phone       *string `db:"phone" json:"phone,omitempty"`
}

// New creates a new Supplier with required fields. The CNPJ is
// normalized to digits.
func New(code, name, cnpj string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(code, name),
		CNPJ:    NormalizeCNPJ(cnpj),
	}
}

// NormalizeCNPJ strips formatting: "11.222.333/0001-81" becomes
// "11222333000181".
func NormalizeCNPJ(cnpj string) string {
	return nonDigitsRE.ReplaceAllString(cnpj, "")
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if s.CNPJ != "" {
		if err := ValidateCNPJ(s.CNPJ); err != nil {
			return err
		}
	}

	if s.Email != nil && *s.Email != "" && !emailRE.MatchString(*s.Email) {
		return apperror.NewValidation("invalid email format").
			WithDetail("field", "email")
	}

	return nil
}

// ValidateCNPJ checks the 14-digit CNPJ including both checksum digits.
func ValidateCNPJ(cnpj string) error {
	cleaned := NormalizeCNPJ(cnpj)

	if len(cleaned) != 14 || !digitsOnlyRE.MatchString(cleaned) {
		return apperror.NewValidation("CNPJ must contain 14 digits").
			WithDetail("field", "cnpj").
			WithDetail("value", cnpj)
	}

	// All-equal digits pass the checksum but are not valid CNPJs.
	if repeatedRE.MatchString(cleaned) {
		return apperror.NewValidation("invalid CNPJ").
			WithDetail("field", "cnpj").
			WithDetail("value", cnpj)
	}

	if !checkDigit(cleaned, 12) || !checkDigit(cleaned, 13) {
		return apperror.NewValidation("invalid CNPJ check digits").
			WithDetail("field", "cnpj").
			WithDetail("value", cnpj)
	}

	return nil
}

// checkDigit verifies the verification digit at position pos (12 or 13)
// using the official modulus-11 weighting.
func checkDigit(cnpj string, pos int) bool {
	sum := 0
	weight := pos - 7 // 5 for the first digit, 6 for the second
	for i := 0; i < pos; i++ {
		sum += int(cnpj[i]-'0') * weight
		weight--
		if weight < 2 {
			weight = 9
		}
	}

	expected := sum % 11
	if expected < 2 {
		expected = 0
	} else {
		expected = 11 - expected
	}
	return int(cnpj[pos]-'0') == expected
}
