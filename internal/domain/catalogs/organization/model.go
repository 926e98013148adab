// Package organization provides the Organization catalog: the trading
// company's own legal entities, printed on export document headers.
package organization

import (
	"context"
	"regexp"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
)

var cnpjRE = regexp.MustCompile(`^\d{14}$`)

// Organization represents a legal entity of the business.
type Organization struct {
	entity.Catalog

	// FullName is the official registered name
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// CNPJ is the company tax id, digits only
	CNPJ *string `db:"cnpj" json:"cnpj,omitempty"`

	// Address is the full address used on document headers
	Address *string `db:"address" json:"address,omitempty"`

	Email *string `db:"email" json:"email,omitempty"`
	Phone *string `db:"phone" json:"phone,omitempty"`

	// BaseCurrencyID is the main currency for accounting in this organization
	BaseCurrencyID id.ID `db:"base_currency_id" json:"baseCurrencyId,omitempty"`

	// IsDefault indicates if this is the default organization for new documents
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewOrganization creates a new Organization with required fields.
func NewOrganization(code, name string, baseCurrencyID id.ID) *Organization {
	return &Organization{
		Catalog:        entity.NewCatalog(code, name),
		BaseCurrencyID: baseCurrencyID,
	}
}

// Validate implements entity.Validatable interface.
func (o *Organization) Validate(ctx context.Context) error {
	if err := o.Catalog.Validate(ctx); err != nil {
		return err
	}

	if o.CNPJ != nil && *o.CNPJ != "" && !cnpjRE.MatchString(*o.CNPJ) {
		return apperror.NewValidation("CNPJ must contain 14 digits").
			WithDetail("field", "cnpj").
			WithDetail("value", *o.CNPJ)
	}

	return nil
}
