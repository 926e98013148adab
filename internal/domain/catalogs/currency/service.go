package currency

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/tx"
	"stockpro/internal/domain"
	"stockpro/pkg/numerator"
)

// Service provides business logic for Currency catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Currency]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Currency service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator *numerator.Service,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Currency]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "currency",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)
	base.Hooks().OnBeforeDelete(svc.validateBeforeDelete)

	return svc
}

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, curr *Currency) error {
	// Use ISO code as code if not provided
	if curr.Code == "" && curr.ISOCode != nil {
		curr.Code = *curr.ISOCode
	}

	if exists, err := s.checkISOCodeExists(ctx, curr.ISOCode, curr.ID); err != nil {
		return err
	} else if exists {
		return apperror.NewConflict("currency with this ISO code already exists").
			WithDetail("isoCode", curr.ISOCode)
	}

	// If setting as base, clear other base currencies
	if curr.IsBase {
		if err := s.repo.ClearBase(ctx); err != nil {
			return err
		}
	}

	return nil
}

// prepareForUpdate handles uniqueness checks.
func (s *Service) prepareForUpdate(ctx context.Context, curr *Currency) error {
	if exists, err := s.checkISOCodeExists(ctx, curr.ISOCode, curr.ID); err != nil {
		return err
	} else if exists {
		return apperror.NewConflict("currency with this ISO code already exists").
			WithDetail("isoCode", curr.ISOCode)
	}

	if curr.IsBase {
		if err := s.repo.ClearBase(ctx); err != nil {
			return err
		}
	}

	return nil
}

// validateBeforeDelete prevents deletion of the base currency.
func (s *Service) validateBeforeDelete(ctx context.Context, curr *Currency) error {
	if curr.IsBase {
		return apperror.NewValidation("cannot delete base currency")
	}
	return nil
}

// --- Entity-specific methods ---

// FindByISOCode retrieves currency by ISO code.
func (s *Service) FindByISOCode(ctx context.Context, isoCode string) (*Currency, error) {
	return s.repo.FindByISOCode(ctx, isoCode)
}

// UpdateRate stores a fresh PTAX quotation for the currency identified
// by ISO code. Rates must be positive; the pass-through conversion for
// missing rates is expressed by a zero value, never stored explicitly.
func (s *Service) UpdateRate(ctx context.Context, isoCode string, rate decimal.Decimal, rateDate time.Time) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return apperror.NewValidation("rate must be positive").
			WithDetail("isoCode", isoCode).
			WithDetail("rate", rate.String())
	}

	curr, err := s.repo.FindByISOCode(ctx, isoCode)
	if err != nil {
		return err
	}
	return s.repo.UpdateRate(ctx, curr.ID, rate, rateDate)
}

func (s *Service) checkISOCodeExists(ctx context.Context, isoCode *string, excludeID id.ID) (bool, error) {
	if isoCode == nil || *isoCode == "" {
		return false, nil
	}
	existing, err := s.repo.FindByISOCode(ctx, *isoCode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
