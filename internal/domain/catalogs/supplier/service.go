package supplier

import (
	"context"
	"fmt"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/tx"
	"stockpro/internal/domain"
	"stockpro/pkg/numerator"
)

// Service provides business logic for the Supplier catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Supplier] // Embedded for delegation
	repo                              Repository
	numerator                         *numerator.Service
}

// NewService creates a new Supplier service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator *numerator.Service,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and CNPJ normalization before create.
func (s *Service) prepareForCreate(ctx context.Context, sp *Supplier) error {
	if sp.Code == "" {
		cfg := numerator.DefaultConfig("FN")
		code, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		sp.Code = code
	}

	return s.normalizeAndCheckCNPJ(ctx, sp)
}

// prepareForUpdate handles CNPJ uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, sp *Supplier) error {
	return s.normalizeAndCheckCNPJ(ctx, sp)
}

func (s *Service) normalizeAndCheckCNPJ(ctx context.Context, sp *Supplier) error {
	sp.CNPJ = NormalizeCNPJ(sp.CNPJ)
	if sp.CNPJ == "" {
		return nil
	}

	exists, err := s.checkCNPJExists(ctx, sp.CNPJ, sp.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperror.NewConflict("supplier with this CNPJ already exists").
			WithDetail("cnpj", sp.CNPJ)
	}
	return nil
}

// --- Entity-specific methods (not in base CatalogService) ---

// FindByCNPJ retrieves a supplier by CNPJ. The input is normalized
// before lookup, so formatted CNPJs from fiscal notes work directly.
func (s *Service) FindByCNPJ(ctx context.Context, cnpj string) (*Supplier, error) {
	return s.repo.FindByCNPJ(ctx, NormalizeCNPJ(cnpj))
}

// checkCNPJExists checks if the CNPJ is already used by another supplier.
func (s *Service) checkCNPJExists(ctx context.Context, cnpj string, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByCNPJ(ctx, cnpj)
	if err != nil {
		if apperror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != excludeID, nil
}
