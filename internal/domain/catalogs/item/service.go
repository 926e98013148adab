package item

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

// Service provides business logic for the Item catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Item]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Item service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numerator *numerator.Service,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Item]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "item",
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

// prepareForCreate handles code generation and uniqueness checks.
func (s *Service) prepareForCreate(ctx context.Context, it *Item) error {
	if it.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("IT"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		it.Code = code
	}

	// (code, supplier) is the uniqueness key in practice: the same SKU
	// may exist under different suppliers.
	if exists, _ := s.checkCodeExists(ctx, it.Code, it.SupplierID, it.ID); exists {
		return apperror.NewConflict("item with this code already exists for the supplier").
			WithDetail("code", it.Code).
			WithDetail("supplierId", it.SupplierID.String())
	}

	return nil
}

func (s *Service) prepareForUpdate(ctx context.Context, it *Item) error {
	if exists, _ := s.checkCodeExists(ctx, it.Code, it.SupplierID, it.ID); exists {
		return apperror.NewConflict("item with this code already exists for the supplier").
			WithDetail("code", it.Code).
			WithDetail("supplierId", it.SupplierID.String())
	}
	return nil
}

// --- Entity-specific methods ---

// FindByCodeAndSupplier retrieves an item by its uniqueness key.
func (s *Service) FindByCodeAndSupplier(ctx context.Context, code string, supplierID id.ID) (*Item, error) {
	return s.repo.FindByCodeAndSupplier(ctx, code, supplierID)
}

// FindByNCM retrieves items matching a tariff code.
func (s *Service) FindByNCM(ctx context.Context, ncm string) ([]*Item, error) {
	return s.repo.FindByNCM(ctx, ncm)
}

// FindBySupplier retrieves a supplier's items.
func (s *Service) FindBySupplier(ctx context.Context, supplierID id.ID, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	return s.repo.FindBySupplier(ctx, supplierID, filter)
}

// FindLowStock retrieves items with stock below minimum.
func (s *Service) FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Item], error) {
	return s.repo.FindLowStock(ctx, filter)
}

func (s *Service) checkCodeExists(ctx context.Context, code string, supplierID, excludeID id.ID) (bool, error) {
	existing, err := s.repo.FindByCodeAndSupplier(ctx, code, supplierID)
	if err != nil {
		return false, nil
	}
	return existing.ID != excludeID, nil
}
