package organization

import (
	"context"

	"stockpro/internal/core/tx"
	"stockpro/internal/domain"
	"stockpro/pkg/numerator"
)

// Service provides business logic for Organization catalog.
type Service struct {
	*domain.CatalogService[*Organization]
	repo      Repository
	numerator *numerator.Service
}

// NewService creates a new Organization service.
func NewService(repo Repository, txManager tx.Manager, numerator *numerator.Service) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Organization]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "organization",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	return svc
}

// GetDefault retrieves the default organization.
func (s *Service) GetDefault(ctx context.Context) (*Organization, error) {
	return s.repo.GetDefault(ctx)
}
