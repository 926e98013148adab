package simulation

import (
	"context"
	"fmt"
	"time"

	"stockpro/internal/core/id"
	"stockpro/internal/core/tx"
	"stockpro/internal/domain"
	"stockpro/internal/domain/audit"
	"stockpro/internal/domain/documents/purchaseorder"
	"stockpro/pkg/logger"
	"stockpro/pkg/numerator"
)

// NumberPrefix for generated simulation numbers (SIM-2026-00001).
const NumberPrefix = "SIM"

// Service provides business operations for simulation drafts.
type Service struct {
	repo           Repository
	purchaseOrders *purchaseorder.Service
	numerator      *numerator.Service
	txManager      tx.Manager
}

// NewService creates a new simulation service.
func NewService(
	repo Repository,
	purchaseOrders *purchaseorder.Service,
	numerator *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:           repo,
		purchaseOrders: purchaseOrders,
		numerator:      numerator,
		txManager:      txManager,
	}
}

// Save upserts a draft. Simulations are auto-saved on every mutation,
// so this is called often and stays cheap: number generation happens
// once, on first save.
func (s *Service) Save(ctx context.Context, doc *Simulation) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	isNew := doc.Number == ""
	if isNew {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	if isNew {
		audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)
	} else {
		audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if isNew {
			if err := s.repo.Create(ctx, doc); err != nil {
				return fmt.Errorf("create draft: %w", err)
			}
		} else if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update draft: %w", err)
		}
		return s.repo.SaveItems(ctx, doc.ID, doc.Items)
	})
}

// GetByID retrieves a simulation with its items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Simulation, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	doc.Items = items

	return doc, nil
}

// Delete discards a draft.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	return s.repo.Delete(ctx, docID)
}

// List retrieves simulations with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Simulation], error) {
	return s.repo.List(ctx, filter)
}

// Promote turns the draft into a purchase order awaiting its XML. The
// order gets its own number; the simulation is kept, marked promoted,
// for the audit trail.
func (s *Service) Promote(ctx context.Context, docID id.ID) (*purchaseorder.PurchaseOrder, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if err := doc.CanPromote(); err != nil {
		return nil, err
	}

	po := purchaseorder.NewPurchaseOrder(doc.OrganizationID)
	po.Comment = fmt.Sprintf("Gerada a partir da simulação %s", doc.Number)
	for _, it := range doc.Items {
		po.AddLine(purchaseorder.Line{
			ItemID:           it.ItemID,
			SupplierID:       it.SupplierID,
			Code:             it.Code,
			Name:             it.Name,
			NameEn:           it.NameEn,
			NCM:              it.NCM,
			Quantity:         it.Quantity,
			Price:            it.Price,
			PackageType:      it.PackageType,
			UnitsPerPackage:  it.UnitsPerPackage,
			UnitMeasureValue: it.UnitMeasureValue,
			UnitMeasureType:  it.UnitMeasureType,
			QtyUnit:          it.QtyUnit,
		})
	}

	if err := s.purchaseOrders.Create(ctx, po); err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}

	doc.Status = StatusPromoted
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}

	logger.Info(ctx, "simulation promoted",
		"simulation", doc.Number, "purchase_order", po.Number)
	return po, nil
}
