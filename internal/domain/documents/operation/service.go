package operation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/tx"
	"stockpro/internal/core/types"
	"stockpro/internal/domain"
	"stockpro/internal/domain/audit"
	"stockpro/internal/domain/catalogs/item"
	"stockpro/internal/domain/catalogs/supplier"
	"stockpro/internal/domain/posting"
	"stockpro/internal/domain/trade"
	"stockpro/pkg/logger"
	"stockpro/pkg/numerator"
)

// saleMarkup is the default margin applied when an import creates a
// catalog item without an explicit sale price.
var saleMarkup = decimal.RequireFromString("1.25")

// importedMinQuantity is the default minimum stock level for items
// created through an import.
const importedMinQuantity = 10

// Service provides business operations for operation documents:
// creation, finalization against the stock ledger, trade-document
// preview and in-place edits.
type Service struct {
	repo          Repository
	items         *item.Service
	suppliers     *supplier.Service
	postingEngine *posting.Engine
	numerator     *numerator.Service
	txManager     tx.Manager
	editor        *trade.Editor
}

// NewService creates a new operation service.
func NewService(
	repo Repository,
	items *item.Service,
	suppliers *supplier.Service,
	postingEngine *posting.Engine,
	numerator *numerator.Service,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:          repo,
		items:         items,
		suppliers:     suppliers,
		postingEngine: postingEngine,
		numerator:     numerator,
		txManager:     txManager,
		editor:        trade.NewEditor(repo),
	}
}

// Create creates a draft operation.
func (s *Service) Create(ctx context.Context, doc *Operation) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.ensureNumber(ctx, doc); err != nil {
		return err
	}

	audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "operation created", "id", doc.ID, "number", doc.Number, "type", doc.Type)
	return nil
}

// GetByID retrieves an operation with its items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Operation, error) {
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

// Update updates a draft operation. Finalized operations must be
// re-finalized through Finalize, which reverses the prior posting.
func (s *Service) Update(ctx context.Context, doc *Operation) error {
	if err := doc.CanModify(); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveItems(ctx, doc.ID, doc.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
}

// Delete removes an operation. A finalized operation is unposted first,
// so its stock deltas are reversed in the same transaction that deletes
// the document.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if !doc.Posted {
		return s.repo.Delete(ctx, docID)
	}

	return s.postingEngine.Unpost(ctx, doc, func(ctx context.Context) error {
		return s.repo.Delete(ctx, docID)
	})
}

// Finalize posts the operation's movements to the stock ledger and
// moves it into history. Re-finalizing an edited operation reverses the
// prior posting's movements first, all inside one transaction.
func (s *Service) Finalize(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if err := s.ensureNumber(ctx, doc); err != nil {
		return err
	}

	updateDoc := func(ctx context.Context) error {
		doc.Status = StatusCompleted
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		return s.repo.SaveItems(ctx, doc.ID, doc.Items)
	}

	return s.postingEngine.Post(ctx, doc, updateDoc)
}

// Reopen reverses a finalized operation's movements and returns it to
// draft for editing.
func (s *Service) Reopen(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	updateDoc := func(ctx context.Context) error {
		doc.Status = StatusDraft
		return s.repo.Update(ctx, doc)
	}

	return s.postingEngine.Unpost(ctx, doc, updateDoc)
}

// List retrieves operations with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Operation], error) {
	return s.repo.List(ctx, filter)
}

// --- Trade document generation and editing ---

// Preview assembles the trade document for an operation: saved supplier
// groups verbatim when present, otherwise recomputed from import
// lineage or flat items, with the cost distribution applied on top.
// Distribution reprices a render-time copy only; the assembled state
// keeps its entered prices.
func (s *Service) Preview(ctx context.Context, docID id.ID) (*trade.Document, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	tradeDoc, err := s.assemble(ctx, doc)
	if err != nil {
		return nil, err
	}
	return trade.ApplyDistribution(tradeDoc), nil
}

// ApplyEdit commits one in-place field edit on the operation's trade
// document and persists the mutated state, which from then on is the
// authoritative rendering source. The edit runs against the document
// with its entered prices, never the distribution-repriced view:
// persisting repriced lines would bake the distribution into the saved
// state and compound it on every following render. The returned
// document has the distribution applied, so the caller re-renders
// everything, including derived totals.
func (s *Service) ApplyEdit(ctx context.Context, docID id.ID, path, value string) (*trade.Document, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	tradeDoc, err := s.assemble(ctx, doc)
	if err != nil {
		return nil, err
	}

	if err := s.editor.Apply(ctx, tradeDoc, path, value); err != nil {
		return nil, err
	}

	doc.Trade = *tradeDoc
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document state: %w", err)
	}

	return trade.ApplyDistribution(tradeDoc), nil
}

// SaveTradeDocument persists an externally assembled trade document
// state on the operation (used when a viewer saves the whole blob).
func (s *Service) SaveTradeDocument(ctx context.Context, docID id.ID, tradeDoc *trade.Document) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if tradeDoc.OperationID != doc.ID {
		return apperror.NewValidation("trade document belongs to a different operation")
	}

	doc.Trade = *tradeDoc
	return s.repo.Update(ctx, doc)
}

func (s *Service) assemble(ctx context.Context, doc *Operation) (*trade.Document, error) {
	supplierRefs, itemRefs, err := s.catalogRefs(ctx)
	if err != nil {
		return nil, err
	}

	return trade.Assemble(doc.TradeSource(), supplierRefs, itemRefs), nil
}

// catalogRefs loads the supplier and item catalogs in the light form
// assembly matches against (CNPJ, NCM, packaging).
func (s *Service) catalogRefs(ctx context.Context) ([]trade.SupplierRef, []trade.ItemRef, error) {
	supplierList, err := s.suppliers.List(ctx, domain.ListFilter{OrderBy: "name"})
	if err != nil {
		return nil, nil, fmt.Errorf("list suppliers: %w", err)
	}
	itemList, err := s.items.List(ctx, domain.ListFilter{OrderBy: "code"})
	if err != nil {
		return nil, nil, fmt.Errorf("list items: %w", err)
	}

	supplierRefs := make([]trade.SupplierRef, 0, len(supplierList.Items))
	for _, sp := range supplierList.Items {
		supplierRefs = append(supplierRefs, trade.SupplierRef{
			ID:      sp.ID,
			Name:    sp.Name,
			CNPJ:    sp.CNPJ,
			Address: sp.Address,
			FDA:     sp.FDA,
		})
	}

	itemRefs := make([]trade.ItemRef, 0, len(itemList.Items))
	for _, it := range itemList.Items {
		itemRefs = append(itemRefs, trade.ItemRef{
			ID:               it.ID,
			SupplierID:       it.SupplierID,
			Code:             it.Code,
			Name:             it.Name,
			NameEn:           it.NameEn,
			NCM:              it.NCM,
			Quantity:         it.Quantity.Units(),
			CostPrice:        it.CostPrice,
			PackageType:      string(it.PackageType),
			UnitsPerPackage:  it.UnitsPerPackage,
			UnitMeasureValue: it.UnitMeasureValue,
			UnitMeasureType:  it.UnitMeasureType,
		})
	}

	return supplierRefs, itemRefs, nil
}

// --- Import ---

// CreateFromImport turns extracted fiscal notes into a finalized import
// operation. Unknown suppliers and items are registered on the fly;
// known items get their cost price refreshed. The operation carries the
// raw extraction lineage for document generation and posts incoming
// stock movements on finalize.
func (s *Service) CreateFromImport(ctx context.Context, organizationID string, extracts []trade.NfeExtract) (*Operation, error) {
	if len(extracts) == 0 {
		return nil, apperror.NewValidation("at least one extracted fiscal note is required")
	}

	doc := NewOperation(organizationID, trade.TypeImport)
	doc.NfeData = extracts

	for ei := range extracts {
		sp, err := s.ensureSupplier(ctx, extracts[ei].Fornecedor)
		if err != nil {
			return nil, err
		}

		for pi := range extracts[ei].Produtos {
			prod := &extracts[ei].Produtos[pi]

			it, err := s.ensureItem(ctx, sp, prod)
			if err != nil {
				return nil, err
			}
			itemID := it.ID
			prod.ItemID = &itemID

			doc.AddItem(Item{
				ItemID:           it.ID,
				SupplierID:       sp.ID,
				Code:             it.Code,
				Name:             it.Name,
				NameEn:           it.NameEn,
				NCM:              it.NCM,
				Description:      it.Description,
				Quantity:         types.NewQuantityFromUnits(prod.Quantity),
				Price:            prod.CostPrice,
				PackageType:      string(it.PackageType),
				UnitsPerPackage:  it.UnitsPerPackage,
				UnitMeasureValue: it.UnitMeasureValue,
				UnitMeasureType:  it.UnitMeasureType,
				QtyUnit:          it.QtyUnitString(),
			})
		}
	}

	if err := s.Create(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.Finalize(ctx, doc.ID); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, doc.ID)
}

// ensureSupplier resolves the extracted supplier by CNPJ, registering
// it when unknown.
func (s *Service) ensureSupplier(ctx context.Context, ref trade.NfeSupplier) (*supplier.Supplier, error) {
	existing, err := s.suppliers.FindByCNPJ(ctx, ref.CNPJ)
	if err == nil {
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	sp := supplier.New("", ref.Nome, ref.CNPJ)
	if err := s.suppliers.Create(ctx, sp); err != nil {
		return nil, fmt.Errorf("register supplier %q: %w", ref.Nome, err)
	}
	logger.Info(ctx, "supplier registered from import", "name", ref.Nome, "cnpj", sp.CNPJ)
	return sp, nil
}

// ensureItem resolves the extracted product by (code, supplier),
// registering it when unknown and refreshing its cost price otherwise.
func (s *Service) ensureItem(ctx context.Context, sp *supplier.Supplier, prod *trade.NfeProduct) (*item.Item, error) {
	existing, err := s.items.FindByCodeAndSupplier(ctx, prod.Code, sp.ID)
	if err == nil {
		if !prod.CostPrice.IsZero() && !prod.CostPrice.Equal(existing.CostPrice) {
			existing.CostPrice = prod.CostPrice
			if err := s.items.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("refresh cost price: %w", err)
			}
		}
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	it := item.New(prod.Code, prod.Name, sp.ID)
	it.NameEn = prod.NameEn
	it.NCM = prod.NCM
	it.Description = "Importado via NF-e"
	it.MinQuantity = types.NewQuantityFromUnits(importedMinQuantity)
	it.CostPrice = prod.CostPrice
	it.SalePrice = prod.SalePrice
	if it.SalePrice.IsZero() {
		it.SalePrice = prod.CostPrice.Mul(saleMarkup)
	}
	if prod.PackageType != "" {
		it.PackageType = item.PackageType(prod.PackageType)
	}
	if prod.UnitsPerPackage > 0 {
		it.UnitsPerPackage = prod.UnitsPerPackage
	}
	it.UnitMeasureValue = prod.UnitMeasureValue
	if prod.UnitMeasureType != "" {
		it.UnitMeasureType = prod.UnitMeasureType
	}

	if err := s.items.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("register item %q: %w", prod.Code, err)
	}
	logger.Info(ctx, "item registered from import", "code", it.Code, "supplier", sp.Name)
	return it, nil
}

func (s *Service) ensureNumber(ctx context.Context, doc *Operation) error {
	if doc.Number != "" {
		return nil
	}
	cfg := numerator.DefaultConfig(NumberPrefix)
	number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}
