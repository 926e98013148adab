package purchaseorder

import (
	"context"
	"fmt"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/tx"
	"stockpro/internal/domain"
	"stockpro/internal/domain/audit"
	"stockpro/internal/domain/catalogs/supplier"
	"stockpro/internal/domain/documents/operation"
	"stockpro/internal/domain/trade"
	"stockpro/pkg/logger"
	"stockpro/pkg/numerator"
)

// AttachmentStore persists raw attached XML files. Implemented by the
// object storage client.
type AttachmentStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
}

// AttachResult reports the outcome of one XML attachment.
type AttachResult struct {
	// MatchedLines is the count of order lines whose cost price the
	// fiscal note confirmed.
	MatchedLines int `json:"matchedLines"`

	// Warnings lists extracted products that matched no order line.
	// They never block the attach.
	Warnings []string `json:"warnings,omitempty"`
}

// Service provides business operations for purchase orders.
type Service struct {
	repo        Repository
	suppliers   *supplier.Service
	operations  *operation.Service
	numerator   *numerator.Service
	txManager   tx.Manager
	attachments AttachmentStore
}

// NewService creates a new purchase order service.
func NewService(
	repo Repository,
	suppliers *supplier.Service,
	operations *operation.Service,
	numerator *numerator.Service,
	txManager tx.Manager,
	attachments AttachmentStore,
) *Service {
	return &Service{
		repo:        repo,
		suppliers:   suppliers,
		operations:  operations,
		numerator:   numerator,
		txManager:   txManager,
		attachments: attachments,
	}
}

// Create creates a purchase order in pending_xml.
func (s *Service) Create(ctx context.Context, doc *PurchaseOrder) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase order created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID retrieves a purchase order with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PurchaseOrder, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update updates a purchase order that has not reached stock entry.
func (s *Service) Update(ctx context.Context, doc *PurchaseOrder) error {
	if doc.Status == StatusCompleted {
		return apperror.NewBusinessRule(CodeIllegalTransition,
			"completed purchase orders cannot be modified")
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// Delete removes a purchase order that has not reached stock entry.
// Completed orders live on: their stock movements belong to the
// generated operation, which owns the reversal.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.Status == StatusCompleted {
		return apperror.NewBusinessRule(CodeIllegalTransition,
			"completed purchase orders cannot be deleted, reverse the stock-entry operation instead")
	}
	return s.repo.Delete(ctx, docID)
}

// List retrieves purchase orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*PurchaseOrder], error) {
	return s.repo.List(ctx, filter)
}

// AttachXML matches one extracted fiscal note against the order lines
// by exact (code, supplier) pair, overwrites the cost price of matched
// lines and stores the raw file. Line integrity is checked before any
// side effect: a broken order aborts with nothing mutated and nothing
// uploaded. Unmatched extracted products are reported as warnings.
func (s *Service) AttachXML(ctx context.Context, docID id.ID, fileName string, content []byte, extract trade.NfeExtract) (*AttachResult, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status == StatusCompleted {
		return nil, apperror.NewBusinessRule(CodeIllegalTransition,
			"cannot attach XML to a completed purchase order")
	}

	if err := doc.CheckLineIntegrity(); err != nil {
		return nil, err
	}

	supplierID, err := s.resolveSupplier(ctx, extract.Fornecedor)
	if err != nil {
		return nil, err
	}

	result := &AttachResult{}
	for _, prod := range extract.Produtos {
		line := findLine(doc.Lines, prod.Code, supplierID)
		if line == nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("produto %q (código %s) não consta na ordem de compra", prod.Name, prod.Code))
			continue
		}
		line.Price = prod.CostPrice
		line.XMLMatched = true
		result.MatchedLines++
	}

	key := fmt.Sprintf("purchase-orders/%s/%s", doc.ID, fileName)
	if err := s.attachments.Save(ctx, key, content, "application/xml"); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	doc.NfeData = append(doc.NfeData, extract)
	doc.Attachments = append(doc.Attachments, Attachment{
		Key:           key,
		FileName:      fileName,
		InvoiceNumber: extract.NotaFiscal.Numero,
		AttachedAt:    time.Now().UTC(),
	})
	doc.XMLAttached = true

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "xml attached to purchase order",
		"id", doc.ID, "file", fileName,
		"matched", result.MatchedLines, "warnings", len(result.Warnings))
	return result, nil
}

// FinalizeAttachments advances pending_xml to pending_stock_entry. It
// refuses to advance while no XML has been attached.
func (s *Service) FinalizeAttachments(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if err := doc.Advance(StatusPendingStockEntry); err != nil {
		return err
	}
	return s.repo.Update(ctx, doc)
}

// StockEntry turns a pending_stock_entry order into a finalized
// operation: incoming stock movements are posted for every line and the
// order completes. The generated operation carries the attached fiscal
// notes as import lineage for document generation.
func (s *Service) StockEntry(ctx context.Context, docID id.ID) (*operation.Operation, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if err := doc.Advance(StatusCompleted); err != nil {
		return nil, err
	}

	op := operation.NewOperation(doc.OrganizationID, trade.TypePurchaseOrder)
	op.Comment = fmt.Sprintf("Entrada de estoque da ordem de compra %s", doc.Number)
	op.NfeData = doc.NfeData
	for _, l := range doc.Lines {
		op.AddItem(operation.Item{
			ItemID:           l.ItemID,
			SupplierID:       l.SupplierID,
			Code:             l.Code,
			Name:             l.Name,
			NameEn:           l.NameEn,
			NCM:              l.NCM,
			Quantity:         l.Quantity,
			Price:            l.Price,
			PackageType:      l.PackageType,
			UnitsPerPackage:  l.UnitsPerPackage,
			UnitMeasureValue: l.UnitMeasureValue,
			UnitMeasureType:  l.UnitMeasureType,
			QtyUnit:          l.QtyUnit,
		})
	}

	if err := s.operations.Create(ctx, op); err != nil {
		return nil, fmt.Errorf("create stock-entry operation: %w", err)
	}
	if err := s.operations.Finalize(ctx, op.ID); err != nil {
		return nil, fmt.Errorf("finalize stock-entry operation: %w", err)
	}

	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order stock entry applied",
		"id", doc.ID, "number", doc.Number, "operation", op.ID)
	return s.operations.GetByID(ctx, op.ID)
}

func (s *Service) resolveSupplier(ctx context.Context, ref trade.NfeSupplier) (id.ID, error) {
	sp, err := s.suppliers.FindByCNPJ(ctx, ref.CNPJ)
	if err != nil {
		if apperror.IsNotFound(err) {
			return id.Nil(), apperror.NewValidation("fiscal note supplier is not registered").
				WithDetail("name", ref.Nome).
				WithDetail("cnpj", ref.CNPJ)
		}
		return id.Nil(), err
	}
	return sp.ID, nil
}

func findLine(lines []Line, code string, supplierID id.ID) *Line {
	for i := range lines {
		if lines[i].Code == code && lines[i].SupplierID == supplierID {
			return &lines[i]
		}
	}
	return nil
}
