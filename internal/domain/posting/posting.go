// Package posting turns finalized documents into stock ledger entries.
//
// A document that affects stock implements Postable and describes its
// movements; the Engine records them atomically, reversing any prior
// posting iteration of the same document first. Re-finalizing an edited
// operation is therefore reverse-then-reapply inside one transaction.
package posting

import (
	"context"
	"fmt"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entity"
	"stockpro/internal/core/id"
	"stockpro/internal/core/tx"
	"stockpro/internal/domain/registers/stock"
	"stockpro/pkg/logger"
)

// Postable is a document whose finalization produces ledger movements.
type Postable interface {
	GetID() id.ID
	GetDocumentType() string
	GetPostedVersion() int
	IsPosted() bool
	CanPost(ctx context.Context) error

	// GenerateMovements builds the movement set for the NEXT posting
	// version (PostedVersion+1).
	GenerateMovements(ctx context.Context) (*MovementSet, error)

	MarkPosted()
	MarkUnposted()
}

// MovementSet collects the movements one posting produces, per register.
type MovementSet struct {
	Stock []entity.StockMovement
}

// NewMovementSet creates an empty movement set.
func NewMovementSet() *MovementSet {
	return &MovementSet{}
}

// AddStock appends a stock movement.
func (s *MovementSet) AddStock(m entity.StockMovement) {
	s.Stock = append(s.Stock, m)
}

// IsEmpty reports whether the set holds no movements at all.
func (s *MovementSet) IsEmpty() bool {
	return len(s.Stock) == 0
}

// Engine posts and unposts documents against the stock register.
type Engine struct {
	stock      *stock.Service
	txManager  tx.Manager
	checkStock bool
}

// NewEngine creates a posting engine. When checkStock is true, "out"
// movements are validated against locked balances before recording and
// posting fails on insufficient stock.
func NewEngine(stockSvc *stock.Service, txManager tx.Manager, checkStock bool) *Engine {
	return &Engine{
		stock:      stockSvc,
		txManager:  txManager,
		checkStock: checkStock,
	}
}

// Post records the document's movements. Any movements from a previous
// posting version are reversed in the same transaction, then updateDoc
// persists the document with its incremented posting version.
func (e *Engine) Post(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if err := doc.CanPost(ctx); err != nil {
		return err
	}

	movements, err := doc.GenerateMovements(ctx)
	if err != nil {
		return fmt.Errorf("generate movements: %w", err)
	}

	return e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Reverse the prior iteration first so availability checks see
		// the document's own stock back on hand.
		if doc.IsPosted() {
			if err := e.stock.ReverseMovements(ctx, doc.GetID(), doc.GetPostedVersion()+1); err != nil {
				return err
			}
		}

		if e.checkStock {
			if err := e.checkAvailability(ctx, movements); err != nil {
				return err
			}
		}

		if err := e.stock.RecordMovements(ctx, movements.Stock); err != nil {
			return err
		}

		doc.MarkPosted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		logger.Info(ctx, "document posted",
			"document_type", doc.GetDocumentType(),
			"document_id", doc.GetID(),
			"movements", len(movements.Stock),
		)
		return nil
	})
}

// Unpost reverses all of the document's movements and clears its
// posted flag.
func (e *Engine) Unpost(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewBusinessRule(apperror.CodeDocumentPosted, "document is not posted")
	}

	return e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.stock.ReverseMovements(ctx, doc.GetID(), doc.GetPostedVersion()+1); err != nil {
			return err
		}

		doc.MarkUnposted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		logger.Info(ctx, "document unposted",
			"document_type", doc.GetDocumentType(),
			"document_id", doc.GetID(),
		)
		return nil
	})
}

// checkAvailability aggregates "out" quantities per item and verifies
// each against a locked balance row.
func (e *Engine) checkAvailability(ctx context.Context, movements *MovementSet) error {
	required := make(map[id.ID]entity.StockMovement)
	order := make([]id.ID, 0)
	for _, m := range movements.Stock {
		if m.Type != entity.MovementOut {
			continue
		}
		if agg, ok := required[m.ItemID]; ok {
			agg.Quantity += m.Quantity
			required[m.ItemID] = agg
		} else {
			required[m.ItemID] = m
			order = append(order, m.ItemID)
		}
	}

	reservations := make([]stock.StockReservation, 0, len(order))
	for _, itemID := range order {
		reservations = append(reservations, stock.StockReservation{
			ItemID:      itemID,
			RequiredQty: required[itemID].Quantity,
		})
	}
	return e.stock.CheckAndReserveStock(ctx, reservations)
}
