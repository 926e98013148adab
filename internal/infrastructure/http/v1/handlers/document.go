package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain"
	"stockpro/internal/domain/catalogs/item"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// Shared plumbing for the document handlers: id parsing, list query
// parsing and catalog snapshot resolution for request lines.

// ParseDocID parses the :id path parameter, writing the error response
// on failure.
func (h *BaseHandler) ParseDocID(c *gin.Context) (id.ID, bool) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.Nil(), false
	}
	return docID, true
}

// docListQuery holds the query parameters common to document lists.
// Each handler copies the pointers it supports into its own filter.
type docListQuery struct {
	Base       domain.ListFilter
	Type       *string
	Status     *string
	SupplierID *id.ID
	Posted     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}

func (h *BaseHandler) parseDocListQuery(c *gin.Context) (docListQuery, error) {
	q := docListQuery{Base: domain.DefaultListFilter()}
	q.Base.Search = c.Query("search")
	q.Base.Limit = h.ParseIntQuery(c, "limit", 50)
	q.Base.Offset = h.ParseIntQuery(c, "offset", 0)
	q.Base.OrderBy = c.DefaultQuery("orderBy", "date")
	q.Base.IncludeDeleted = c.Query("includeDeleted") == "true"

	if v := c.Query("type"); v != "" {
		q.Type = &v
	}
	if v := c.Query("status"); v != "" {
		q.Status = &v
	}
	if v := c.Query("supplierId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			return q, apperror.NewValidation("invalid supplierId format")
		}
		q.SupplierID = &parsed
	}
	if v := c.Query("posted"); v != "" {
		val := v == "true"
		q.Posted = &val
	}
	if v := c.Query("dateFrom"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return q, apperror.NewValidation("invalid dateFrom, expected YYYY-MM-DD")
		}
		q.DateFrom = &t
	}
	if v := c.Query("dateTo"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return q, apperror.NewValidation("invalid dateTo, expected YYYY-MM-DD")
		}
		q.DateTo = &t
	}
	return q, nil
}

// lineSnapshot is a request line enriched with the item's catalog data.
// Document lines snapshot the catalog at authoring time so later catalog
// edits do not rewrite history.
type lineSnapshot struct {
	ItemID     id.ID
	SupplierID id.ID

	Code        string
	Name        string
	NameEn      string
	NCM         string
	Description string

	Quantity types.Quantity
	Price    types.Money

	PackageType      string
	UnitsPerPackage  int
	UnitMeasureValue types.Money
	UnitMeasureType  string

	QtyUnit string
}

// SnapshotResolver loads catalog items for document request lines.
type SnapshotResolver struct {
	items *item.Service
}

func NewSnapshotResolver(items *item.Service) *SnapshotResolver {
	return &SnapshotResolver{items: items}
}

// resolve turns request lines into catalog snapshots. A missing price
// falls back to the item's cost price.
func (r *SnapshotResolver) resolve(ctx context.Context, lines []dto.DocumentLineRequest) ([]lineSnapshot, error) {
	out := make([]lineSnapshot, 0, len(lines))
	for i, line := range lines {
		it, err := r.items.GetByID(ctx, line.ItemID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewValidation("unknown item in line").
					WithDetail("line", i+1).
					WithDetail("itemId", line.ItemID.String())
			}
			return nil, err
		}

		snap := lineSnapshot{
			ItemID:           it.ID,
			SupplierID:       it.SupplierID,
			Code:             it.Code,
			Name:             it.Name,
			NameEn:           it.NameEn,
			NCM:              it.NCM,
			Description:      it.Description,
			Quantity:         line.Quantity,
			PackageType:      string(it.PackageType),
			UnitsPerPackage:  it.UnitsPerPackage,
			UnitMeasureValue: it.UnitMeasureValue,
			UnitMeasureType:  it.UnitMeasureType,
			QtyUnit:          it.QtyUnitString(),
		}

		if line.Price != nil {
			snap.Price = *line.Price
		} else {
			snap.Price = it.CostPrice
		}
		if line.QtyUnit != "" {
			snap.QtyUnit = line.QtyUnit
		}

		out = append(out, snap)
	}
	return out, nil
}
