package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"stockpro/internal/core/apperror"
	"stockpro/internal/domain/catalogs/supplier"
	"stockpro/internal/infrastructure/storage/postgres"
)

const supplierTable = "cat_suppliers"

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	*BaseCatalogRepo[*supplier.Supplier]
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*supplier.Supplier](
			txm,
			supplierTable,
			postgres.ExtractDBColumns[supplier.Supplier](),
			func() *supplier.Supplier { return &supplier.Supplier{} },
		),
	}
}

// FindByCNPJ retrieves a supplier by normalized CNPJ.
func (r *SupplierRepo) FindByCNPJ(ctx context.Context, cnpj string) (*supplier.Supplier, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"cnpj": cnpj}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	s, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("supplier", cnpj)
		}
		return nil, err
	}
	return s, nil
}
