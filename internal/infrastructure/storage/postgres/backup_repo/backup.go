// Package backup_repo provides the PostgreSQL implementation for backup
// export and restore.
package backup_repo

import (
	"context"
	"encoding/json"
	"fmt"

	"stockpro/internal/domain/backup"
	"stockpro/internal/infrastructure/storage/postgres"
)

// tableSpec describes how one logical snapshot table maps to storage.
// Documents carry their lines inline as a "lines" jsonb array so a
// snapshot row is self-contained.
type tableSpec struct {
	physical  string
	lineTable string
}

var tableSpecs = map[string]tableSpec{
	backup.TableSuppliers:      {physical: "cat_suppliers"},
	backup.TableItems:          {physical: "cat_items"},
	backup.TableProfiles:       {physical: "users"},
	backup.TableOperations:     {physical: "doc_operations", lineTable: "doc_operation_items"},
	backup.TableMovements:      {physical: "reg_stock_movements"},
	backup.TablePurchaseOrders: {physical: "doc_purchase_orders", lineTable: "doc_purchase_order_lines"},
	backup.TableSimulations:    {physical: "doc_simulations", lineTable: "doc_simulation_items"},
}

// BackupRepo implements backup.Repository.
type BackupRepo struct {
	txm *postgres.TxManager
}

// NewBackupRepo creates a new backup repository.
func NewBackupRepo(txm *postgres.TxManager) *BackupRepo {
	return &BackupRepo{txm: txm}
}

// ExportTable dumps all rows of a logical table as JSON objects. Document
// tables embed their lines under a "lines" key.
func (r *BackupRepo) ExportTable(ctx context.Context, table string) ([]json.RawMessage, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return nil, fmt.Errorf("unknown backup table %q", table)
	}

	var query string
	if spec.lineTable != "" {
		query = fmt.Sprintf(`
			SELECT to_jsonb(d) || jsonb_build_object('lines', COALESCE(
				(SELECT jsonb_agg(to_jsonb(l) ORDER BY l.line_no)
				 FROM %s l WHERE l.document_id = d.id),
				'[]'::jsonb))
			FROM %s d
			ORDER BY d.created_at
		`, spec.lineTable, spec.physical)
	} else {
		query = fmt.Sprintf(`SELECT to_jsonb(t) FROM %s t ORDER BY t.created_at`, spec.physical)
	}

	querier := r.txm.GetQuerier(ctx)
	dbRows, err := querier.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", table, err)
	}
	defer dbRows.Close()

	var rows []json.RawMessage
	for dbRows.Next() {
		var row json.RawMessage
		if err := dbRows.Scan(&row); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		rows = append(rows, row)
	}
	if err := dbRows.Err(); err != nil {
		return nil, fmt.Errorf("export %s: %w", table, err)
	}

	return rows, nil
}

// RestoreTable replaces the contents of a logical table with the snapshot
// rows. Must run inside the restore transaction: TRUNCATE CASCADE clears
// dependent tables, which the caller restores afterwards in parent-first
// order.
func (r *BackupRepo) RestoreTable(ctx context.Context, table string, rows []json.RawMessage) (int, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return 0, fmt.Errorf("unknown backup table %q", table)
	}

	querier := r.txm.GetQuerier(ctx)

	truncateSQL := fmt.Sprintf("TRUNCATE %s CASCADE", spec.physical)
	if spec.lineTable != "" {
		truncateSQL = fmt.Sprintf("TRUNCATE %s, %s CASCADE", spec.physical, spec.lineTable)
	}
	if _, err := querier.Exec(ctx, truncateSQL); err != nil {
		return 0, fmt.Errorf("truncate %s: %w", table, err)
	}

	insertSQL := fmt.Sprintf(
		`INSERT INTO %s SELECT * FROM jsonb_populate_record(NULL::%s, ($1::jsonb) - 'lines')`,
		spec.physical, spec.physical,
	)
	var lineSQL string
	if spec.lineTable != "" {
		lineSQL = fmt.Sprintf(
			`INSERT INTO %s SELECT * FROM jsonb_populate_recordset(NULL::%s, COALESCE(($1::jsonb) -> 'lines', '[]'::jsonb))`,
			spec.lineTable, spec.lineTable,
		)
	}

	for i, row := range rows {
		if _, err := querier.Exec(ctx, insertSQL, row); err != nil {
			return 0, fmt.Errorf("restore %s row %d: %w", table, i, err)
		}
		if lineSQL != "" {
			if _, err := querier.Exec(ctx, lineSQL, row); err != nil {
				return 0, fmt.Errorf("restore %s row %d lines: %w", table, i, err)
			}
		}
	}

	return len(rows), nil
}

// Ensure interface compliance.
var _ backup.Repository = (*BackupRepo)(nil)
