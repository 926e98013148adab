package backup

import (
	"context"
	"encoding/json"
)

// Repository streams table contents in and out of storage.
// The postgres implementation serializes each row as the same JSON the
// API exposes, so archives are readable outside the application.
type Repository interface {
	// ExportTable returns every row of the table as raw JSON.
	ExportTable(ctx context.Context, table string) ([]json.RawMessage, error)

	// RestoreTable replaces the table contents with the given rows and
	// returns how many were written. Rows that fail to decode abort the
	// restore.
	RestoreTable(ctx context.Context, table string, rows []json.RawMessage) (int, error)
}
