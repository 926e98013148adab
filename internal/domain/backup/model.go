// Package backup exports the full dataset as a gzip-compressed JSON
// snapshot and restores it with per-row upserts. A restore applies
// tables in referential order so foreign keys resolve; rows sharing an
// id with existing data are overwritten.
package backup

import (
	"encoding/json"
	"time"
)

// SnapshotVersion is written into every archive. Import rejects
// archives with a higher version than it knows how to read.
const SnapshotVersion = 1

// Table names as they appear in a snapshot archive.
const (
	TableSuppliers      = "suppliers"
	TableItems          = "items"
	TableProfiles       = "profiles"
	TableOperations     = "operations"
	TableMovements      = "stock_movements"
	TablePurchaseOrders = "purchase_orders"
	TableSimulations    = "simulations"
)

// restoreOrder lists tables parent-first so upserts never hit a
// dangling reference.
var restoreOrder = []string{
	TableSuppliers,
	TableItems,
	TableProfiles,
	TableOperations,
	TableMovements,
	TablePurchaseOrders,
	TableSimulations,
}

// Snapshot is the decoded form of a backup archive. Rows stay raw so
// the snapshot format survives schema additions on either side.
type Snapshot struct {
	Version    int                          `json:"version"`
	ExportedAt time.Time                    `json:"exportedAt"`
	Tables     map[string][]json.RawMessage `json:"tables"`
}

// RowCount returns the total number of rows across all tables.
func (s *Snapshot) RowCount() int {
	n := 0
	for _, rows := range s.Tables {
		n += len(rows)
	}
	return n
}

// RestoreSummary reports what an import actually applied.
type RestoreSummary struct {
	ExportedAt time.Time      `json:"exportedAt"`
	Restored   map[string]int `json:"restored"`
	Skipped    []string       `json:"skipped,omitempty"`
}
