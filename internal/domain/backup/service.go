package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/tx"
	"stockpro/pkg/logger"
)

// Service produces and consumes backup archives.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a backup service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Export writes a gzip-compressed JSON snapshot of every table to w.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	snapshot := &Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		Tables:     make(map[string][]json.RawMessage, len(restoreOrder)),
	}

	for _, table := range restoreOrder {
		rows, err := s.repo.ExportTable(ctx, table)
		if err != nil {
			return fmt.Errorf("export table %s: %w", table, err)
		}
		snapshot.Tables[table] = rows
	}

	gz := gzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(snapshot); err != nil {
		gz.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}

	logger.Info(ctx, "backup exported",
		"tables", len(snapshot.Tables),
		"rows", snapshot.RowCount())
	return nil
}

// Import reads a snapshot archive and upserts its rows table by table,
// parent tables first. The whole restore runs in one transaction, so a
// failing row leaves the dataset untouched. Tables present in the
// archive but unknown to this version are skipped and reported.
func (s *Service) Import(ctx context.Context, r io.Reader) (*RestoreSummary, error) {
	snapshot, err := decode(r)
	if err != nil {
		return nil, err
	}

	summary := &RestoreSummary{
		ExportedAt: snapshot.ExportedAt,
		Restored:   make(map[string]int, len(snapshot.Tables)),
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, table := range restoreOrder {
			rows, ok := snapshot.Tables[table]
			if !ok {
				continue
			}
			n, err := s.repo.RestoreTable(ctx, table, rows)
			if err != nil {
				return fmt.Errorf("restore table %s: %w", table, err)
			}
			summary.Restored[table] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(restoreOrder))
	for _, table := range restoreOrder {
		known[table] = true
	}
	for table := range snapshot.Tables {
		if !known[table] {
			summary.Skipped = append(summary.Skipped, table)
		}
	}

	logger.Info(ctx, "backup imported",
		"tables", len(summary.Restored),
		"skipped", len(summary.Skipped))
	return summary, nil
}

func decode(r io.Reader) (*Snapshot, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, apperror.NewValidation("file is not a valid backup archive")
	}
	defer gz.Close()

	var snapshot Snapshot
	if err := json.NewDecoder(gz).Decode(&snapshot); err != nil {
		return nil, apperror.NewValidation("backup archive is corrupted or not JSON")
	}
	if snapshot.Version > SnapshotVersion {
		return nil, apperror.NewValidation(
			fmt.Sprintf("backup version %d is newer than supported version %d", snapshot.Version, SnapshotVersion))
	}
	if snapshot.Tables == nil {
		return nil, apperror.NewValidation("backup archive contains no tables")
	}
	return &snapshot, nil
}
