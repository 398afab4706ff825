// internal/repository/postgres/ingest.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aguavida/kpi-backend/internal/domain"
	"github.com/aguavida/kpi-backend/internal/repository"
)

// IngestRepository writes raw order records coming out of the Drive export
// ingestion and tracks which export files were already processed.
type IngestRepository struct {
	db *DB
}

func NewIngestRepository(db *DB) *IngestRepository {
	return &IngestRepository{db: db}
}

var _ repository.OrderSink = (*IngestRepository)(nil)

// InsertRawOrders stores the records of one export file in a single
// transaction. Payloads are kept verbatim; duplicates are fine here, the
// aggregation pipeline deduplicates by order identity.
func (r *IngestRepository) InsertRawOrders(ctx context.Context, source string, orders []domain.RawOrder) (int, error) {
	inserted := 0
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO raw_orders (source, payload, created_at) VALUES ($1, $2, NOW())`)
		if err != nil {
			return fmt.Errorf("prepare raw order insert: %w", err)
		}
		defer stmt.Close()

		for _, order := range orders {
			payload, err := json.Marshal(order)
			if err != nil {
				return fmt.Errorf("encode raw order: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, source, payload); err != nil {
				return fmt.Errorf("insert raw order: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *IngestRepository) MarkFileIngested(ctx context.Context, fileID, name string, records int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingested_files (file_id, name, records, ingested_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (file_id) DO UPDATE SET
			records = EXCLUDED.records,
			ingested_at = NOW()
	`, fileID, name, records)
	if err != nil {
		return fmt.Errorf("mark file ingested: %w", err)
	}
	return nil
}

func (r *IngestRepository) IsFileIngested(ctx context.Context, fileID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM ingested_files WHERE file_id = $1)`, fileID)
	if err != nil {
		return false, fmt.Errorf("check ingested file: %w", err)
	}
	return exists, nil
}
