// internal/drive/ingest.go
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aguavida/kpi-backend/internal/domain"
	"github.com/aguavida/kpi-backend/internal/repository"
)

// IngestService pulls POS order export files from Drive into the raw_orders
// table. Records are stored verbatim; the aggregation pipeline owns all
// shape cleanup and deduplication, so re-ingesting a file is harmless but
// wasteful, hence the ingested-files ledger.
type IngestService struct {
	driveService *Service
	sink         repository.OrderSink
}

func NewIngestService(driveService *Service, sink repository.OrderSink) *IngestService {
	return &IngestService{
		driveService: driveService,
		sink:         sink,
	}
}

// SyncResult summarizes one folder sync.
type SyncResult struct {
	FilesSeen     int `json:"files_seen"`
	FilesIngested int `json:"files_ingested"`
	FilesSkipped  int `json:"files_skipped"`
	Records       int `json:"records"`
}

// SyncFolder ingests every not-yet-processed export file in the folder.
func (s *IngestService) SyncFolder(ctx context.Context, folderPath string) (*SyncResult, error) {
	folderID, err := s.driveService.ResolveFolder(folderPath)
	if err != nil {
		return nil, fmt.Errorf("resolve orders folder: %w", err)
	}

	files, err := s.driveService.ListExports(folderID)
	if err != nil {
		return nil, fmt.Errorf("list order exports: %w", err)
	}

	result := &SyncResult{FilesSeen: len(files)}
	for _, file := range files {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".json") {
			result.FilesSkipped++
			continue
		}

		done, err := s.sink.IsFileIngested(ctx, file.ID)
		if err != nil {
			return nil, err
		}
		if done {
			result.FilesSkipped++
			continue
		}

		records, err := s.IngestFile(ctx, file.ID, file.Name)
		if err != nil {
			// One broken export must not block the rest of the folder.
			log.Error().Err(err).Str("file", file.Name).Msg("failed to ingest order export")
			continue
		}

		result.FilesIngested++
		result.Records += records
	}

	return result, nil
}

// IngestFile downloads one export and stores its records.
func (s *IngestService) IngestFile(ctx context.Context, fileID, name string) (int, error) {
	var buf bytes.Buffer
	if err := s.driveService.Download(fileID, &buf); err != nil {
		return 0, fmt.Errorf("download export %s: %w", name, err)
	}

	orders, err := decodeOrderExport(buf.Bytes())
	if err != nil {
		return 0, fmt.Errorf("decode export %s: %w", name, err)
	}

	inserted, err := s.sink.InsertRawOrders(ctx, name, orders)
	if err != nil {
		return 0, fmt.Errorf("store export %s: %w", name, err)
	}

	if err := s.sink.MarkFileIngested(ctx, fileID, name, inserted); err != nil {
		return 0, err
	}

	log.Info().Str("file", name).Int("records", inserted).Msg("ingested order export")
	return inserted, nil
}

// decodeOrderExport accepts both export shapes the POS has produced: a bare
// JSON array of records, or an object with a "pedidos" array.
func decodeOrderExport(data []byte) ([]domain.RawOrder, error) {
	var direct []domain.RawOrder
	if err := json.Unmarshal(data, &direct); err == nil {
		return direct, nil
	}

	var wrapped struct {
		Pedidos []domain.RawOrder `json:"pedidos"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("export is neither an order array nor a pedidos object: %w", err)
	}
	if wrapped.Pedidos == nil {
		return nil, fmt.Errorf("export has no pedidos array")
	}
	return wrapped.Pedidos, nil
}
