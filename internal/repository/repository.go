// internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/aguavida/kpi-backend/internal/domain"
)

// ErrDataUnavailable wraps a wholesale failure to obtain the raw order list.
// A pass cannot run without it; individual bad records never produce it.
var ErrDataUnavailable = errors.New("order data unavailable")

// OrderSource provides the raw inputs of one aggregation pass.
type OrderSource interface {
	// FetchOrders returns every raw order record. An empty slice is a valid
	// result and yields all-zero buckets.
	FetchOrders(ctx context.Context) ([]domain.RawOrder, error)

	// FetchPriceSumAllTime returns the sum of every raw order price,
	// independent of any reconciled quantity.
	FetchPriceSumAllTime(ctx context.Context) (float64, error)

	// FetchHistoricalSeries returns the labeled monthly revenue series used
	// as a cross-check signal.
	FetchHistoricalSeries(ctx context.Context) ([]domain.HistoricalPoint, error)

	// FetchBaselineKPIs returns figures the aggregation cannot derive from
	// raw orders alone.
	FetchBaselineKPIs(ctx context.Context) (domain.BaselineKPIs, error)
}

// OrderSink receives raw order records from an ingestion source.
type OrderSink interface {
	InsertRawOrders(ctx context.Context, source string, orders []domain.RawOrder) (int, error)
	MarkFileIngested(ctx context.Context, fileID, name string, records int) error
	IsFileIngested(ctx context.Context, fileID string) (bool, error)
}
