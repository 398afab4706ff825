// internal/service/kpi_service.go
package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/aguavida/kpi-backend/internal/cache"
	"github.com/aguavida/kpi-backend/internal/domain"
	"github.com/aguavida/kpi-backend/internal/kpi"
	"github.com/aguavida/kpi-backend/internal/repository"
)

// KPIService runs aggregation passes against the order source. The three
// fetches are independent and issued concurrently; the pipeline runs once all
// of them are available.
type KPIService struct {
	source repository.OrderSource
	cache  cache.MetricsCache
	engine *kpi.Engine

	mu       sync.RWMutex
	lastDiag domain.Diagnostics
}

func NewKPIService(source repository.OrderSource, cacheImpl cache.MetricsCache, engine *kpi.Engine) *KPIService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopMetricsCache()
	}
	return &KPIService{source: source, cache: cacheImpl, engine: engine}
}

// GetDashboard returns the metrics for the given reference date, computing
// them when the cache misses.
func (s *KPIService) GetDashboard(ctx context.Context, referenceDate time.Time) (*domain.Metrics, error) {
	if metrics, ok, err := s.cache.Get(ctx, referenceDate); err == nil && ok {
		return metrics, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("kpi: cache get failed")
	}

	metrics, err := s.Compute(ctx, referenceDate)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, referenceDate, metrics); err != nil {
		log.Warn().Err(err).Msg("kpi: cache set failed")
	}
	return metrics, nil
}

// Compute fetches raw inputs in parallel and runs one aggregation pass.
func (s *KPIService) Compute(ctx context.Context, referenceDate time.Time) (*domain.Metrics, error) {
	var (
		rawOrders  []domain.RawOrder
		priceSum   float64
		baseline   domain.BaselineKPIs
		historical []domain.HistoricalPoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawOrders, err = s.source.FetchOrders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		priceSum, err = s.source.FetchPriceSumAllTime(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		baseline, err = s.source.FetchBaselineKPIs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		historical, err = s.source.FetchHistoricalSeries(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch aggregation inputs: %w", err)
	}
	if rawOrders == nil {
		return nil, fmt.Errorf("%w: source returned no order list", repository.ErrDataUnavailable)
	}

	metrics, diag := s.engine.ComputeMetrics(rawOrders, baseline, priceSum, referenceDate)

	crossCheckHistorical(metrics, historical)

	s.mu.Lock()
	s.lastDiag = diag
	s.mu.Unlock()

	if diag.Rejected() > 0 || len(diag.DuplicateIdentities) > 0 || diag.RevenueSourceSwitch {
		log.Info().
			Int("total", diag.TotalRecords).
			Int("rejected", diag.Rejected()).
			Int("duplicates", len(diag.DuplicateIdentities)).
			Int("overrides", diag.QuantityOverrides).
			Bool("revenue_source_switch", diag.RevenueSourceSwitch).
			Msg("aggregation pass finished with recoveries")
	}

	return &metrics, nil
}

// Diagnostics returns what the most recent pass recovered from.
func (s *KPIService) Diagnostics() domain.Diagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastDiag
}

// Historical returns the labeled revenue series for the trend chart.
func (s *KPIService) Historical(ctx context.Context) ([]domain.HistoricalPoint, error) {
	return s.source.FetchHistoricalSeries(ctx)
}

// crossCheckHistorical compares the derived last-month revenue against the
// latest point of the independent historical series. Divergence is only worth
// a warning; the series is advisory, not an input.
func crossCheckHistorical(metrics domain.Metrics, historical []domain.HistoricalPoint) {
	if len(historical) == 0 {
		return
	}
	latest := historical[len(historical)-1]
	if latest.Revenue <= 0 {
		return
	}
	derived := metrics.Periods[domain.PeriodLastMonth].Revenue
	deviation := math.Abs(derived-latest.Revenue) / latest.Revenue
	if deviation > 0.5 {
		log.Warn().
			Str("label", latest.Label).
			Float64("historical", latest.Revenue).
			Float64("derived", derived).
			Msg("derived last-month revenue diverges from historical series")
	}
}
