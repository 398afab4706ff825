package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguavida/kpi-backend/internal/domain"
	"github.com/aguavida/kpi-backend/internal/kpi"
	"github.com/aguavida/kpi-backend/internal/repository"
)

type fakeSource struct {
	orders     []domain.RawOrder
	priceSum   float64
	baseline   domain.BaselineKPIs
	historical []domain.HistoricalPoint
	ordersErr  error
}

func (f *fakeSource) FetchOrders(ctx context.Context) ([]domain.RawOrder, error) {
	return f.orders, f.ordersErr
}

func (f *fakeSource) FetchPriceSumAllTime(ctx context.Context) (float64, error) {
	return f.priceSum, nil
}

func (f *fakeSource) FetchHistoricalSeries(ctx context.Context) ([]domain.HistoricalPoint, error) {
	return f.historical, nil
}

func (f *fakeSource) FetchBaselineKPIs(ctx context.Context) (domain.BaselineKPIs, error) {
	return f.baseline, nil
}

func newTestService(source *fakeSource) *KPIService {
	return NewKPIService(source, nil, kpi.NewEngine(kpi.DefaultConfig()))
}

func TestComputeMergesAllInputs(t *testing.T) {
	source := &fakeSource{
		orders: []domain.RawOrder{
			{"id": "A", "fecha": "15-11-2024", "precio": 4000.0, "cantidad": 2.0},
		},
		priceSum: 4000,
		baseline: domain.BaselineKPIs{ActiveCustomers: 12},
		historical: []domain.HistoricalPoint{
			{Label: "octubre", Revenue: 180000},
		},
	}
	svc := newTestService(source)

	metrics, err := svc.Compute(context.Background(), time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 2, metrics.Periods[domain.PeriodToday].Units)
	assert.Equal(t, 12, metrics.Baseline.ActiveCustomers)

	diag := svc.Diagnostics()
	assert.Equal(t, 1, diag.TotalRecords)
	assert.Zero(t, diag.Rejected())
}

func TestComputeEmptyOrderListIsValid(t *testing.T) {
	svc := newTestService(&fakeSource{orders: []domain.RawOrder{}})

	metrics, err := svc.Compute(context.Background(), time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, metrics.Periods[domain.PeriodAllTime].Units)
}

func TestComputePropagatesSourceFailure(t *testing.T) {
	svc := newTestService(&fakeSource{
		ordersErr: repository.ErrDataUnavailable,
	})

	_, err := svc.Compute(context.Background(), time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrDataUnavailable))
}

func TestComputeNilOrderListFails(t *testing.T) {
	svc := newTestService(&fakeSource{orders: nil})

	_, err := svc.Compute(context.Background(), time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrDataUnavailable))
}

func TestGetDashboardUsesComputeOnCacheMiss(t *testing.T) {
	source := &fakeSource{
		orders:   []domain.RawOrder{{"id": "A", "fecha": "15-11-2024", "precio": 2000.0, "cantidad": 1.0}},
		priceSum: 2000,
	}
	svc := newTestService(source)

	metrics, err := svc.GetDashboard(context.Background(), time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Periods[domain.PeriodToday].Units)
}
