// internal/repository/postgres/orders.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aguavida/kpi-backend/internal/domain"
	"github.com/aguavida/kpi-backend/internal/repository"
)

// OrderRepository reads raw order records and the KPI side tables. Raw
// payloads are stored as JSONB exactly as the POS exported them; shape
// cleanup is the aggregation pipeline's job, not the database's.
type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

var _ repository.OrderSource = (*OrderRepository)(nil)

func (r *OrderRepository) FetchOrders(ctx context.Context) ([]domain.RawOrder, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT payload FROM raw_orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query raw orders: %v", repository.ErrDataUnavailable, err)
	}
	defer rows.Close()

	var orders []domain.RawOrder
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: scan raw order: %v", repository.ErrDataUnavailable, err)
		}

		var raw domain.RawOrder
		if err := json.Unmarshal(payload, &raw); err != nil {
			return nil, fmt.Errorf("%w: decode raw order payload: %v", repository.ErrDataUnavailable, err)
		}
		orders = append(orders, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate raw orders: %v", repository.ErrDataUnavailable, err)
	}

	if orders == nil {
		orders = make([]domain.RawOrder, 0)
	}
	return orders, nil
}

func (r *OrderRepository) FetchPriceSumAllTime(ctx context.Context) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(
			COALESCE(
				NULLIF(payload->>'precio', '')::numeric,
				NULLIF(payload->>'price', '')::numeric,
				0
			)
		), 0)
		FROM raw_orders
	`

	var sum float64
	if err := r.db.GetContext(ctx, &sum, query); err != nil {
		return 0, fmt.Errorf("sum raw order prices: %w", err)
	}
	return sum, nil
}

func (r *OrderRepository) FetchHistoricalSeries(ctx context.Context) ([]domain.HistoricalPoint, error) {
	var points []domain.HistoricalPoint
	err := r.db.SelectContext(ctx, &points,
		`SELECT label, revenue FROM historical_sales ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query historical sales: %w", err)
	}
	if points == nil {
		points = make([]domain.HistoricalPoint, 0)
	}
	return points, nil
}

func (r *OrderRepository) FetchBaselineKPIs(ctx context.Context) (domain.BaselineKPIs, error) {
	const query = `
		SELECT revenue_last_month, order_count_last_month, active_customers, new_customers
		FROM baseline_kpis
		ORDER BY captured_at DESC
		LIMIT 1
	`

	var baseline domain.BaselineKPIs
	err := r.db.GetContext(ctx, &baseline, query)
	if err == sql.ErrNoRows {
		// No snapshot yet; derived figures still work without one.
		return domain.BaselineKPIs{}, nil
	}
	if err != nil {
		return domain.BaselineKPIs{}, fmt.Errorf("query baseline kpis: %w", err)
	}
	return baseline, nil
}
