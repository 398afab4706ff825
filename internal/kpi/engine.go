// internal/kpi/engine.go

// Package kpi implements the order-to-metrics aggregation pipeline: raw order
// records are normalized, their quantities reconciled against price,
// deduplicated, bucketed into calendar periods and derived into the financial
// metrics the dashboard renders.
//
// The pipeline is a single synchronous, side-effect-free computation: same
// inputs and reference date, same output. It never logs; everything it
// recovered from is reported back as Diagnostics.
package kpi

import (
	"errors"
	"time"

	"github.com/aguavida/kpi-backend/internal/domain"
)

// Engine runs aggregation passes with a fixed business configuration.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// ComputeMetrics is the single entry point of the core. Bad records are
// excluded and tallied; only the caller can fail a pass (by not having a raw
// order list to hand in).
func (e *Engine) ComputeMetrics(rawOrders []domain.RawOrder, baseline domain.BaselineKPIs,
	priceSumAllTime float64, referenceDate time.Time) (domain.Metrics, domain.Diagnostics) {

	diag := domain.Diagnostics{TotalRecords: len(rawOrders)}
	orders := make([]domain.Order, 0, len(rawOrders))

	for _, raw := range rawOrders {
		order, err := Normalize(raw, e.cfg)
		if err != nil {
			switch {
			case errors.Is(err, ErrWrongLocal):
				diag.RejectedWrongLocal++
			default:
				diag.RejectedInvalidDate++
			}
			continue
		}

		res := Reconcile(raw, order.Price, e.cfg)
		if res.Overridden {
			diag.QuantityOverrides++
		}
		if res.Units <= 0 {
			diag.RejectedNoQuantity++
			continue
		}

		order.Units = res.Units
		order.UnitsSource = res.Source
		orders = append(orders, order)
	}

	deduped, duplicates := Dedupe(orders)
	diag.DuplicateIdentities = duplicates

	buckets := BucketOrders(deduped, referenceDate)

	metrics, switched := Derive(buckets, priceSumAllTime, baseline, referenceDate, e.cfg)
	diag.RevenueSourceSwitch = switched

	return metrics, diag
}
