// internal/kpi/derive.go
package kpi

import (
	"math"
	"time"

	"github.com/aguavida/kpi-backend/internal/domain"
)

// Derive computes the financial metrics set from the bucket totals.
// priceSumAllTime is the independent sum of every raw order price; when the
// unit-derived all-time revenue diverges from it beyond the global tolerance,
// the price sum wins and the all-time unit count is recomputed from it.
// Returns the metrics and whether that ground-truth switch fired.
func Derive(buckets map[domain.Period]domain.PeriodTotals, priceSumAllTime float64,
	baseline domain.BaselineKPIs, ref time.Time, cfg Config) (domain.Metrics, bool) {

	switched := false
	allTime := buckets[domain.PeriodAllTime]
	if priceSumAllTime > 0 {
		revenueFromUnits := float64(allTime.Units) * cfg.UnitPrice
		deviation := math.Abs(revenueFromUnits-priceSumAllTime) / priceSumAllTime
		if deviation > cfg.GlobalTolerance {
			// Systemic extraction error across the historical set: trust the
			// raw price sum and rebuild the all-time unit count from it.
			allTime.Units = unitsFromPrice(priceSumAllTime, cfg.UnitPrice)
			switched = true
		}
	}

	figures := make(map[domain.Period]domain.PeriodFigures, len(domain.Periods))
	for _, period := range domain.Periods {
		totals := buckets[period]
		if period == domain.PeriodAllTime {
			totals = allTime
		}
		figures[period] = deriveFigures(totals, cfg)
	}

	thisMonth := figures[domain.PeriodThisMonth]
	lastMonth := figures[domain.PeriodLastMonth]

	averageTicket := 0.0
	if thisMonth.Orders > 0 {
		averageTicket = thisMonth.Revenue / float64(thisMonth.Orders)
	}

	goal := lastMonth.Revenue * cfg.GoalMultiplier
	goalProgress := 0
	if goal > 0 {
		goalProgress = int(math.Round(thisMonth.Revenue / goal * 100))
		if goalProgress > 200 {
			goalProgress = 200
		}
	}

	capacity := 0
	if cfg.CapacityTotalLiters > 0 {
		capacity = int(math.Round(thisMonth.Liters / cfg.CapacityTotalLiters * 100))
		if capacity > 100 {
			capacity = 100
		}
	}

	return domain.Metrics{
		ReferenceDate:              midnight(ref),
		Periods:                    figures,
		AverageTicket:              averageTicket,
		GoalRevenue:                goal,
		GoalProgressPercent:        goalProgress,
		CapacityUtilizationPercent: capacity,
		Baseline:                   baseline,
	}, switched
}

// deriveFigures applies the fixed identities to one bucket. Tax is already
// included in the unit price, hence revenue * rate / (1 + rate).
func deriveFigures(totals domain.PeriodTotals, cfg Config) domain.PeriodFigures {
	revenue := float64(totals.Units) * cfg.UnitPrice
	cost := cfg.FixedCost + float64(totals.Units)*cfg.VariableCostPerUnit
	tax := 0.0
	if cfg.TaxRate > 0 {
		tax = revenue * cfg.TaxRate / (1 + cfg.TaxRate)
	}
	return domain.PeriodFigures{
		Units:   totals.Units,
		Orders:  totals.Orders,
		Liters:  float64(totals.Units) * cfg.LitersPerUnit,
		Revenue: revenue,
		Tax:     tax,
		Cost:    cost,
		Profit:  revenue - cost,
	}
}
