package kpi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguavida/kpi-backend/internal/domain"
)

func emptyBuckets() map[domain.Period]domain.PeriodTotals {
	buckets := make(map[domain.Period]domain.PeriodTotals)
	for _, period := range domain.Periods {
		buckets[period] = domain.PeriodTotals{}
	}
	return buckets
}

func TestDeriveFigures(t *testing.T) {
	cfg := DefaultConfig()
	fig := deriveFigures(domain.PeriodTotals{Units: 100, Orders: 40}, cfg)

	assert.Equal(t, 200000.0, fig.Revenue)
	assert.Equal(t, 2000.0, fig.Liters)
	assert.Equal(t, cfg.FixedCost+100*cfg.VariableCostPerUnit, fig.Cost)
	assert.Equal(t, fig.Revenue-fig.Cost, fig.Profit)

	// Tax is included in the unit price: revenue * r / (1 + r).
	wantTax := 200000.0 * 0.19 / 1.19
	assert.InDelta(t, wantTax, fig.Tax, 1e-9)
}

func TestDeriveAverageTicketAndGoal(t *testing.T) {
	cfg := DefaultConfig()
	buckets := emptyBuckets()
	buckets[domain.PeriodThisMonth] = domain.PeriodTotals{Units: 110, Orders: 20}
	buckets[domain.PeriodLastMonth] = domain.PeriodTotals{Units: 100, Orders: 25}
	buckets[domain.PeriodAllTime] = domain.PeriodTotals{Units: 210, Orders: 45}

	metrics, switched := Derive(buckets, 420000, domain.BaselineKPIs{}, day(2024, 11, 15), cfg)
	require.False(t, switched)

	assert.InDelta(t, 220000.0/20, metrics.AverageTicket, 1e-9)

	// Goal: last month revenue (200000) * 1.10 = 220000; this month is
	// exactly on goal.
	assert.InDelta(t, 220000.0, metrics.GoalRevenue, 1e-9)
	assert.Equal(t, 100, metrics.GoalProgressPercent)

	// 110 units * 20 liters = 2200 of 60000 liters.
	assert.Equal(t, 4, metrics.CapacityUtilizationPercent)
}

func TestDeriveZeroGuards(t *testing.T) {
	cfg := DefaultConfig()
	metrics, switched := Derive(emptyBuckets(), 0, domain.BaselineKPIs{}, day(2024, 11, 15), cfg)

	require.False(t, switched)
	assert.Zero(t, metrics.AverageTicket)
	assert.Zero(t, metrics.GoalProgressPercent)
	assert.Zero(t, metrics.CapacityUtilizationPercent)
	assert.Zero(t, metrics.Periods[domain.PeriodAllTime].Revenue)
}

func TestDeriveGoalProgressCap(t *testing.T) {
	cfg := DefaultConfig()
	buckets := emptyBuckets()
	buckets[domain.PeriodThisMonth] = domain.PeriodTotals{Units: 1000, Orders: 100}
	buckets[domain.PeriodLastMonth] = domain.PeriodTotals{Units: 10, Orders: 5}
	buckets[domain.PeriodAllTime] = domain.PeriodTotals{Units: 1010, Orders: 105}

	metrics, _ := Derive(buckets, 2020000, domain.BaselineKPIs{}, day(2024, 11, 15), cfg)
	assert.Equal(t, 200, metrics.GoalProgressPercent)
}

func TestDeriveCapacityCap(t *testing.T) {
	cfg := DefaultConfig()
	buckets := emptyBuckets()
	// 5000 units * 20 L = 100000 L against a 60000 L capacity.
	buckets[domain.PeriodThisMonth] = domain.PeriodTotals{Units: 5000, Orders: 900}
	buckets[domain.PeriodAllTime] = domain.PeriodTotals{Units: 5000, Orders: 900}

	metrics, _ := Derive(buckets, 10000000, domain.BaselineKPIs{}, day(2024, 11, 15), cfg)
	assert.Equal(t, 100, metrics.CapacityUtilizationPercent)
}

// A systemic extraction error across the historical set: the unit-derived
// all-time revenue is double the raw price sum, so the price sum wins.
func TestDeriveGlobalRevenueSwitch(t *testing.T) {
	cfg := DefaultConfig()
	buckets := emptyBuckets()
	buckets[domain.PeriodAllTime] = domain.PeriodTotals{Units: 60000, Orders: 3000}

	priceSum := 60000000.0 // units say 120,000,000
	metrics, switched := Derive(buckets, priceSum, domain.BaselineKPIs{}, day(2024, 11, 15), cfg)

	require.True(t, switched)
	allTime := metrics.Periods[domain.PeriodAllTime]
	assert.Equal(t, 30000, allTime.Units)
	assert.InDelta(t, priceSum, allTime.Revenue, 1e-6)

	// Conservation holds after the correction.
	assert.InDelta(t, float64(allTime.Units)*cfg.UnitPrice, allTime.Revenue, 1e-9)
}

func TestDeriveNoSwitchWithinTolerance(t *testing.T) {
	cfg := DefaultConfig()
	buckets := emptyBuckets()
	buckets[domain.PeriodAllTime] = domain.PeriodTotals{Units: 1000, Orders: 500}

	// Unit revenue 2,000,000 against a sum of 1,500,000: 33% deviation,
	// under the 50% bound.
	metrics, switched := Derive(buckets, 1500000, domain.BaselineKPIs{}, day(2024, 11, 15), cfg)
	require.False(t, switched)
	assert.Equal(t, 1000, metrics.Periods[domain.PeriodAllTime].Units)
}

// Conservation: all-time revenue always equals unit count times unit price,
// with or without the ground-truth switch.
func TestRevenueConservation(t *testing.T) {
	cfg := DefaultConfig()
	for _, priceSum := range []float64{0, 1500000, 60000000, 500000000} {
		buckets := emptyBuckets()
		buckets[domain.PeriodAllTime] = domain.PeriodTotals{Units: 1000, Orders: 500}
		metrics, _ := Derive(buckets, priceSum, domain.BaselineKPIs{}, day(2024, 11, 15), cfg)

		allTime := metrics.Periods[domain.PeriodAllTime]
		assert.True(t,
			math.Abs(allTime.Revenue-float64(allTime.Units)*cfg.UnitPrice) < 1e-9,
			"priceSum=%v", priceSum)
	}
}

func TestDeriveBaselinePassthrough(t *testing.T) {
	cfg := DefaultConfig()
	baseline := domain.BaselineKPIs{
		RevenueLastMonth:    123456,
		OrderCountLastMonth: 78,
		ActiveCustomers:     321,
	}
	metrics, _ := Derive(emptyBuckets(), 0, baseline, day(2024, 11, 15), cfg)
	assert.Equal(t, baseline, metrics.Baseline)
}
