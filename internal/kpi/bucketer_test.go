package kpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguavida/kpi-backend/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDedupeFirstWins(t *testing.T) {
	orders := []domain.Order{
		{Identity: "X", Units: 1, Date: day(2024, 3, 15)},
		{Identity: "X", Units: 5, Date: day(2024, 3, 15)},
		{Identity: "Y", Units: 2, Date: day(2024, 3, 16)},
	}

	kept, duplicates := Dedupe(orders)
	require.Len(t, kept, 2)
	assert.Equal(t, 1, kept[0].Units, "first occurrence must win")
	assert.Equal(t, []string{"X"}, duplicates)
}

func TestPeriodWindows(t *testing.T) {
	// Friday 2024-11-15.
	ref := day(2024, 11, 15)
	windows := periodWindows(ref)

	assert.Equal(t, day(2024, 11, 15), windows[domain.PeriodToday].start)
	assert.Equal(t, day(2024, 11, 15), windows[domain.PeriodToday].end)

	assert.Equal(t, day(2024, 11, 11), windows[domain.PeriodThisWeek].start, "week starts on Monday")
	assert.Equal(t, day(2024, 11, 1), windows[domain.PeriodThisMonth].start)

	assert.Equal(t, day(2024, 10, 1), windows[domain.PeriodLastMonth].start)
	assert.Equal(t, day(2024, 10, 31), windows[domain.PeriodLastMonth].end)

	assert.Equal(t, day(2024, 10, 15), windows[domain.PeriodSameDayLastMonth].start)

	// Monday minus seven days is 2024-11-04, still November, so the window
	// falls back to the last full Mon-Sun week inside October.
	assert.Equal(t, day(2024, 10, 21), windows[domain.PeriodSameWeekLastMonth].start)
	assert.Equal(t, day(2024, 10, 27), windows[domain.PeriodSameWeekLastMonth].end)
}

func TestPeriodWindowsFirstWeekOfMonth(t *testing.T) {
	// Wednesday 2024-10-02: Monday is 2024-09-30, minus seven days is
	// 2024-09-23, which is inside September (last month) so no fallback.
	windows := periodWindows(day(2024, 10, 2))
	assert.Equal(t, day(2024, 9, 30), windows[domain.PeriodThisWeek].start)
	assert.Equal(t, day(2024, 9, 23), windows[domain.PeriodSameWeekLastMonth].start)
	assert.Equal(t, day(2024, 9, 29), windows[domain.PeriodSameWeekLastMonth].end)
}

func TestPeriodWindowsSundayReference(t *testing.T) {
	// Sunday maps to six days since Monday.
	windows := periodWindows(day(2024, 11, 17))
	assert.Equal(t, day(2024, 11, 11), windows[domain.PeriodThisWeek].start)
}

func TestPeriodWindowsJanuary(t *testing.T) {
	windows := periodWindows(day(2025, 1, 10))
	assert.Equal(t, day(2024, 12, 1), windows[domain.PeriodLastMonth].start)
	assert.Equal(t, day(2024, 12, 31), windows[domain.PeriodLastMonth].end)
	assert.Equal(t, day(2024, 12, 10), windows[domain.PeriodSameDayLastMonth].start)
}

func TestBucketOrders(t *testing.T) {
	ref := day(2024, 11, 15)
	orders := []domain.Order{
		{Identity: "a", Units: 2, Date: day(2024, 11, 15)}, // today
		{Identity: "b", Units: 1, Date: day(2024, 11, 11)}, // this week
		{Identity: "c", Units: 3, Date: day(2024, 11, 2)},  // this month
		{Identity: "d", Units: 4, Date: day(2024, 10, 22)}, // last month + same week
		{Identity: "e", Units: 5, Date: day(2024, 10, 15)}, // last month + same day
		{Identity: "f", Units: 7, Date: day(2023, 6, 1)},   // all time only
	}

	buckets := BucketOrders(orders, ref)

	assert.Equal(t, domain.PeriodTotals{Units: 2, Orders: 1}, buckets[domain.PeriodToday])
	assert.Equal(t, domain.PeriodTotals{Units: 3, Orders: 2}, buckets[domain.PeriodThisWeek])
	assert.Equal(t, domain.PeriodTotals{Units: 6, Orders: 3}, buckets[domain.PeriodThisMonth])
	assert.Equal(t, domain.PeriodTotals{Units: 9, Orders: 2}, buckets[domain.PeriodLastMonth])
	assert.Equal(t, domain.PeriodTotals{Units: 4, Orders: 1}, buckets[domain.PeriodSameWeekLastMonth])
	assert.Equal(t, domain.PeriodTotals{Units: 5, Orders: 1}, buckets[domain.PeriodSameDayLastMonth])
	assert.Equal(t, domain.PeriodTotals{Units: 22, Orders: 6}, buckets[domain.PeriodAllTime])
}

// Nested-window unit counts can only grow.
func TestBucketMonotonicity(t *testing.T) {
	ref := day(2024, 11, 15)
	orders := []domain.Order{
		{Identity: "1", Units: 1, Date: day(2024, 11, 15)},
		{Identity: "2", Units: 2, Date: day(2024, 11, 12)},
		{Identity: "3", Units: 4, Date: day(2024, 11, 3)},
		{Identity: "4", Units: 8, Date: day(2024, 9, 30)},
	}

	buckets := BucketOrders(orders, ref)
	today := buckets[domain.PeriodToday].Units
	week := buckets[domain.PeriodThisWeek].Units
	month := buckets[domain.PeriodThisMonth].Units
	all := buckets[domain.PeriodAllTime].Units

	assert.LessOrEqual(t, today, week)
	assert.LessOrEqual(t, week, month)
	assert.LessOrEqual(t, month, all)
}

func TestBucketIgnoresTimeOfDay(t *testing.T) {
	ref := time.Date(2024, 11, 15, 17, 45, 3, 0, time.UTC)
	orders := []domain.Order{
		{Identity: "a", Units: 1, Date: time.Date(2024, 11, 15, 23, 59, 0, 0, time.UTC)},
	}

	buckets := BucketOrders(orders, ref)
	assert.Equal(t, 1, buckets[domain.PeriodToday].Units)
}

func TestBucketEmptyInput(t *testing.T) {
	buckets := BucketOrders(nil, day(2024, 11, 15))
	for _, period := range domain.Periods {
		assert.Equal(t, domain.PeriodTotals{}, buckets[period], string(period))
	}
}
