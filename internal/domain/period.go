// internal/domain/period.go
package domain

// Period is one of the calendar windows the dashboard aggregates over.
// Windows are recomputed from the reference date on every aggregation pass;
// they have no lifecycle of their own.
type Period string

const (
	PeriodToday             Period = "today"
	PeriodThisWeek          Period = "this_week"
	PeriodThisMonth         Period = "this_month"
	PeriodLastMonth         Period = "last_month"
	PeriodSameWeekLastMonth Period = "same_week_last_month"
	PeriodSameDayLastMonth  Period = "same_day_last_month"
	PeriodAllTime           Period = "all_time"
)

// Periods lists every window in a stable order.
var Periods = []Period{
	PeriodToday,
	PeriodThisWeek,
	PeriodThisMonth,
	PeriodLastMonth,
	PeriodSameWeekLastMonth,
	PeriodSameDayLastMonth,
	PeriodAllTime,
}

// PeriodTotals accumulates the deduplicated orders whose date falls inside a
// period window.
type PeriodTotals struct {
	Units  int `json:"units"`
	Orders int `json:"orders"`
}
