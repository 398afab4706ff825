// internal/kpi/bucketer.go
package kpi

import (
	"time"

	"github.com/aguavida/kpi-backend/internal/domain"
)

// Dedupe keeps the first order seen for each identity, in input order, and
// returns the identities of every dropped duplicate.
func Dedupe(orders []domain.Order) ([]domain.Order, []string) {
	seen := make(map[string]struct{}, len(orders))
	kept := make([]domain.Order, 0, len(orders))
	var duplicates []string

	for _, order := range orders {
		if _, ok := seen[order.Identity]; ok {
			duplicates = append(duplicates, order.Identity)
			continue
		}
		seen[order.Identity] = struct{}{}
		kept = append(kept, order)
	}
	return kept, duplicates
}

// window is a closed whole-day interval. openStart marks the all-time window.
type window struct {
	start     time.Time
	end       time.Time
	openStart bool
}

func (w window) contains(d time.Time) bool {
	if d.After(w.end) {
		return false
	}
	return w.openStart || !d.Before(w.start)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayOf returns the Monday of t's ISO week (Sunday counts as six days
// since Monday).
func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return midnight(t).AddDate(0, 0, -offset)
}

// periodWindows computes every calendar window relative to the reference
// date. Windows are throwaway values recomputed on each pass.
func periodWindows(ref time.Time) map[domain.Period]window {
	today := midnight(ref)
	weekStart := mondayOf(today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)
	lastMonthEnd := monthStart.AddDate(0, 0, -1)

	// Same day-of-month in the previous month. Date normalization applies,
	// matching how the dashboard always computed it (31st of a short month
	// rolls forward).
	sameDay := time.Date(lastMonthStart.Year(), lastMonthStart.Month(), today.Day(),
		0, 0, 0, 0, today.Location())

	// The comparable week one month back starts seven days before this
	// week's Monday. Whenever that Monday does not land inside last month,
	// use the last full Monday-to-Sunday week ending on or before the last
	// day of last month instead.
	sameWeekStart := weekStart.AddDate(0, 0, -7)
	if sameWeekStart.Month() != lastMonthStart.Month() || sameWeekStart.Year() != lastMonthStart.Year() {
		lastSunday := lastMonthEnd.AddDate(0, 0, -(int(lastMonthEnd.Weekday()) % 7))
		sameWeekStart = lastSunday.AddDate(0, 0, -6)
	}

	return map[domain.Period]window{
		domain.PeriodToday:             {start: today, end: today},
		domain.PeriodThisWeek:          {start: weekStart, end: today},
		domain.PeriodThisMonth:         {start: monthStart, end: today},
		domain.PeriodLastMonth:         {start: lastMonthStart, end: lastMonthEnd},
		domain.PeriodSameDayLastMonth:  {start: sameDay, end: sameDay},
		domain.PeriodSameWeekLastMonth: {start: sameWeekStart, end: sameWeekStart.AddDate(0, 0, 6)},
		domain.PeriodAllTime:           {end: today, openStart: true},
	}
}

// BucketOrders accumulates deduplicated orders into every period window
// whose closed interval contains the order date.
func BucketOrders(orders []domain.Order, ref time.Time) map[domain.Period]domain.PeriodTotals {
	windows := periodWindows(ref)
	buckets := make(map[domain.Period]domain.PeriodTotals, len(windows))
	for _, period := range domain.Periods {
		buckets[period] = domain.PeriodTotals{}
	}

	for _, order := range orders {
		day := midnight(order.Date)
		for period, w := range windows {
			if !w.contains(day) {
				continue
			}
			totals := buckets[period]
			totals.Units += order.Units
			totals.Orders++
			buckets[period] = totals
		}
	}
	return buckets
}
