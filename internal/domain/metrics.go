// internal/domain/metrics.go
package domain

import "time"

// PeriodFigures is the derived financial view of one period bucket.
type PeriodFigures struct {
	Units   int     `json:"units"`
	Orders  int     `json:"orders"`
	Liters  float64 `json:"liters"`
	Revenue float64 `json:"revenue"`
	Tax     float64 `json:"tax"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
}

// BaselineKPIs carries figures the aggregation cannot derive from raw orders
// alone. They are merged into the final Metrics without further validation.
type BaselineKPIs struct {
	RevenueLastMonth    float64 `json:"revenue_last_month" db:"revenue_last_month"`
	OrderCountLastMonth int     `json:"order_count_last_month" db:"order_count_last_month"`
	ActiveCustomers     int     `json:"active_customers" db:"active_customers"`
	NewCustomers        int     `json:"new_customers" db:"new_customers"`
}

// HistoricalPoint is one labeled revenue data point from the historical
// sales series. Used only as a cross-check signal, never for bucketing.
type HistoricalPoint struct {
	Label   string  `json:"label" db:"label"`
	Revenue float64 `json:"revenue" db:"revenue"`
}

// Metrics is the full output of one aggregation pass.
type Metrics struct {
	ReferenceDate              time.Time                `json:"reference_date"`
	Periods                    map[Period]PeriodFigures `json:"periods"`
	AverageTicket              float64                  `json:"average_ticket"`
	GoalRevenue                float64                  `json:"goal_revenue"`
	GoalProgressPercent        int                      `json:"goal_progress_percent"`
	CapacityUtilizationPercent int                      `json:"capacity_utilization_percent"`
	Baseline                   BaselineKPIs             `json:"baseline"`
}

// Diagnostics reports everything the pipeline recovered from without failing
// the pass. Exposed as data; whether to log it is the caller's decision.
type Diagnostics struct {
	TotalRecords        int      `json:"total_records"`
	RejectedInvalidDate int      `json:"rejected_invalid_date"`
	RejectedWrongLocal  int      `json:"rejected_wrong_local"`
	RejectedNoQuantity  int      `json:"rejected_no_quantity"`
	QuantityOverrides   int      `json:"quantity_overrides"`
	DuplicateIdentities []string `json:"duplicate_identities"`
	RevenueSourceSwitch bool     `json:"revenue_source_switch"`
}

// Rejected is the total count of records excluded from every bucket.
func (d Diagnostics) Rejected() int {
	return d.RejectedInvalidDate + d.RejectedWrongLocal + d.RejectedNoQuantity
}
