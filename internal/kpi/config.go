// internal/kpi/config.go
package kpi

import "github.com/aguavida/kpi-backend/internal/config"

// Config carries the business constants the aggregation pipeline needs. It is
// injected rather than read from the environment so the pipeline stays a pure
// function over its inputs.
type Config struct {
	LocalName           string
	UnitPrice           float64
	LitersPerUnit       float64
	FixedCost           float64
	VariableCostPerUnit float64
	TaxRate             float64
	GoalMultiplier      float64
	CapacityTotalLiters float64

	// Relative deviation thresholds between an explicit quantity field and
	// round(price / UnitPrice). The check runs twice: once when the field is
	// extracted and once during final validation. The 0.2 / 0.3 / 0.5
	// defaults replicate observed POS behavior; nobody has produced a
	// business rule they derive from.
	ExtractTolerance  float64
	ValidateTolerance float64
	GlobalTolerance   float64
}

// DefaultConfig returns the constants of the current bottled-water operation.
func DefaultConfig() Config {
	return Config{
		LocalName:           "Aguas Ancud",
		UnitPrice:           2000,
		LitersPerUnit:       20,
		FixedCost:           500000,
		VariableCostPerUnit: 600,
		TaxRate:             0.19,
		GoalMultiplier:      1.10,
		CapacityTotalLiters: 60000,
		ExtractTolerance:    0.2,
		ValidateTolerance:   0.3,
		GlobalTolerance:     0.5,
	}
}

// FromBusiness maps the loaded application config onto a pipeline config.
func FromBusiness(b config.BusinessConfig) Config {
	return Config{
		LocalName:           b.LocalName,
		UnitPrice:           b.UnitPrice,
		LitersPerUnit:       b.LitersPerUnit,
		FixedCost:           b.FixedCost,
		VariableCostPerUnit: b.VariableCostPerUnit,
		TaxRate:             b.TaxRate,
		GoalMultiplier:      b.GoalMultiplier,
		CapacityTotalLiters: b.CapacityTotalLiters,
		ExtractTolerance:    b.ExtractTolerance,
		ValidateTolerance:   b.ValidateTolerance,
		GlobalTolerance:     b.GlobalTolerance,
	}
}
