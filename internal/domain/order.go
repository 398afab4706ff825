// internal/domain/order.go
package domain

import (
	"fmt"
	"time"
)

// RawOrder is one order record exactly as the POS / delivery app exported it.
// The export format has drifted over the years, so field presence and types
// are not reliable; the kpi package is responsible for making sense of it.
type RawOrder map[string]any

// Origin tells which sales channel an order came through.
type Origin int

const (
	OriginUnknown Origin = iota
	OriginLocal
	OriginDelivery
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// UnitsSource records where the reconciled unit count of an order came from.
type UnitsSource int

const (
	// UnitsFromField means an explicit quantity field survived cross-validation.
	UnitsFromField UnitsSource = iota
	// UnitsFromPrice means the quantity was derived from the order price.
	UnitsFromPrice
)

func (s UnitsSource) String() string {
	if s == UnitsFromPrice {
		return "derived_from_price"
	}
	return "explicit_field"
}

// Order is the canonical, cleaned-up form of a raw order record.
type Order struct {
	Date        time.Time   `json:"date"`
	Units       int         `json:"units"`
	Price       float64     `json:"price"`
	Origin      Origin      `json:"origin"`
	Identity    string      `json:"identity"`
	UnitsSource UnitsSource `json:"units_source"`
}

// FallbackIdentity builds the composite dedup key used when a record carries
// no explicit id.
func FallbackIdentity(date time.Time, customer string, price float64) string {
	return fmt.Sprintf("%s|%s|%.2f", date.Format("2006-01-02"), customer, price)
}
