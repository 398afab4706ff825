// internal/kpi/errors.go
package kpi

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is the umbrella for every per-record rejection. Rejected
// records are counted in the diagnostics and skipped; they never abort a pass.
var ErrInvalidRecord = errors.New("invalid order record")

var (
	// ErrInvalidDate means fecha was missing or not a strict DD-MM-YYYY date.
	ErrInvalidDate = fmt.Errorf("%w: unparseable date", ErrInvalidRecord)
	// ErrWrongLocal means the record belongs to another location.
	ErrWrongLocal = fmt.Errorf("%w: foreign local", ErrInvalidRecord)
	// ErrNoQuantity means no quantity signal resolved to a positive value.
	ErrNoQuantity = fmt.Errorf("%w: non-positive quantity", ErrInvalidRecord)
)
