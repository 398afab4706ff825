// internal/kpi/reconciler.go
package kpi

import (
	"math"

	"github.com/aguavida/kpi-backend/internal/domain"
)

// The quantity of an order has been written to at least eight different
// fields over the life of the POS. The cascade below tries them in order of
// trustworthiness; the first rule that yields a positive integer wins, and
// the result is then cross-validated against the order price.

type quantityRule struct {
	name    string
	extract func(raw domain.RawOrder) (int, bool)
}

func countField(key string) quantityRule {
	return quantityRule{
		name: key,
		extract: func(raw domain.RawOrder) (int, bool) {
			v, ok := raw[key]
			if !ok {
				return 0, false
			}
			return coercePositiveInt(v)
		},
	}
}

var quantityCascade = []quantityRule{
	{name: "products", extract: sumProductLines},
	countField("cantidad"),
	countField("cant"),
	countField("qty"),
	countField("quantity"),
	countField("bidones"),
	countField("unidades"),
	{name: "ordenpedido", extract: orderCodeQuantity},
}

func sumProductLines(raw domain.RawOrder) (int, bool) {
	lines, ok := raw["products"].([]any)
	if !ok || len(lines) == 0 {
		return 0, false
	}
	total := 0
	for _, line := range lines {
		m, ok := line.(map[string]any)
		if !ok {
			continue
		}
		if n, ok := coercePositiveInt(m["quantity"]); ok {
			total += n
		} else if n, ok := coercePositiveInt(m["cantidad"]); ok {
			total += n
		}
	}
	return total, total > 0
}

func orderCodeQuantity(raw domain.RawOrder) (int, bool) {
	code, ok := fieldString(raw, "ordenpedido")
	if !ok {
		return 0, false
	}
	return leadingDigits(code)
}

// ReconcileResult carries the reconciled quantity plus provenance for the
// diagnostics.
type ReconcileResult struct {
	Units      int
	Source     domain.UnitsSource
	Rule       string
	Overridden bool
}

// Reconcile infers the unit count of one order. An explicit field wins when
// it agrees with the price; when it deviates beyond tolerance, or when no
// field yields a positive value, the count is derived from the price.
func Reconcile(raw domain.RawOrder, price float64, cfg Config) ReconcileResult {
	units, rule, found := extractUnits(raw)
	if !found {
		return ReconcileResult{
			Units:  unitsFromPrice(price, cfg.UnitPrice),
			Source: domain.UnitsFromPrice,
			Rule:   "price",
		}
	}

	res := ReconcileResult{Units: units, Source: domain.UnitsFromField, Rule: rule}

	// Cross-validation runs twice, with a tighter bound at extraction and a
	// looser one at final validation. Both are honored independently so the
	// bounds stay individually configurable.
	res = crossValidate(res, price, cfg.UnitPrice, cfg.ExtractTolerance)
	if res.Source == domain.UnitsFromField {
		res = crossValidate(res, price, cfg.UnitPrice, cfg.ValidateTolerance)
	}
	return res
}

func extractUnits(raw domain.RawOrder) (int, string, bool) {
	for _, rule := range quantityCascade {
		if n, ok := rule.extract(raw); ok {
			return n, rule.name, true
		}
	}
	return 0, "", false
}

func crossValidate(res ReconcileResult, price, unitPrice, tolerance float64) ReconcileResult {
	if price <= 0 || unitPrice <= 0 {
		return res
	}
	expected := unitsFromPrice(price, unitPrice)
	if expected <= 0 {
		return res
	}
	deviation := math.Abs(float64(res.Units-expected)) / float64(expected)
	if deviation > tolerance {
		res.Units = expected
		res.Source = domain.UnitsFromPrice
		res.Overridden = true
	}
	return res
}

func unitsFromPrice(price, unitPrice float64) int {
	if unitPrice <= 0 {
		return 0
	}
	return int(math.Round(price / unitPrice))
}
