package kpi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aguavida/kpi-backend/internal/domain"
)

func TestReconcileCascadePriority(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name      string
		raw       domain.RawOrder
		price     float64
		wantUnits int
		wantRule  string
	}{
		{
			name: "products list outranks everything",
			raw: domain.RawOrder{
				"products": []any{
					map[string]any{"quantity": 2.0},
					map[string]any{"quantity": 3.0},
				},
				"cantidad": 9.0,
			},
			price:     10000,
			wantUnits: 5,
			wantRule:  "products",
		},
		{
			name:      "cantidad before cant",
			raw:       domain.RawOrder{"cantidad": 3.0, "cant": 7.0},
			price:     6000,
			wantUnits: 3,
			wantRule:  "cantidad",
		},
		{
			name:      "cant before qty",
			raw:       domain.RawOrder{"cant": 2.0, "qty": 8.0},
			price:     4000,
			wantUnits: 2,
			wantRule:  "cant",
		},
		{
			name:      "bidones string value",
			raw:       domain.RawOrder{"bidones": "4"},
			price:     8000,
			wantUnits: 4,
			wantRule:  "bidones",
		},
		{
			name:      "ordenpedido digits",
			raw:       domain.RawOrder{"ordenpedido": "3-B19"},
			price:     6000,
			wantUnits: 3,
			wantRule:  "ordenpedido",
		},
		{
			name:      "zero quantity falls through",
			raw:       domain.RawOrder{"cantidad": 0.0, "qty": 2.0},
			price:     4000,
			wantUnits: 2,
			wantRule:  "qty",
		},
		{
			name:      "nothing usable derives from price",
			raw:       domain.RawOrder{"metodopago": "efectivo"},
			price:     6000,
			wantUnits: 3,
			wantRule:  "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Reconcile(tt.raw, tt.price, cfg)
			assert.Equal(t, tt.wantUnits, res.Units)
			assert.Equal(t, tt.wantRule, res.Rule)
		})
	}
}

// A record whose products have no usable quantity field must not be treated
// as an explicit zero.
func TestReconcileProductsWithoutQuantities(t *testing.T) {
	cfg := DefaultConfig()
	res := Reconcile(domain.RawOrder{
		"products": []any{map[string]any{"sku": "B20"}},
	}, 4000, cfg)
	assert.Equal(t, 2, res.Units)
	assert.Equal(t, domain.UnitsFromPrice, res.Source)
}

func TestReconcileCrossValidation(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("agreeing field is kept", func(t *testing.T) {
		res := Reconcile(domain.RawOrder{"cantidad": 2.0}, 4000, cfg)
		assert.Equal(t, 2, res.Units)
		assert.Equal(t, domain.UnitsFromField, res.Source)
		assert.False(t, res.Overridden)
	})

	t.Run("order code deviating from price is overridden", func(t *testing.T) {
		// ordenpedido says 2 but the price only covers one unit: deviation
		// |2-1|/1 = 100%, far past both tolerances.
		res := Reconcile(domain.RawOrder{
			"fecha":       "15-03-2024",
			"ordenpedido": "2",
		}, 2000, cfg)
		assert.Equal(t, 1, res.Units)
		assert.Equal(t, domain.UnitsFromPrice, res.Source)
		assert.True(t, res.Overridden)
	})

	t.Run("no price means no validation", func(t *testing.T) {
		res := Reconcile(domain.RawOrder{"cantidad": 40.0}, 0, cfg)
		assert.Equal(t, 40, res.Units)
		assert.Equal(t, domain.UnitsFromField, res.Source)
	})

	t.Run("deviation within tolerance survives", func(t *testing.T) {
		// 11 units against round(20000/2000)=10: deviation 10%, under 20%.
		res := Reconcile(domain.RawOrder{"cantidad": 11.0}, 20000, cfg)
		assert.Equal(t, 11, res.Units)
		assert.False(t, res.Overridden)
	})

	t.Run("deviation past extraction tolerance is overridden", func(t *testing.T) {
		// 13 against 10: 30% > the 20% extraction bound.
		res := Reconcile(domain.RawOrder{"cantidad": 13.0}, 20000, cfg)
		assert.Equal(t, 10, res.Units)
		assert.True(t, res.Overridden)
	})

	t.Run("validation bound applies on its own", func(t *testing.T) {
		loose := cfg
		loose.ExtractTolerance = 10 // effectively disabled
		res := Reconcile(domain.RawOrder{"cantidad": 14.0}, 20000, loose)
		// 40% deviation still trips the 30% validation bound.
		assert.Equal(t, 10, res.Units)
		assert.True(t, res.Overridden)
	})

	t.Run("price below half a unit skips validation", func(t *testing.T) {
		// round(500/2000) = 0; the expected count carries no signal.
		res := Reconcile(domain.RawOrder{"cantidad": 3.0}, 500, cfg)
		assert.Equal(t, 3, res.Units)
		assert.False(t, res.Overridden)
	})
}

func TestLeadingDigits(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"2-B19", 2, true},
		{"pedido 12 bidones", 12, true},
		{"B-03", 3, true},
		{"sin numero", 0, false},
		{"0", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := leadingDigits(tt.input)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}
