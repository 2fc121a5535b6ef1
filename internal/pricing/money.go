package pricing

import (
	"math"
	"strings"
)

// DefaultCurrency applies when authored data omits a currency code.
const DefaultCurrency = "USD"

// PriceShape is an authored price in one of the shapes the catalog accepts.
// NormalizeMoney is the only place that matches on the variant.
type PriceShape interface {
	isPriceShape()
}

// Canonical is the current authored shape: {oneTime, monthly, currency}.
type Canonical struct {
	OneTime  *float64 `json:"oneTime,omitempty" yaml:"oneTime,omitempty"`
	Monthly  *float64 `json:"monthly,omitempty" yaml:"monthly,omitempty"`
	Currency string   `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// Legacy is the older authored shape where the one-time fee was called setup.
type Legacy struct {
	Setup    *float64 `json:"setup,omitempty" yaml:"setup,omitempty"`
	Monthly  *float64 `json:"monthly,omitempty" yaml:"monthly,omitempty"`
	Currency string   `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// Money is the normalized price. A zero amount means the component is absent.
//
// Invariants:
//   - at least one of OneTime/Monthly is finite and positive
//   - Currency is an upper-case ISO code
type Money struct {
	OneTime  float64 `json:"oneTime,omitempty"`
	Monthly  float64 `json:"monthly,omitempty"`
	Currency string  `json:"currency"`
}

func (Canonical) isPriceShape() {}
func (Legacy) isPriceShape()    {}
func (Money) isPriceShape()     {}

// NormalizeMoney converts any authored shape into Money. The bool is false when
// neither component resolves to a finite positive number. Normalizing a Money
// that already satisfies its invariants returns it unchanged.
func NormalizeMoney(shape PriceShape) (Money, bool) {
	var m Money
	switch p := shape.(type) {
	case Canonical:
		m = Money{OneTime: amountOf(p.OneTime), Monthly: amountOf(p.Monthly), Currency: p.Currency}
	case *Canonical:
		if p == nil {
			return Money{}, false
		}
		return NormalizeMoney(*p)
	case Legacy:
		m = Money{OneTime: amountOf(p.Setup), Monthly: amountOf(p.Monthly), Currency: p.Currency}
	case *Legacy:
		if p == nil {
			return Money{}, false
		}
		return NormalizeMoney(*p)
	case Money:
		m = Money{OneTime: positive(p.OneTime), Monthly: positive(p.Monthly), Currency: p.Currency}
	default:
		return Money{}, false
	}

	m.Currency = normalizeCurrency(m.Currency)
	if m.OneTime == 0 && m.Monthly == 0 {
		return Money{}, false
	}
	return m, true
}

// IsHybrid reports a price with both a monthly and a one-time component.
func IsHybrid(m Money) bool {
	return m.OneTime > 0 && m.Monthly > 0
}

// IsOneTimeOnly reports a price with only a one-time component.
func IsOneTimeOnly(m Money) bool {
	return m.OneTime > 0 && m.Monthly <= 0
}

// IsMonthlyOnly reports a price with only a monthly component.
func IsMonthlyOnly(m Money) bool {
	return m.Monthly > 0 && m.OneTime <= 0
}

// IsZero reports a Money with no components.
func (m Money) IsZero() bool {
	return m.OneTime <= 0 && m.Monthly <= 0
}

func amountOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return positive(*v)
}

func positive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

func normalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency
	}
	return code
}

// Float is a convenience for building authored shapes in code and tests.
func Float(v float64) *float64 {
	return &v
}
