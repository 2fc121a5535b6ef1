package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Amount is a tier price as authored. Authors write either a number (30000)
// or a display string ("$30,000"); both are kept verbatim and parsed lazily.
type Amount string

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: tier price must be a scalar", node.Line)
	}
	*a = Amount(node.Value)
	return nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("tier price must be a string or number: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// Value parses the authored amount. See ParseTierPrice.
func (a Amount) Value() (float64, bool) {
	return ParseTierPrice(string(a))
}

// Tier is one pricing option within a multi-tier package.
type Tier struct {
	Name        string   `json:"name" yaml:"name" validate:"required"`
	Price       Amount   `json:"price" yaml:"price"`
	Period      string   `json:"period,omitempty" yaml:"period,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Features    []string `json:"features,omitempty" yaml:"features,omitempty"`
}

// ParseTierPrice strips everything but digits and dots before parsing, so
// "$30,000" becomes 30000. Results of zero or NaN are absent.
func ParseTierPrice(raw string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return 0, false
	}
	return v, true
}

// DerivePriceFromPricing scans tiers in order. The first tier whose period
// mentions "month" supplies Monthly; the first whose period mentions "one-time"
// or "setup" supplies OneTime. Tiers with no parseable price are skipped.
func DerivePriceFromPricing(tiers []Tier, currencyCode string) (Money, bool) {
	m := Money{Currency: normalizeCurrency(currencyCode)}
	for _, tier := range tiers {
		v, ok := tier.Price.Value()
		if !ok {
			continue
		}
		period := strings.ToLower(tier.Period)
		switch {
		case strings.Contains(period, "month"):
			if m.Monthly == 0 {
				m.Monthly = v
			}
		case strings.Contains(period, "one-time"), strings.Contains(period, "setup"):
			if m.OneTime == 0 {
				m.OneTime = v
			}
		}
		if m.Monthly > 0 && m.OneTime > 0 {
			break
		}
	}
	if m.IsZero() {
		return Money{}, false
	}
	return m, true
}
