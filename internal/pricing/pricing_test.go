package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"agency/pkg/testutil"
)

func TestNormalizeMoney(t *testing.T) {
	testutil.Given(t, "a legacy setup/monthly price", func(t *testing.T) {
		m, ok := NormalizeMoney(Legacy{Setup: Float(100), Monthly: Float(50)})
		require.True(t, ok)
		assert.Equal(t, Money{OneTime: 100, Monthly: 50, Currency: "USD"}, m)
	})

	testutil.Given(t, "a canonical price with a lower-case currency", func(t *testing.T) {
		m, ok := NormalizeMoney(Canonical{Monthly: Float(500), Currency: " eur "})
		require.True(t, ok)
		assert.Equal(t, Money{Monthly: 500, Currency: "EUR"}, m)
	})

	testutil.Given(t, "prices with no finite positive component", func(t *testing.T) {
		inputs := []PriceShape{
			nil,
			Canonical{},
			Legacy{Currency: "USD"},
			Canonical{OneTime: Float(math.NaN())},
			Canonical{Monthly: Float(math.Inf(1))},
			Canonical{OneTime: Float(0), Monthly: Float(-20)},
			(*Canonical)(nil),
		}
		for _, in := range inputs {
			_, ok := NormalizeMoney(in)
			assert.False(t, ok, "%#v", in)
		}
	})

	testutil.Given(t, "an already canonical Money", func(t *testing.T) {
		first, ok := NormalizeMoney(Canonical{OneTime: Float(2000), Monthly: Float(500), Currency: "USD"})
		require.True(t, ok)
		second, ok := NormalizeMoney(first)
		require.True(t, ok)
		assert.Equal(t, first, second)
	})
}

func TestClassification(t *testing.T) {
	hybrid := Money{OneTime: 2000, Monthly: 500}
	monthly := Money{Monthly: 500}
	oneTime := Money{OneTime: 2000}

	assert.True(t, IsHybrid(hybrid))
	assert.False(t, IsMonthlyOnly(hybrid))
	assert.False(t, IsOneTimeOnly(hybrid))

	assert.True(t, IsMonthlyOnly(monthly))
	assert.False(t, IsHybrid(monthly))

	assert.True(t, IsOneTimeOnly(oneTime))
	assert.False(t, IsMonthlyOnly(oneTime))
	assert.True(t, Money{}.IsZero())
}

func TestStartingAtLabel(t *testing.T) {
	tests := []struct {
		name string
		in   Money
		want string
	}{
		{"hybrid", Money{Monthly: 500, OneTime: 2000, Currency: "USD"}, "Starting at $500/mo + $2,000 setup"},
		{"monthly only", Money{Monthly: 500}, "Starting at $500/mo"},
		{"one-time only", Money{OneTime: 30000, Currency: "USD"}, "Starting at $30,000 one-time"},
		{"no price", Money{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StartingAtLabel(tt.in))
		})
	}
}

func TestFormatMoney(t *testing.T) {
	t.Run("groups thousands for en-US", func(t *testing.T) {
		assert.Equal(t, "$12,500", FormatMoney(12500, "USD", "en-US"))
	})

	t.Run("uses the currency symbol", func(t *testing.T) {
		assert.Equal(t, "£900", FormatMoney(900, "GBP", "en-GB"))
	})

	t.Run("falls back for an unknown currency code", func(t *testing.T) {
		assert.Equal(t, "$1500", FormatMoney(1500, "ZZZ", "en-US"))
	})

	t.Run("falls back for an unparseable locale", func(t *testing.T) {
		assert.Equal(t, "$1500", FormatMoney(1500, "USD", "not a locale!"))
	})
}

func TestParseTierPrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"$30,000", 30000, true},
		{"1500", 1500, true},
		{"$2,499.50/mo", 2499.5, true},
		{"$0", 0, false},
		{"Custom", 0, false},
		{"", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseTierPrice(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDerivePriceFromPricing(t *testing.T) {
	testutil.Given(t, "a one-time tier authored as a display string", func(t *testing.T) {
		m, ok := DerivePriceFromPricing([]Tier{{Name: "Build", Price: "$30,000", Period: "one-time"}}, "")
		require.True(t, ok)
		assert.Equal(t, 30000.0, m.OneTime)
		assert.Equal(t, "USD", m.Currency)
	})

	testutil.Given(t, "several tiers per category", func(t *testing.T) {
		tiers := []Tier{
			{Name: "Setup", Price: "$5,000", Period: "Setup fee"},
			{Name: "Retainer", Price: "$1,200", Period: "per month"},
			{Name: "Premium retainer", Price: "$2,400", Period: "per month"},
			{Name: "Rebuild", Price: "$9,000", Period: "one-time"},
		}
		m, ok := DerivePriceFromPricing(tiers, "USD")
		require.True(t, ok)

		testutil.Then(t, "the first match wins for each category", func(t *testing.T) {
			assert.Equal(t, Money{OneTime: 5000, Monthly: 1200, Currency: "USD"}, m)
		})
	})

	testutil.Given(t, "tiers with unparseable or unrelated periods", func(t *testing.T) {
		tiers := []Tier{
			{Name: "Enterprise", Price: "Let's talk", Period: "monthly"},
			{Name: "Workshop", Price: "$800", Period: "per session"},
		}
		_, ok := DerivePriceFromPricing(tiers, "USD")
		assert.False(t, ok)
	})
}

func TestPriceDecoding(t *testing.T) {
	t.Run("yaml setup key selects the legacy shape", func(t *testing.T) {
		var p Price
		require.NoError(t, yaml.Unmarshal([]byte("setup: 1500\nmonthly: 300\n"), &p))
		assert.IsType(t, Legacy{}, p.Shape)
		m, ok := p.Normalize()
		require.True(t, ok)
		assert.Equal(t, Money{OneTime: 1500, Monthly: 300, Currency: "USD"}, m)
	})

	t.Run("yaml canonical shape", func(t *testing.T) {
		var p Price
		require.NoError(t, yaml.Unmarshal([]byte("oneTime: 4000\ncurrency: CAD\n"), &p))
		assert.IsType(t, Canonical{}, p.Shape)
	})

	t.Run("yaml scalar is rejected", func(t *testing.T) {
		var p Price
		assert.Error(t, yaml.Unmarshal([]byte("\"$400\"\n"), &p))
	})

	t.Run("json round trip emits canonical", func(t *testing.T) {
		var p Price
		require.NoError(t, json.Unmarshal([]byte(`{"setup":100,"monthly":50}`), &p))
		out, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `{"oneTime":100,"monthly":50,"currency":"USD"}`, string(out))
	})

	t.Run("tier amounts accept numbers and strings", func(t *testing.T) {
		var tiers []Tier
		require.NoError(t, json.Unmarshal([]byte(`[{"name":"a","price":1200},{"name":"b","price":"$3,000"}]`), &tiers))
		v, ok := tiers[0].Price.Value()
		assert.True(t, ok)
		assert.Equal(t, 1200.0, v)
		v, ok = tiers[1].Price.Value()
		assert.True(t, ok)
		assert.Equal(t, 3000.0, v)
	})
}
