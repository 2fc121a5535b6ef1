package pricing

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used for every label the service renders.
const DefaultLocale = "en-US"

var errUnsupportedLocale = errors.New("unsupported locale")

// Narrow symbols for the currencies the agency invoices in. Others render as
// "<ISO> " followed by the amount.
var currencySymbols = map[currency.Unit]string{
	currency.USD: "$",
	currency.EUR: "€",
	currency.GBP: "£",
	currency.JPY: "¥",
	currency.CAD: "CA$",
	currency.AUD: "A$",
	currency.INR: "₹",
}

// FormatMoney renders a whole-unit amount for a locale. When the currency code
// or the locale cannot be resolved it falls back to "$" and the plain number.
func FormatMoney(amount float64, currencyCode, locale string) string {
	s, err := formatMoney(amount, currencyCode, locale)
	if err != nil {
		return "$" + strconv.FormatFloat(amount, 'f', -1, 64)
	}
	return s
}

func formatMoney(amount float64, currencyCode, locale string) (string, error) {
	unit, err := currency.ParseISO(normalizeCurrency(currencyCode))
	if err != nil {
		return "", err
	}
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return "", err
	}
	if tag == language.Und {
		return "", errUnsupportedLocale
	}

	p := message.NewPrinter(tag)
	digits := p.Sprintf("%v", number.Decimal(amount, number.MaxFractionDigits(0)))

	symbol, ok := currencySymbols[unit]
	if !ok {
		symbol = unit.String() + " "
	}
	return symbol + digits, nil
}

// StartingAtLabel composes the marketing "Starting at" string for a price.
//
//	hybrid        Starting at $500/mo + $2,000 setup
//	monthly only  Starting at $500/mo
//	one-time only Starting at $2,000 one-time
//	no price      ""
func StartingAtLabel(m Money) string {
	summary := Summary(m)
	if summary == "" {
		return ""
	}
	return "Starting at " + summary
}

// Summary is StartingAtLabel without the prefix. Add-on cards use it.
func Summary(m Money) string {
	switch {
	case IsHybrid(m):
		return MonthlyLabel(m) + " + " + FormatMoney(m.OneTime, m.Currency, DefaultLocale) + " setup"
	case IsMonthlyOnly(m):
		return MonthlyLabel(m)
	case IsOneTimeOnly(m):
		return OneTimeLabel(m)
	default:
		return ""
	}
}

// MonthlyLabel renders the monthly component as "$X/mo".
func MonthlyLabel(m Money) string {
	if m.Monthly <= 0 {
		return ""
	}
	return FormatMoney(m.Monthly, m.Currency, DefaultLocale) + "/mo"
}

// OneTimeLabel renders the one-time component as "$Y one-time".
func OneTimeLabel(m Money) string {
	if m.OneTime <= 0 {
		return ""
	}
	return FormatMoney(m.OneTime, m.Currency, DefaultLocale) + " one-time"
}

// DisplayPrice prefers a numeric summary and falls back to an authored note
// such as "Custom quote".
func DisplayPrice(shape PriceShape, note string) string {
	if m, ok := NormalizeMoney(shape); ok {
		return Summary(m)
	}
	return strings.TrimSpace(note)
}
