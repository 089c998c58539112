// Package money turns base-currency engine amounts into rounded display
// amounts. Nothing here feeds back into a calculation.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/supportquote/internal/pricing"
	"github.com/Simplici0/supportquote/internal/refdata"
)

// DisplayPlaces is the number of decimals shown for every amount.
const DisplayPlaces = 2

var symbols = map[string]string{
	"USD": "$",
	"ARS": "$",
	"BRL": "R$",
	"CLP": "$",
	"COP": "$",
	"MXN": "$",
	"PEN": "S/",
	"UYU": "$U",
	"VES": "Bs.",
}

// Symbol returns the display symbol for a currency code, or the code itself.
func Symbol(code string) string {
	if s, ok := symbols[strings.ToUpper(code)]; ok {
		return s
	}
	return code
}

// Amounts are the quote totals in display currency.
type Amounts struct {
	ServiceCost  decimal.Decimal `json:"service_cost"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Contingency  decimal.Decimal `json:"contingency"`
	CostWithRisk decimal.Decimal `json:"cost_with_risk"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	FinalPrice   decimal.Decimal `json:"final_price"`
}

// Display is the presentation of one calculation.
type Display struct {
	Currency string  `json:"currency"`
	Symbol   string  `json:"symbol"`
	Factor   float64 `json:"factor"`
	Totals   Amounts `json:"totals"`
}

// Present converts totals for display. Local mode multiplies by the
// country's exchange rate and shows its currency; base mode shows USD.
func Present(t pricing.Totals, country refdata.Country, mode pricing.CurrencyMode) Display {
	d := Display{Currency: pricing.BaseCurrency, Factor: 1}
	if mode == pricing.ModeLocal {
		d.Currency = country.CurrencyCode
		d.Factor = pricing.SafeRate(country.ExchangeRate, nil)
	}
	d.Symbol = Symbol(d.Currency)

	d.Totals = Amounts{
		ServiceCost:  d.Amount(t.ServiceCost),
		LaborCost:    d.Amount(t.LaborCost),
		TotalCost:    d.Amount(t.TotalCost),
		Contingency:  d.Amount(t.Contingency),
		CostWithRisk: d.Amount(t.CostWithRisk),
		SellPrice:    d.Amount(t.SellPrice),
		TaxAmount:    d.Amount(t.TaxAmount),
		FinalPrice:   d.Amount(t.FinalPrice),
	}
	return d
}

// Amount converts a base amount with the display factor and rounds it half
// away from zero. A NaN or infinite amount or factor displays as 0.
func (d Display) Amount(base float64) decimal.Decimal {
	if !finite(base) || !finite(d.Factor) {
		return decimal.Zero
	}
	return Round(decimal.NewFromFloat(base).Mul(decimal.NewFromFloat(d.Factor)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round rounds to DisplayPlaces, half away from zero.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(DisplayPlaces)
}

// Format renders an amount with thousands separators followed by the
// currency code, e.g. "1,234.50 COP".
func Format(v decimal.Decimal, currency string) string {
	s := Round(v).StringFixed(DisplayPlaces)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := sign + b.String() + "." + frac
	if currency == "" {
		return out
	}
	return out + " " + currency
}
