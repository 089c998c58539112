package money

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/supportquote/internal/pricing"
	"github.com/Simplici0/supportquote/internal/refdata"
)

var colombia = refdata.Country{Name: "Colombia", CurrencyCode: "COP", ExchangeRate: 3775.22225, TaxRate: 0.01}

func colombiaTotals() pricing.Totals {
	return pricing.Aggregate([]float64{120}, nil, 0.02, 0.40, colombia.TaxRate, nil)
}

func TestPresent_BaseMode(t *testing.T) {
	d := Present(colombiaTotals(), colombia, pricing.ModeBase)

	if d.Currency != "USD" || d.Symbol != "$" || d.Factor != 1 {
		t.Fatalf("unexpected display currency: %+v", d)
	}
	checks := map[string]struct {
		got  decimal.Decimal
		want string
	}{
		"total cost":     {d.Totals.TotalCost, "120"},
		"cost with risk": {d.Totals.CostWithRisk, "122.4"},
		"sell price":     {d.Totals.SellPrice, "204"},
		"tax":            {d.Totals.TaxAmount, "2.04"},
		"final":          {d.Totals.FinalPrice, "206.04"},
	}
	for name, c := range checks {
		if !c.got.Equal(decimal.RequireFromString(c.want)) {
			t.Fatalf("%s = %s, want %s", name, c.got, c.want)
		}
	}
}

func TestPresent_LocalModeConvertsAndRounds(t *testing.T) {
	d := Present(colombiaTotals(), colombia, pricing.ModeLocal)

	if d.Currency != "COP" || d.Factor != colombia.ExchangeRate {
		t.Fatalf("unexpected display currency: %+v", d)
	}
	if got := d.Totals.FinalPrice.String(); got != "777846.79" {
		t.Fatalf("final = %s, want 777846.79", got)
	}
	if got := d.Totals.TaxAmount.String(); got != "7701.45" {
		t.Fatalf("tax = %s, want 7701.45", got)
	}
}

func TestPresent_InvalidRateDisplaysBase(t *testing.T) {
	broken := refdata.Country{Name: "X", CurrencyCode: "XXX", ExchangeRate: 0}
	d := Present(colombiaTotals(), broken, pricing.ModeLocal)

	if d.Factor != 1 {
		t.Fatalf("expected factor 1, got %v", d.Factor)
	}
	if d.Symbol != "XXX" {
		t.Fatalf("expected code as symbol fallback, got %q", d.Symbol)
	}
}

func TestDisplayAmount_RoundsHalfAwayFromZero(t *testing.T) {
	d := Display{Factor: 1}
	cases := map[float64]string{
		0.125:  "0.13",
		-0.125: "-0.13",
		0.124:  "0.12",
		1.005:  "1.01",
		0:      "0",
	}
	for in, want := range cases {
		if got := d.Amount(in).String(); got != want {
			t.Fatalf("Amount(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in       string
		currency string
		want     string
	}{
		{"777846.79239", "COP", "777,846.79 COP"},
		{"206.04", "USD", "206.04 USD"},
		{"1234567", "", "1,234,567.00"},
		{"-1000.5", "BRL", "-1,000.50 BRL"},
		{"0", "USD", "0.00 USD"},
	}
	for _, tc := range cases {
		if got := Format(decimal.RequireFromString(tc.in), tc.currency); got != tc.want {
			t.Fatalf("Format(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisplay_JSONUsesStrings(t *testing.T) {
	out, err := json.Marshal(Present(colombiaTotals(), colombia, pricing.ModeBase))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"final_price":"206.04"`) {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestPresent_NonFiniteAmountsDisplayZero(t *testing.T) {
	totals := pricing.Totals{
		TotalCost:  1.2e308,
		SellPrice:  math.Inf(1),
		TaxAmount:  math.NaN(),
		FinalPrice: math.Inf(-1),
	}
	d := Present(totals, colombia, pricing.ModeBase)

	for name, got := range map[string]decimal.Decimal{
		"sell price": d.Totals.SellPrice,
		"tax":        d.Totals.TaxAmount,
		"final":      d.Totals.FinalPrice,
	} {
		if !got.IsZero() {
			t.Fatalf("%s = %s, want 0", name, got)
		}
	}
	if d.Totals.TotalCost.IsZero() {
		t.Fatalf("finite amounts must still be shown")
	}
	if _, err := json.Marshal(d); err != nil {
		t.Fatalf("marshal display: %v", err)
	}

	if got := (Display{Factor: math.NaN()}).Amount(10); !got.IsZero() {
		t.Fatalf("NaN factor must display 0, got %s", got)
	}
}
