package pricing

import "strconv"

// MaxMargin is the highest margin the sell price inversion accepts.
const MaxMargin = 0.99

// Totals holds the quote-level aggregates. Every amount is base currency.
type Totals struct {
	ServiceCost  float64 `json:"service_cost"`
	LaborCost    float64 `json:"labor_cost"`
	TotalCost    float64 `json:"total_cost"`
	Contingency  float64 `json:"contingency"`
	CostWithRisk float64 `json:"cost_with_risk"`
	SellPrice    float64 `json:"sell_price"`
	TaxAmount    float64 `json:"tax_amount"`
	FinalPrice   float64 `json:"final_price"`

	RiskFraction   float64 `json:"risk_fraction"`
	MarginFraction float64 `json:"margin_fraction"`
	TaxRate        float64 `json:"tax_rate"`
}

// Aggregate sums line totals and runs the cost to price chain: contingency,
// sell price by margin inversion, then tax. A margin of 100% or more is
// clamped to MaxMargin and reported.
func Aggregate(serviceTotals, laborTotals []float64, riskFraction, marginFraction, taxRate float64, r Reporter) Totals {
	var t Totals
	for _, v := range serviceTotals {
		t.ServiceCost += v
	}
	for _, v := range laborTotals {
		t.LaborCost += v
	}
	t.TotalCost = t.ServiceCost + t.LaborCost

	t.RiskFraction = riskFraction
	t.Contingency = t.TotalCost * riskFraction
	t.CostWithRisk = t.TotalCost + t.Contingency

	if marginFraction >= 1 {
		reporterOrDiscard(r).Report(Issue{
			Severity: SeverityWarning,
			Code:     CodeMarginClamped,
			Message:  "margin of 100% or more clamped",
			Fields: map[string]string{
				"margin":  strconv.FormatFloat(marginFraction, 'g', -1, 64),
				"clamped": strconv.FormatFloat(MaxMargin, 'g', -1, 64),
			},
		})
		marginFraction = MaxMargin
	}
	t.MarginFraction = marginFraction
	t.SellPrice = t.CostWithRisk / (1 - marginFraction)

	t.TaxRate = taxRate
	t.TaxAmount = t.SellPrice * taxRate
	t.FinalPrice = t.SellPrice + t.TaxAmount

	return t
}

// finite zeroes every amount that overflowed or became NaN, reporting each.
func (t *Totals) finite(r Reporter) {
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"service_cost", &t.ServiceCost},
		{"labor_cost", &t.LaborCost},
		{"total_cost", &t.TotalCost},
		{"contingency", &t.Contingency},
		{"cost_with_risk", &t.CostWithRisk},
		{"sell_price", &t.SellPrice},
		{"tax_amount", &t.TaxAmount},
		{"final_price", &t.FinalPrice},
	} {
		*f.v = Finite(*f.v, f.name, r)
	}
}
