package pricing

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func colombiaQuote(t *testing.T) Quote {
	t.Helper()
	return Quote{
		Country:       "Colombia",
		CurrencyMode:  ModeBase,
		RiskLevel:     "Low",
		Margin:        0.40,
		ContractStart: mustDate(t, "2026-01-01"),
		ContractEnd:   mustDate(t, "2026-12-31"),
		Services: []ServiceLineItem{
			{Quantity: 1, UnitCostBase: 10},
		},
	}
}

func TestCalculate_ColombiaScenario(t *testing.T) {
	calc := newTestCalculator(t, DefaultOptions())
	res := calc.Calculate(colombiaQuote(t))

	if len(res.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", res.Issues)
	}
	if len(res.Services) != 1 {
		t.Fatalf("expected one priced line, got %d", len(res.Services))
	}
	line := res.Services[0]
	nearlyEqual(t, "months", line.Months, 12)
	nearlyEqual(t, "slc", line.SLCFactor, 1)
	nearlyEqual(t, "unit local", line.UnitCostLocal, 37752.2225)
	nearlyEqual(t, "line total", line.Total, 120)

	tot := res.Totals
	nearlyEqual(t, "total cost", tot.TotalCost, 120)
	nearlyEqual(t, "contingency", tot.Contingency, 2.4)
	nearlyEqual(t, "cost with risk", tot.CostWithRisk, 122.4)
	nearlyEqual(t, "sell price", tot.SellPrice, 204)
	nearlyEqual(t, "tax", tot.TaxAmount, 2.04)
	nearlyEqual(t, "final", tot.FinalPrice, 206.04)
}

func TestCalculate_LocalModeUsesLocalCost(t *testing.T) {
	calc := newTestCalculator(t, DefaultOptions())
	q := colombiaQuote(t)
	q.CurrencyMode = ModeLocal
	q.Services[0] = ServiceLineItem{Quantity: 1, UnitCostLocal: 37752.2225, UnitCostBase: 999}

	res := calc.Calculate(q)
	nearlyEqual(t, "unit base", res.Services[0].UnitCostBase, 10)
	nearlyEqual(t, "total cost", res.Totals.TotalCost, 120)
}

func TestCalculate_NoLinesWithDistributedCost(t *testing.T) {
	calc := newTestCalculator(t, DefaultOptions())
	q := colombiaQuote(t)
	q.Services = nil
	q.DistributedCost = 100

	res := calc.Calculate(q)
	if res.Totals.TotalCost != 0 || res.Totals.FinalPrice != 0 {
		t.Fatalf("expected zero totals, got %+v", res.Totals)
	}
	if res.Services == nil || res.Labor == nil || res.Issues == nil {
		t.Fatalf("expected empty, non-nil slices in result")
	}
}

func TestCalculate_MarginOfOneIsClamped(t *testing.T) {
	calc := newTestCalculator(t, DefaultOptions())
	q := colombiaQuote(t)
	q.Margin = 1.0

	res := calc.Calculate(q)
	nearlyEqual(t, "sell price", res.Totals.SellPrice, 122.4/0.01)
	if len(res.Issues) != 1 || res.Issues[0].Code != CodeMarginClamped {
		t.Fatalf("expected one clamp issue, got %+v", res.Issues)
	}
}

func TestCalculate_DistributedCostAndLabor(t *testing.T) {
	calc := newTestCalculator(t, DefaultOptions())
	q := colombiaQuote(t)
	q.Margin = 0
	q.RiskLevel = "0"
	q.DistributedCost = 50
	q.Services = append(q.Services, ServiceLineItem{
		Offering:     "IBM Support for Red Hat",
		SLC:          "M5B",
		Quantity:     2,
		Start:        mustDate(t, "2026-01-01"),
		End:          mustDate(t, "2026-06-30"),
		UnitCostBase: 5,
	})
	q.Labor = []LaborLineItem{{Category: "Brand Rate Full", Code: "B1", Quantity: 3}}

	res := calc.Calculate(q)
	if len(res.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", res.Issues)
	}

	nearlyEqual(t, "line 0", res.Services[0].Total, 120+25)
	nearlyEqual(t, "line 1", res.Services[1].Total, 5*2*6*1.05+25)
	if res.Services[1].OfferingCode != "6948-B73" {
		t.Fatalf("offering code not resolved: %+v", res.Services[1])
	}

	labor := 15247.99 / 3775.22225 * 3
	nearlyEqual(t, "labor", res.Labor[0].Total, labor)
	nearlyEqual(t, "total", res.Totals.TotalCost, 145+88+labor)
}

func TestCalculate_DegradedInputsReportAndContinue(t *testing.T) {
	calc := newTestCalculator(t, DefaultOptions())
	q := Quote{
		Country:   "Atlantis",
		RiskLevel: "Extreme",
		Margin:    0.5,
		Services: []ServiceLineItem{
			{Offering: "Unknown Thing", SLC: "NOPE", Quantity: 0, UnitCostBase: -4},
		},
		Labor: []LaborLineItem{{Category: "Machine Category", Code: "Q", Quantity: 1}},
	}

	res := calc.Calculate(q)

	if res.Country.ExchangeRate != 1 || res.Country.CurrencyCode != BaseCurrency {
		t.Fatalf("expected base currency placeholder, got %+v", res.Country)
	}
	want := []string{
		CodeUnknownCountry,
		CodeInvalidQuantity,
		CodeInvalidCost,
		CodeMissingDates,
		CodeSLCNotFound,
		CodeUnknownOffering,
		CodeLaborRateNotFound,
		CodeUnknownRisk,
	}
	if len(res.Issues) != len(want) {
		t.Fatalf("expected %d issues, got %+v", len(want), res.Issues)
	}
	for i, code := range want {
		if res.Issues[i].Code != code {
			t.Fatalf("issue %d = %s, want %s", i, res.Issues[i].Code, code)
		}
	}
	if res.Totals.FinalPrice != 0 {
		t.Fatalf("expected zero price, got %v", res.Totals.FinalPrice)
	}
}

func TestCalculate_LineDatesOverrideContract(t *testing.T) {
	calc := newTestCalculator(t, DefaultOptions())
	q := colombiaQuote(t)
	q.Services[0].Start = NewDate(2026, time.March, 1)
	q.Services[0].End = NewDate(2026, time.May, 31)

	res := calc.Calculate(q)
	nearlyEqual(t, "months", res.Services[0].Months, 3)
}

func TestCalculate_AveragedPolicy(t *testing.T) {
	calc := newTestCalculator(t, Options{DurationPolicy: PolicyAveraged, LaborFallbackToAll: true})
	q := colombiaQuote(t)
	q.ContractEnd = mustDate(t, "2026-12-17")

	res := calc.Calculate(q)
	nearlyEqual(t, "months", res.Services[0].Months, 11.5)
	nearlyEqual(t, "total", res.Totals.TotalCost, 115)
}

func TestCalculate_OverflowIsZeroedAndReported(t *testing.T) {
	calc := newTestCalculator(t, DefaultOptions())
	q := colombiaQuote(t)
	q.Services[0] = ServiceLineItem{Quantity: 1, UnitCostBase: 1e307}

	res := calc.Calculate(q)

	col := &Collector{issues: res.Issues}
	if !col.Has(CodeNonFiniteAmount) {
		t.Fatalf("expected non-finite amount issue, got %+v", res.Issues)
	}
	if res.Services[0].UnitCostLocal != 0 {
		t.Fatalf("expected overflowed local cost to be zeroed, got %v", res.Services[0].UnitCostLocal)
	}
	tot := res.Totals
	for name, v := range map[string]float64{
		"total cost":     tot.TotalCost,
		"cost with risk": tot.CostWithRisk,
		"sell price":     tot.SellPrice,
		"tax":            tot.TaxAmount,
		"final":          tot.FinalPrice,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", name, v)
		}
	}
	if tot.FinalPrice != 0 {
		t.Fatalf("expected overflowed final price to be zeroed, got %v", tot.FinalPrice)
	}
	if _, err := json.Marshal(res); err != nil {
		t.Fatalf("result must stay encodable: %v", err)
	}
}

func TestCalculate_NonFiniteUnitCostIsInvalid(t *testing.T) {
	calc := newTestCalculator(t, DefaultOptions())
	for _, cost := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		q := colombiaQuote(t)
		q.Services[0] = ServiceLineItem{Quantity: 1, UnitCostBase: cost}

		res := calc.Calculate(q)
		if len(res.Issues) != 1 || res.Issues[0].Code != CodeInvalidCost {
			t.Fatalf("cost %v: expected one invalid cost issue, got %+v", cost, res.Issues)
		}
		if res.Totals.FinalPrice != 0 {
			t.Fatalf("cost %v: expected zero price, got %v", cost, res.Totals.FinalPrice)
		}
	}
}
