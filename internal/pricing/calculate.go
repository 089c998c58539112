package pricing

import (
	"math"
	"strconv"

	"github.com/Simplici0/supportquote/internal/refdata"
)

// ServiceLineResult is a priced service line.
type ServiceLineResult struct {
	Offering         string  `json:"offering"`
	OfferingCode     string  `json:"offering_code"`
	OfferingCategory string  `json:"offering_category"`
	SLC              string  `json:"slc"`
	Quantity         int     `json:"quantity"`
	Months           float64 `json:"months"`
	UnitCostBase     float64 `json:"unit_cost_base"`
	UnitCostLocal    float64 `json:"unit_cost_local"`
	SLCFactor        float64 `json:"slc_factor"`
	DistributedShare float64 `json:"distributed_share"`
	Total            float64 `json:"total"`
}

// LaborLineResult is a priced labor line. LocalRate is the resolved rate in
// the country's currency; Total is base currency.
type LaborLineResult struct {
	Category  string  `json:"category"`
	Code      string  `json:"code"`
	Quantity  int     `json:"quantity"`
	LocalRate float64 `json:"local_rate"`
	Total     float64 `json:"total"`
}

// Result is the full output of one calculation.
type Result struct {
	Country      refdata.Country     `json:"country"`
	CurrencyMode CurrencyMode        `json:"currency_mode"`
	Services     []ServiceLineResult `json:"services"`
	Labor        []LaborLineResult   `json:"labor"`
	Totals       Totals              `json:"totals"`
	Issues       []Issue             `json:"issues"`
}

// Calculate prices q from scratch. It never fails: every bad input is
// replaced by a safe default and listed in Result.Issues.
func (c *Calculator) Calculate(q Quote) Result {
	col := NewCollector(c.log)

	country := c.Country(q.Country, col)
	rate := SafeRate(country.ExchangeRate, col)

	share := DistributedShare(q.DistributedCost, len(q.Services))

	services := make([]ServiceLineResult, 0, len(q.Services))
	serviceTotals := make([]float64, 0, len(q.Services))
	for i, item := range q.Services {
		line := c.priceService(i, item, q, country.Name, rate, share, col)
		services = append(services, line)
		serviceTotals = append(serviceTotals, line.Total)
	}

	labor := make([]LaborLineResult, 0, len(q.Labor))
	laborTotals := make([]float64, 0, len(q.Labor))
	for i, item := range q.Labor {
		qty := validQuantity(item.Quantity, "labor", i, col)
		local := c.LaborRate(country.Name, item.Category, item.Code, col)
		line := LaborLineResult{
			Category:  item.Category,
			Code:      item.Code,
			Quantity:  qty,
			LocalRate: local,
			Total:     Finite(LaborLineTotal(local, rate, qty, nil), "labor["+strconv.Itoa(i)+"].total", col),
		}
		labor = append(labor, line)
		laborTotals = append(laborTotals, line.Total)
	}

	risk := c.RiskFraction(q.RiskLevel, col)
	totals := Aggregate(serviceTotals, laborTotals, risk, q.Margin, country.TaxRate, col)
	totals.finite(col)

	return Result{
		Country:      country,
		CurrencyMode: q.CurrencyMode,
		Services:     services,
		Labor:        labor,
		Totals:       totals,
		Issues:       col.Issues(),
	}
}

// Country returns the named country, or a base-currency placeholder with
// rate 1 and no tax when it is unknown.
func (c *Calculator) Country(name string, r Reporter) refdata.Country {
	if country, ok := c.store.Country(name); ok {
		return country
	}
	reporterOrDiscard(r).Report(Issue{
		Severity: SeverityWarning,
		Code:     CodeUnknownCountry,
		Message:  "unknown country, pricing in base currency without tax",
		Fields:   map[string]string{"country": name},
	})
	return refdata.Country{Name: name, CurrencyCode: BaseCurrency, ExchangeRate: 1, TaxRate: 0}
}

// LineMonths returns the billable months for a service line, using the
// contract dates when the line has none of its own.
func (c *Calculator) LineMonths(item ServiceLineItem, q Quote, index int, r Reporter) float64 {
	start, end := item.Start, item.End
	if start.IsZero() || end.IsZero() {
		start, end = q.ContractStart, q.ContractEnd
	}
	if start.IsZero() || end.IsZero() {
		reporterOrDiscard(r).Report(Issue{
			Severity: SeverityWarning,
			Code:     CodeMissingDates,
			Message:  "service line has no usable dates, duration is 0",
			Fields:   map[string]string{"line": strconv.Itoa(index)},
		})
		return 0
	}
	return Months(start, end, c.opts.DurationPolicy)
}

func (c *Calculator) priceService(i int, item ServiceLineItem, q Quote, country string, rate, share float64, r Reporter) ServiceLineResult {
	qty := validQuantity(item.Quantity, "service", i, r)

	var base, local float64
	if q.CurrencyMode == ModeLocal {
		local = validCost(item.UnitCostLocal, i, r)
		base = ToBase(local, rate, ModeLocal, r)
	} else {
		base = validCost(item.UnitCostBase, i, r)
		local = ToLocal(base, rate, r)
	}

	line := ServiceLineResult{
		Offering:         item.Offering,
		SLC:              item.SLC,
		Quantity:         qty,
		Months:           c.LineMonths(item, q, i, r),
		UnitCostBase:     base,
		UnitCostLocal:    local,
		SLCFactor:        c.ServiceLevelFactor(country, item.SLC, r),
		DistributedShare: share,
	}
	if item.Offering != "" {
		if o, ok := c.store.Offering(item.Offering); ok {
			line.OfferingCode = o.Code
			line.OfferingCategory = o.Category
		} else {
			reporterOrDiscard(r).Report(Issue{
				Severity: SeverityWarning,
				Code:     CodeUnknownOffering,
				Message:  "offering not in catalog",
				Fields:   map[string]string{"line": strconv.Itoa(i), "offering": item.Offering},
			})
		}
	}
	line.Total = Finite(ServiceLineTotal(base, qty, line.Months, line.SLCFactor, share), "services["+strconv.Itoa(i)+"].total", r)
	return line
}

func validQuantity(qty int, kind string, index int, r Reporter) int {
	if qty >= 1 {
		return qty
	}
	reporterOrDiscard(r).Report(Issue{
		Severity: SeverityWarning,
		Code:     CodeInvalidQuantity,
		Message:  "quantity below 1, using 1",
		Fields: map[string]string{
			"kind":     kind,
			"line":     strconv.Itoa(index),
			"quantity": strconv.Itoa(qty),
		},
	})
	return 1
}

func validCost(cost float64, index int, r Reporter) float64 {
	if cost >= 0 && !math.IsInf(cost, 1) {
		return cost
	}
	reporterOrDiscard(r).Report(Issue{
		Severity: SeverityWarning,
		Code:     CodeInvalidCost,
		Message:  "unit cost is negative or not finite, using 0",
		Fields: map[string]string{
			"line": strconv.Itoa(index),
			"cost": strconv.FormatFloat(cost, 'g', -1, 64),
		},
	})
	return 0
}
