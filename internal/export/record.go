// Package export renders a calculated quote as a flat record, an xlsx
// workbook or a plain-text summary.
package export

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/supportquote/internal/money"
	"github.com/Simplici0/supportquote/internal/pricing"
)

// ServiceRow is one service line in display currency.
type ServiceRow struct {
	Offering     string          `json:"offering"`
	OfferingCode string          `json:"offering_code"`
	SLC          string          `json:"slc"`
	Quantity     int             `json:"quantity"`
	Months       float64         `json:"months"`
	SLCFactor    float64         `json:"slc_factor"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Total        decimal.Decimal `json:"total"`
}

// LaborRow is one labor line in display currency.
type LaborRow struct {
	Category string          `json:"category"`
	Code     string          `json:"code"`
	Quantity int             `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	Total    decimal.Decimal `json:"total"`
}

// Record is the read-only snapshot handed to exporters.
type Record struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	Country       string          `json:"country"`
	Currency      string          `json:"currency"`
	Symbol        string          `json:"symbol"`
	Factor        float64         `json:"factor"`
	RiskLevel     string          `json:"risk_level"`
	RiskFraction  float64         `json:"risk_fraction"`
	Margin        float64         `json:"margin"`
	TaxRate       float64         `json:"tax_rate"`
	ContractStart string          `json:"contract_start"`
	ContractEnd   string          `json:"contract_end"`
	Services      []ServiceRow    `json:"services"`
	Labor         []LaborRow      `json:"labor"`
	Totals        money.Amounts   `json:"totals"`
	Issues        []pricing.Issue `json:"issues"`
}

// NewRecord flattens a quote and its calculation result.
func NewRecord(q pricing.Quote, res pricing.Result, generatedAt time.Time) Record {
	display := money.Present(res.Totals, res.Country, q.CurrencyMode)

	rec := Record{
		GeneratedAt:   generatedAt,
		Country:       res.Country.Name,
		Currency:      display.Currency,
		Symbol:        display.Symbol,
		Factor:        display.Factor,
		RiskLevel:     q.RiskLevel,
		RiskFraction:  res.Totals.RiskFraction,
		Margin:        res.Totals.MarginFraction,
		TaxRate:       res.Totals.TaxRate,
		ContractStart: q.ContractStart.String(),
		ContractEnd:   q.ContractEnd.String(),
		Services:      make([]ServiceRow, 0, len(res.Services)),
		Labor:         make([]LaborRow, 0, len(res.Labor)),
		Totals:        display.Totals,
		Issues:        res.Issues,
	}

	for _, s := range res.Services {
		rec.Services = append(rec.Services, ServiceRow{
			Offering:     s.Offering,
			OfferingCode: s.OfferingCode,
			SLC:          s.SLC,
			Quantity:     s.Quantity,
			Months:       s.Months,
			SLCFactor:    s.SLCFactor,
			UnitCost:     display.Amount(s.UnitCostBase),
			Total:        display.Amount(s.Total),
		})
	}

	// Labor rates are stored in local currency; show them in base when the
	// quote is displayed in base.
	rateFactor := 1.0
	if q.CurrencyMode != pricing.ModeLocal {
		rateFactor = 1 / pricing.SafeRate(res.Country.ExchangeRate, nil)
	}
	for _, l := range res.Labor {
		rec.Labor = append(rec.Labor, LaborRow{
			Category: l.Category,
			Code:     l.Code,
			Quantity: l.Quantity,
			Rate:     money.Round(decimal.NewFromFloat(l.LocalRate).Mul(decimal.NewFromFloat(rateFactor))),
			Total:    display.Amount(l.Total),
		})
	}

	return rec
}
