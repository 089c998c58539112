package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/supportquote/internal/money"
)

// Text renders a plain-text summary suitable for pasting into an email.
func Text(rec Record) string {
	var b strings.Builder
	amount := func(v decimal.Decimal) string { return money.Format(v, rec.Currency) }

	b.WriteString("Support contract quote\n")
	fmt.Fprintf(&b, "Generated: %s\n", rec.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Country: %s\n", rec.Country)
	fmt.Fprintf(&b, "Currency: %s (%s)\n", rec.Currency, rec.Symbol)
	if rec.ContractStart != "" || rec.ContractEnd != "" {
		fmt.Fprintf(&b, "Contract: %s to %s\n", rec.ContractStart, rec.ContractEnd)
	}

	b.WriteString("\nServices:\n")
	if len(rec.Services) == 0 {
		b.WriteString("- none\n")
	}
	for i, s := range rec.Services {
		name := s.Offering
		if name == "" {
			name = "(no offering)"
		}
		fmt.Fprintf(&b, "%d. %s", i+1, name)
		if s.SLC != "" {
			fmt.Fprintf(&b, " [%s x%g]", s.SLC, s.SLCFactor)
		}
		fmt.Fprintf(&b, " qty %d, %g months: %s\n", s.Quantity, s.Months, amount(s.Total))
	}

	if len(rec.Labor) > 0 {
		b.WriteString("\nLabor:\n")
		for i, l := range rec.Labor {
			fmt.Fprintf(&b, "%d. %s %s qty %d: %s\n", i+1, l.Category, l.Code, l.Quantity, amount(l.Total))
		}
	}

	b.WriteString("\nAssumptions:\n")
	fmt.Fprintf(&b, "- Risk: %s (%s)\n", rec.RiskLevel, percent(rec.RiskFraction))
	fmt.Fprintf(&b, "- Margin: %s\n", percent(rec.Margin))
	fmt.Fprintf(&b, "- Tax: %s\n", percent(rec.TaxRate))

	b.WriteString("\nTotals:\n")
	fmt.Fprintf(&b, "Total cost: %s\n", amount(rec.Totals.TotalCost))
	fmt.Fprintf(&b, "Contingency: %s\n", amount(rec.Totals.Contingency))
	fmt.Fprintf(&b, "Sell price: %s\n", amount(rec.Totals.SellPrice))
	fmt.Fprintf(&b, "Tax: %s\n", amount(rec.Totals.TaxAmount))
	fmt.Fprintf(&b, "Final price: %s\n", amount(rec.Totals.FinalPrice))

	if len(rec.Issues) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, is := range rec.Issues {
			fmt.Fprintf(&b, "- [%s] %s\n", is.Severity, is.Message)
		}
	}

	return b.String()
}

func percent(f float64) string {
	return decimal.NewFromFloat(f).Shift(2).Round(2).String() + "%"
}
