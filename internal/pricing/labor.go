package pricing

import (
	"strings"

	"github.com/Simplici0/supportquote/internal/refdata"
)

// LaborRate resolves the local-currency labor rate for a country, rate
// category and definition code. The global category reads the ALL scope;
// other categories read the country's regional scope and, when enabled,
// fall back to ALL. A missing row or an empty country cell yields 0.
func (c *Calculator) LaborRate(country, category, code string, r Reporter) float64 {
	r = reporterOrDiscard(r)

	category = strings.TrimSpace(category)
	code = strings.TrimSpace(code)

	scope := refdata.ScopeForCountry(country)
	if strings.EqualFold(category, refdata.GlobalLaborCategory) {
		scope = refdata.ScopeAll
	}

	entry, ok := c.findLabor(scope, category, code)
	if !ok && c.opts.LaborFallbackToAll && scope != refdata.ScopeAll {
		entry, ok = c.findLabor(refdata.ScopeAll, category, code)
	}

	fields := map[string]string{
		"country":  country,
		"category": category,
		"code":     code,
		"scope":    string(scope),
	}
	if !ok {
		r.Report(Issue{
			Severity: SeverityError,
			Code:     CodeLaborRateNotFound,
			Message:  "no labor rate row for category and code",
			Fields:   fields,
		})
		return 0
	}

	rate, ok := entry.Rate(country)
	if !ok {
		fields["scope"] = string(entry.Scope)
		r.Report(Issue{
			Severity: SeverityError,
			Code:     CodeLaborCountryMissing,
			Message:  "labor rate row found but country has no value",
			Fields:   fields,
		})
		return 0
	}
	return rate
}

func (c *Calculator) findLabor(scope refdata.Scope, category, code string) (refdata.LaborRateEntry, bool) {
	for _, e := range c.store.LaborRates() {
		if e.Scope.Matches(scope) && strings.TrimSpace(e.Category) == category && strings.TrimSpace(e.Code) == code {
			return e, true
		}
	}
	return refdata.LaborRateEntry{}, false
}
