package pricing

import (
	"strconv"
	"strings"

	"github.com/Simplici0/supportquote/internal/refdata"
)

// neutralFactor is the uplift applied when no service level applies.
const neutralFactor = 1.0

// ServiceLevelFactor resolves the uplift for an SLC code in the country's
// scope. An exact code match wins. Otherwise the first entry whose code or
// descriptive key contains the requested code is used, because rate sheets
// often store the code embedded in a longer key. Several such candidates
// are reported as ambiguous. A blank code means no uplift.
func (c *Calculator) ServiceLevelFactor(country, code string, r Reporter) float64 {
	r = reporterOrDiscard(r)

	code = strings.TrimSpace(code)
	if code == "" {
		return neutralFactor
	}

	scope := refdata.ScopeForCountry(country)
	var candidates []refdata.ServiceLevelEntry
	for _, e := range c.store.ServiceLevels() {
		if !e.Scope.Matches(scope) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(e.Code), code) {
			return e.Uplift
		}
		if containsFold(e.Code, code) || containsFold(e.Key, code) {
			candidates = append(candidates, e)
		}
	}

	if len(candidates) > 0 {
		if len(candidates) > 1 {
			matched := make([]string, 0, len(candidates))
			for _, e := range candidates {
				matched = append(matched, e.Code)
			}
			r.Report(Issue{
				Severity: SeverityWarning,
				Code:     CodeSLCAmbiguous,
				Message:  "SLC code matches several service levels, using the first",
				Fields: map[string]string{
					"scope":   string(scope),
					"slc":     code,
					"matches": strings.Join(matched, ","),
					"uplift":  strconv.FormatFloat(candidates[0].Uplift, 'g', -1, 64),
				},
			})
		}
		return candidates[0].Uplift
	}

	r.Report(Issue{
		Severity: SeverityWarning,
		Code:     CodeSLCNotFound,
		Message:  "SLC code not found for scope, using uplift 1.0",
		Fields:   map[string]string{"scope": string(scope), "slc": code},
	})
	return neutralFactor
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
