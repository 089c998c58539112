package pricing

import (
	"strconv"
	"strings"
)

// RiskFraction maps a risk label to its contingency fraction. A label that
// is not in the table but parses as a fraction in [0, 1) is used as is.
func (c *Calculator) RiskFraction(label string, r Reporter) float64 {
	label = strings.TrimSpace(label)
	for _, lvl := range c.store.RiskLevels() {
		if strings.EqualFold(lvl.Label, label) {
			return lvl.Fraction
		}
	}

	if v, err := strconv.ParseFloat(label, 64); err == nil && v >= 0 && v < 1 {
		return v
	}

	reporterOrDiscard(r).Report(Issue{
		Severity: SeverityWarning,
		Code:     CodeUnknownRisk,
		Message:  "unknown risk level, using 0",
		Fields:   map[string]string{"risk": label},
	})
	return 0
}
