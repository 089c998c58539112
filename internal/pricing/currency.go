package pricing

import (
	"math"
	"strconv"
	"strings"
)

// BaseCurrency is the currency every calculation runs in.
const BaseCurrency = "USD"

// CurrencyMode selects which unit cost field the user edits.
type CurrencyMode string

const (
	ModeBase  CurrencyMode = "base"
	ModeLocal CurrencyMode = "local"
)

// ParseCurrencyMode maps user input onto a mode. Anything other than
// "local" means base.
func ParseCurrencyMode(s string) CurrencyMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeLocal)) {
		return ModeLocal
	}
	return ModeBase
}

// SafeRate returns rate when it is usable and 1.0 otherwise, reporting the
// substitution as critical.
func SafeRate(rate float64, r Reporter) float64 {
	if rate > 0 && !math.IsInf(rate, 1) {
		return rate
	}
	reporterOrDiscard(r).Report(Issue{
		Severity: SeverityCritical,
		Code:     CodeInvalidExchangeRate,
		Message:  "exchange rate is not a positive finite number, using 1.0",
		Fields:   map[string]string{"rate": strconv.FormatFloat(rate, 'g', -1, 64)},
	})
	return 1.0
}

// ToBase normalizes amount to base currency. In local mode the amount is
// divided by rate; in base mode it is returned unchanged.
func ToBase(amount, rate float64, mode CurrencyMode, r Reporter) float64 {
	if mode != ModeLocal {
		return amount
	}
	return Finite(amount/SafeRate(rate, r), "base_amount", r)
}

// ToLocal converts a base currency amount to local currency.
func ToLocal(amount, rate float64, r Reporter) float64 {
	return Finite(amount*SafeRate(rate, r), "local_amount", r)
}

// Finite returns v, or 0 when v is NaN or infinite, reporting the
// substitution under field.
func Finite(v float64, field string, r Reporter) float64 {
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	reporterOrDiscard(r).Report(Issue{
		Severity: SeverityError,
		Code:     CodeNonFiniteAmount,
		Message:  "amount is not a finite number, using 0",
		Fields: map[string]string{
			"field": field,
			"value": strconv.FormatFloat(v, 'g', -1, 64),
		},
	})
	return 0
}
