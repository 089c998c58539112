package pricing

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Severity grades a recovered condition.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Issue codes.
const (
	CodeInvalidExchangeRate = "invalid_exchange_rate"
	CodeMarginClamped       = "margin_clamped"
	CodeUnknownCountry      = "unknown_country"
	CodeUnknownOffering     = "unknown_offering"
	CodeUnknownRisk         = "unknown_risk_level"
	CodeSLCNotFound         = "slc_not_found"
	CodeSLCAmbiguous        = "slc_ambiguous"
	CodeLaborRateNotFound   = "labor_rate_not_found"
	CodeLaborCountryMissing = "labor_rate_country_missing"
	CodeInvalidQuantity     = "invalid_quantity"
	CodeInvalidCost         = "invalid_cost"
	CodeMissingDates        = "missing_dates"
	CodeNonFiniteAmount     = "non_finite_amount"
)

// Issue is a condition the engine recovered from. Calculation always
// continues; issues make the degraded input visible.
type Issue struct {
	Severity Severity          `json:"severity"`
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// Reporter receives issues raised during a calculation.
type Reporter interface {
	Report(Issue)
}

// Collector records issues for one calculation and mirrors each to a logger.
type Collector struct {
	log    *zap.Logger
	issues []Issue
}

// NewCollector returns a Collector logging to log. A nil logger discards.
func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{log: log}
}

// Report implements Reporter.
func (c *Collector) Report(issue Issue) {
	c.issues = append(c.issues, issue)

	fields := make([]zap.Field, 0, len(issue.Fields)+1)
	fields = append(fields, zap.String("code", issue.Code))
	for k, v := range issue.Fields {
		fields = append(fields, zap.String(k, v))
	}
	c.log.Log(issue.Severity.level(), issue.Message, fields...)
}

// Issues returns the issues reported so far.
func (c *Collector) Issues() []Issue {
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Has reports whether an issue with code was reported.
func (c *Collector) Has(code string) bool {
	for _, i := range c.issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func (s Severity) level() zapcore.Level {
	switch s {
	case SeverityCritical, SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// discard drops issues; used when a caller passes a nil Reporter.
type discard struct{}

func (discard) Report(Issue) {}

func reporterOrDiscard(r Reporter) Reporter {
	if r == nil {
		return discard{}
	}
	return r
}
