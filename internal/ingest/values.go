package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/supportquote/internal/pricing"
)

var dateLayouts = []string{
	pricing.DateLayout,
	"02/01/2006",
	"2/1/2006",
	"01-02-06",
	"2006/01/02",
}

// parseNumber accepts plain numbers, currency symbols, thousands commas
// next to a decimal point, and a lone decimal comma. NaN and infinities are
// rejected.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$R€ ")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseDate accepts the common text layouts and Excel serial day numbers.
func parseDate(s string) (pricing.Date, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pricing.DateOf(t), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && !math.IsInf(serial, 1) {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return pricing.DateOf(t), true
		}
	}
	return pricing.Date{}, false
}
