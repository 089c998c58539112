package pricing

import (
	"math"
	"time"
)

// DurationPolicy selects how a date range becomes billable months.
type DurationPolicy string

const (
	// PolicyCalendar counts whole calendar months and bills any started
	// month in full, with a minimum of one month.
	PolicyCalendar DurationPolicy = "calendar"
	// PolicyAveraged divides elapsed days by an average month length and
	// keeps one decimal.
	PolicyAveraged DurationPolicy = "averaged"
)

const averageDaysPerMonth = 30.44

// Months returns the billable duration between start and end. A range that
// ends before it starts yields 0.
func Months(start, end Date, policy DurationPolicy) float64 {
	s, e := DateOf(start.Time), DateOf(end.Time)
	if e.Before(s.Time) {
		return 0
	}
	if policy == PolicyAveraged {
		return averagedMonths(s, e)
	}
	return calendarMonths(s, e)
}

func calendarMonths(start, end Date) float64 {
	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	anchor := addMonthsClamped(start.Time, months)
	if anchor.After(end.Time) {
		months--
		anchor = addMonthsClamped(start.Time, months)
	}

	if end.After(anchor) || months == 0 {
		months++
	}
	return float64(max(1, months))
}

func averagedMonths(start, end Date) float64 {
	days := end.Sub(start.Time).Hours() / 24
	return math.Round(days/averageDaysPerMonth*10) / 10
}

// addMonthsClamped adds n months, pinning the day to the last day of the
// target month instead of overflowing into the next one.
func addMonthsClamped(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := min(t.Day(), lastDay)
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}
