package domain

import (
	"fmt"
	"time"
)

// BeginningOfTime marks an interval with no lower bound
var BeginningOfTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateInterval is a half-open range of calendar dates [Start, End).
// Start <= End is not enforced; an inverted interval matches nothing.
type DateInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateInterval truncates both bounds to UTC calendar dates
func NewDateInterval(start, end time.Time) DateInterval {
	return DateInterval{Start: Date(start), End: Date(end)}
}

// Date returns midnight UTC of t's UTC calendar date
func Date(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Unbounded returns true if the interval starts at the beginning of time
func (d DateInterval) Unbounded() bool {
	return d.Start.Equal(BeginningOfTime)
}

// Contains reports whether the calendar date of t falls in [Start, End)
func (d DateInterval) Contains(t time.Time) bool {
	day := Date(t)
	return !day.Before(d.Start) && day.Before(d.End)
}

// Label renders the interval for humans, e.g. "Jan 5th - Jun 1st" or
// "Up until Jun 1st, 2023". The year is dropped when both ends share one,
// and for unbounded intervals when the end falls in today's year.
func (d DateInterval) Label(today time.Time) string {
	sameYear := d.Start.Year() == d.End.Year()
	endIsThisYear := d.End.Year() == today.UTC().Year()
	unbounded := d.Unbounded()

	start := "Up until"
	if !unbounded {
		start = FormatDate(d.Start, !sameYear) + " -"
	}
	return start + " " + FormatDate(d.End, !(sameYear || (unbounded && endIsThisYear)))
}

// FormatDate renders a date as "Jan 2nd" or "Jan 2nd, 2006"
func FormatDate(t time.Time, withYear bool) string {
	s := fmt.Sprintf("%s %d%s", t.Format("Jan"), t.Day(), OrdinalSuffix(t.Day()))
	if withYear {
		s += fmt.Sprintf(", %d", t.Year())
	}
	return s
}

// OrdinalSuffix returns the English ordinal suffix for a day of month
func OrdinalSuffix(day int) string {
	switch day {
	case 1, 21, 31:
		return "st"
	case 2, 22:
		return "nd"
	case 3, 23:
		return "rd"
	default:
		return "th"
	}
}
