package schema

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the dashboard filters.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component. The zero value means
// the bound is absent.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateRange is a pair of optional calendar dates. Start <= End is expected
// but never enforced here; the backend is authoritative.
type DateRange struct {
	Start Date
	End   Date
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// At returns the instant of the given wall clock time on this date in loc.
func (d Date) At(hour, minute, second int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, second, 0, loc)
}

// String formats the date as YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// LastDays returns the range covering the n days before today through today.
func LastDays(today Date, n int) DateRange {
	return DateRange{Start: today.AddDays(-n), End: today}
}
