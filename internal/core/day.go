package core

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the canonical calendar-day layout used for storage and range queries.
const DayLayout = "2006-01-02"

// Day is a calendar day in canonical YYYY-MM-DD form. It carries no time-of-day and
// no timezone, so two days compare correctly as plain strings.
type Day string

// Layouts accepted by ToDay, most specific first.
var dayInputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	DayLayout,
}

// ToDay normalizes a timestamp-like string to its calendar day. The day is the one
// written in the timestamp: an offset is never applied, so "2023-10-31T23:30:00+02:00"
// stays on 2023-10-31. Applying ToDay to a canonical day returns it unchanged.
func ToDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidDay
	}
	for _, layout := range dayInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DayOf(t), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

func (d Day) String() string { return string(d) }

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsZero reports whether the day is unset.
func (d Day) IsZero() bool { return d == "" }

func (d Day) Before(other Day) bool { return d < other }

func (d Day) After(other Day) bool { return d > other }

// AddDays shifts the day by n calendar days.
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

// MonthWindow returns the first and last day of the calendar month that lies
// monthsAgo months before ref. The month is computed from the first of ref's month,
// so March 31 minus one month is February, never March 3.
func MonthWindow(ref time.Time, monthsAgo int) (from, to Day) {
	first := time.Date(ref.Year(), ref.Month()-time.Month(monthsAgo), 1, 0, 0, 0, 0, ref.Location())
	last := first.AddDate(0, 1, -1)
	return DayOf(first), DayOf(last)
}
