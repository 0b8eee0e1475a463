package utils

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date layout used on every input and output boundary.
const DateLayout = "2006-01-02"

// StrictlyAscending reports whether dates are strictly increasing. It returns the
// index of the first offending date, or -1.
func StrictlyAscending(dates []time.Time) int {
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return i
		}
	}
	return -1
}

// ParseDate converts YYYY-MM-DD to a UTC midnight time.Time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: %w", err)
	}
	return t, nil
}

// Days returns the number of calendar days between two dates.
func Days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// AddMonth behaves like Excel's EDATE, avoiding Go's month normalization surprises.
func AddMonth(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	last := first.AddDate(0, 1, -1).Day()
	day := t.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
