package calendar

import (
	"fmt"
	"strings"
	"time"
)

// CalendarID labels a holiday calendar. It carries no holiday rules of its
// own: every Calendar treats weekends as non-business days and takes its
// holidays from the dates passed to New.
type CalendarID string

const (
	WeekendsOnly CalendarID = "WEEKENDS"
	TARGET       CalendarID = "TARGET"
	JPN          CalendarID = "JPN"
	USD          CalendarID = "USD"
	KRW          CalendarID = "KRW"
)

// ParseID maps a calendar name onto a CalendarID. An empty name is
// WeekendsOnly. The result only names the calendar; supply its holidays to New.
func ParseID(s string) (CalendarID, error) {
	switch id := CalendarID(strings.ToUpper(strings.TrimSpace(s))); id {
	case WeekendsOnly, TARGET, JPN, USD, KRW:
		return id, nil
	case "":
		return WeekendsOnly, nil
	default:
		return "", fmt.Errorf("calendar: unknown calendar %q", s)
	}
}

// Calendar is a weekend rule plus an explicit holiday set. A nil *Calendar
// treats only Saturdays and Sundays as non-business days.
type Calendar struct {
	id       CalendarID
	holidays map[string]struct{}
}

// New returns a calendar with the given holidays.
func New(id CalendarID, holidays ...time.Time) *Calendar {
	c := &Calendar{id: id, holidays: make(map[string]struct{}, len(holidays))}
	for _, h := range holidays {
		c.holidays[h.Format("2006-01-02")] = struct{}{}
	}
	return c
}

// ID returns the calendar identifier.
func (c *Calendar) ID() CalendarID {
	if c == nil {
		return WeekendsOnly
	}
	return c.id
}

func (c *Calendar) isHoliday(t time.Time) bool {
	if c == nil {
		return false
	}
	_, ok := c.holidays[t.Format("2006-01-02")]
	return ok
}

// IsBusinessDay checks weekends and the holiday set.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !c.isHoliday(t)
}

// Adjust applies Modified Following.
func (c *Calendar) Adjust(t time.Time) time.Time {
	origMonth := t.Month()
	for !c.IsBusinessDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !c.IsBusinessDay(t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func (c *Calendar) AddBusinessDays(t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if c.IsBusinessDay(t) {
			n -= step
		}
	}
	return t
}

// LastBusinessDayOfMonth returns the last business day of the month containing t.
func (c *Calendar) LastBusinessDayOfMonth(t time.Time) time.Time {
	nextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	return c.AddBusinessDays(nextMonth, -1)
}

// IsEndOfMonth checks if t is the last business day of its month.
func (c *Calendar) IsEndOfMonth(t time.Time) bool {
	return t.Equal(c.LastBusinessDayOfMonth(t))
}
