package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TenorUnit is the period unit of a Tenor.
type TenorUnit byte

const (
	Day   TenorUnit = 'D'
	Week  TenorUnit = 'W'
	Month TenorUnit = 'M'
	Year  TenorUnit = 'Y'
)

// Tenor is a period such as 1W, 3M or 10Y.
type Tenor struct {
	N    int
	Unit TenorUnit
}

// ParseTenor parses tenor strings like "1W", "3M", "10Y" or "2D".
func ParseTenor(s string) (Tenor, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) < 2 {
		return Tenor{}, fmt.Errorf("ParseTenor: invalid tenor %q", s)
	}
	unit := TenorUnit(s[len(s)-1])
	switch unit {
	case Day, Week, Month, Year:
	default:
		return Tenor{}, fmt.Errorf("ParseTenor: unknown unit in %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return Tenor{}, fmt.Errorf("ParseTenor: invalid count in %q", s)
	}
	return Tenor{N: n, Unit: unit}, nil
}

func (t Tenor) String() string {
	return strconv.Itoa(t.N) + string(t.Unit)
}

// AddTo adds the tenor to d without business-day adjustment. Month and year
// tenors follow EDATE semantics.
func (t Tenor) AddTo(d time.Time) time.Time {
	switch t.Unit {
	case Day:
		return d.AddDate(0, 0, t.N)
	case Week:
		return d.AddDate(0, 0, 7*t.N)
	case Month:
		return AddMonth(d, t.N)
	default:
		return AddMonth(d, 12*t.N)
	}
}
