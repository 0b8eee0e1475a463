package instruments

import (
	"fmt"

	"github.com/meenmo/ratecore/calendar"
	"github.com/meenmo/ratecore/utils"
)

// Frequency enumerates payment frequencies in months.
type Frequency int

const (
	FreqAnnual    Frequency = 12
	FreqSemi      Frequency = 6
	FreqQuarterly Frequency = 3
	FreqMonthly   Frequency = 1
)

// FrequencyFromTenor maps a month or year tenor such as 6M or 1Y onto a Frequency.
func FrequencyFromTenor(t utils.Tenor) (Frequency, error) {
	switch {
	case t.Unit == utils.Month && t.N > 0:
		return Frequency(t.N), nil
	case t.Unit == utils.Year && t.N > 0:
		return Frequency(12 * t.N), nil
	default:
		return 0, fmt.Errorf("FrequencyFromTenor: unsupported payment tenor %s", t)
	}
}

// RollConvention for month-end handling.
type RollConvention string

const (
	// RollEDATE keeps the anchor's day of month, clamped to the month end.
	RollEDATE RollConvention = ""
	// RollEOM pins periods to month ends when the anchor is a month end.
	RollEOM RollConvention = "EOM"
)

// ScheduleDirection selects where regular periods are anchored.
type ScheduleDirection string

const (
	// ScheduleBackward anchors periods on maturity, leaving any stub at the front.
	ScheduleBackward ScheduleDirection = "BACKWARD"
	// ScheduleForward anchors periods on the effective date, leaving any stub at the back.
	ScheduleForward ScheduleDirection = "FORWARD"
)

// LegConvention captures the schedule and accrual settings of one swap leg.
// Dates are adjusted Modified Following on Calendar.
type LegConvention struct {
	DayCount          utils.DayCount
	PayFrequency      Frequency
	PayDelayDays      int
	Calendar          *calendar.Calendar
	RollConvention    RollConvention
	ScheduleDirection ScheduleDirection
}

// WithCalendar returns a copy of the convention adjusted on cal.
func (l LegConvention) WithCalendar(cal *calendar.Calendar) LegConvention {
	l.Calendar = cal
	return l
}

// Preset leg conventions. Calendars default to weekends only.
var (
	EURFixedAnnual = LegConvention{
		DayCount:          utils.Thirty360E,
		PayFrequency:      FreqAnnual,
		RollConvention:    RollEOM,
		ScheduleDirection: ScheduleBackward,
	}

	EURIBOR3MFloat = LegConvention{
		DayCount:          utils.Act360,
		PayFrequency:      FreqQuarterly,
		RollConvention:    RollEOM,
		ScheduleDirection: ScheduleBackward,
	}

	EURIBOR6MFloat = LegConvention{
		DayCount:          utils.Act360,
		PayFrequency:      FreqSemi,
		RollConvention:    RollEOM,
		ScheduleDirection: ScheduleBackward,
	}

	USDFixedAnnual = LegConvention{
		DayCount:          utils.Act360,
		PayFrequency:      FreqAnnual,
		PayDelayDays:      2,
		ScheduleDirection: ScheduleForward,
	}
)
