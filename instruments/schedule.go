package instruments

import (
	"fmt"
	"time"

	"github.com/meenmo/ratecore/utils"
)

const (
	maxPeriods = 600
	// Stubs shorter than this are merged into the neighbouring period.
	minStubDays = 7
)

// Period is one accrual period of a leg. Dates are business-day adjusted.
type Period struct {
	StartDate time.Time
	EndDate   time.Time
	PayDate   time.Time
	Accrual   float64
}

// GenerateSchedule builds the accrual periods of a leg running from effective
// to maturity.
func GenerateSchedule(effective, maturity time.Time, leg LegConvention) ([]Period, error) {
	if !maturity.After(effective) {
		return nil, fmt.Errorf("GenerateSchedule: maturity %s not after effective %s", maturity.Format(utils.DateLayout), effective.Format(utils.DateLayout))
	}
	if leg.PayFrequency <= 0 {
		return nil, fmt.Errorf("GenerateSchedule: unsupported pay frequency %d", leg.PayFrequency)
	}

	var dates []time.Time
	if leg.ScheduleDirection == ScheduleForward {
		dates = rollForward(effective, maturity, leg)
	} else {
		dates = rollBackward(effective, maturity, leg)
	}
	if len(dates)-1 > maxPeriods {
		return nil, fmt.Errorf("GenerateSchedule: %d periods exceed the limit of %d", len(dates)-1, maxPeriods)
	}

	periods := make([]Period, 0, len(dates)-1)
	for i := 0; i < len(dates)-1; i++ {
		start := leg.Calendar.Adjust(dates[i])
		end := leg.Calendar.Adjust(dates[i+1])
		periods = append(periods, Period{
			StartDate: start,
			EndDate:   end,
			PayDate:   leg.Calendar.AddBusinessDays(end, leg.PayDelayDays),
			Accrual:   utils.YearFraction(start, end, leg.DayCount),
		})
	}
	return periods, nil
}

// rollForward returns unadjusted period boundaries anchored on effective.
func rollForward(effective, maturity time.Time, leg LegConvention) []time.Time {
	dates := []time.Time{effective}
	for k := 1; k <= maxPeriods; k++ {
		d := roll(effective, k*int(leg.PayFrequency), leg)
		if utils.Days(d, maturity) <= minStubDays {
			break
		}
		dates = append(dates, d)
	}
	return append(dates, maturity)
}

// rollBackward returns unadjusted period boundaries anchored on maturity.
func rollBackward(effective, maturity time.Time, leg LegConvention) []time.Time {
	var back []time.Time
	for k := 1; k <= maxPeriods; k++ {
		d := roll(maturity, -k*int(leg.PayFrequency), leg)
		if utils.Days(effective, d) <= minStubDays {
			break
		}
		back = append(back, d)
	}
	dates := make([]time.Time, 0, len(back)+2)
	dates = append(dates, effective)
	for i := len(back) - 1; i >= 0; i-- {
		dates = append(dates, back[i])
	}
	return append(dates, maturity)
}

// roll moves anchor by months. Under RollEOM an anchor on the last calendar
// or business day of its month rolls onto month ends.
func roll(anchor time.Time, months int, leg LegConvention) time.Time {
	d := utils.AddMonth(anchor, months)
	if leg.RollConvention != RollEOM {
		return d
	}
	if anchor.AddDate(0, 0, 1).Month() != anchor.Month() || leg.Calendar.IsEndOfMonth(anchor) {
		return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, d.Location())
	}
	return d
}
