// Package instruments defines the calibrating assets a discount curve is
// bootstrapped from.
//
// Quotes are held as decimals and converted to float64 once, at construction;
// all analytics run in float64.
package instruments

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/ratecore/utils"
)

var (
	ErrInvalidDates              = errors.New("instruments: invalid dates")
	ErrNilCurve                  = errors.New("instruments: nil curve")
	ErrNonPositiveDiscountFactor = errors.New("instruments: non-positive discount factor")
	ErrZeroAnnuity               = errors.New("instruments: zero annuity")
)

// Kind tells the bootstrapper how to guess an asset's node.
type Kind int

const (
	// AnalyticDiscountable assets imply their maturity discount factor in
	// closed form from the curve built so far.
	AnalyticDiscountable Kind = iota
	// SpreadCalibrated assets are quoted as a spread over a reference curve,
	// which provides the initial guess.
	SpreadCalibrated
)

func (k Kind) String() string {
	switch k {
	case AnalyticDiscountable:
		return "AnalyticDiscountable"
	case SpreadCalibrated:
		return "SpreadCalibrated"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Curve supplies discount factors by date.
type Curve interface {
	DiscountFactor(t time.Time) float64
}

// Asset is one calibrating instrument.
type Asset interface {
	ID() string
	Kind() Kind
	MarketQuote() decimal.Decimal
	// RiskMaturityDate is the date of the curve node the asset determines.
	RiskMaturityDate() time.Time
	// DiscountFactorAtMaturity implies the discount factor at RiskMaturityDate
	// from c and the market quote.
	DiscountFactorAtMaturity(c Curve) (float64, error)
	// ImpliedQuote prices the asset's quote off c.
	ImpliedQuote(c Curve) (float64, error)
	// WithMarketQuote returns a copy of the asset quoted at q.
	WithMarketQuote(q decimal.Decimal) Asset
}

type quoted struct {
	id    string
	quote decimal.Decimal
	value float64
}

func newQuoted(id string, q decimal.Decimal) quoted {
	return quoted{id: id, quote: q, value: q.InexactFloat64()}
}

func (q quoted) ID() string                   { return q.id }
func (q quoted) MarketQuote() decimal.Decimal { return q.quote }

func discount(c Curve, t time.Time) (float64, error) {
	if c == nil {
		return 0, ErrNilCurve
	}
	df := c.DiscountFactor(t)
	if !(df > 0) || math.IsInf(df, 0) {
		return 0, fmt.Errorf("%w: %g on %s", ErrNonPositiveDiscountFactor, df, t.Format(utils.DateLayout))
	}
	return df, nil
}

// simpleForward is the simply compounded forward rate implied by c over an
// accrual period of length alpha.
func simpleForward(c Curve, start, end time.Time, alpha float64) (float64, error) {
	dfS, err := discount(c, start)
	if err != nil {
		return 0, err
	}
	dfE, err := discount(c, end)
	if err != nil {
		return 0, err
	}
	return (dfS/dfE - 1) / alpha, nil
}

func accrual(id string, start, end time.Time, dc utils.DayCount) (float64, error) {
	if !end.After(start) {
		return 0, fmt.Errorf("%w: %s ends %s, not after %s", ErrInvalidDates, id, end.Format(utils.DateLayout), start.Format(utils.DateLayout))
	}
	alpha := utils.YearFraction(start, end, dc)
	if !(alpha > 0) {
		return 0, fmt.Errorf("%w: %s has non-positive accrual %g", ErrInvalidDates, id, alpha)
	}
	return alpha, nil
}
