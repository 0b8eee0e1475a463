package instruments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/ratecore/utils"
)

// RateFuture is a short-rate future quoted as a price, 100*(1 - rate). The
// futures rate less the convexity adjustment is the forward over the
// underlying period.
type RateFuture struct {
	quoted
	start, end time.Time
	alpha      float64
	convexity  float64
}

func NewRateFuture(id string, start, end time.Time, price decimal.Decimal, convexity float64, dc utils.DayCount) (*RateFuture, error) {
	alpha, err := accrual(id, start, end, dc)
	if err != nil {
		return nil, err
	}
	return &RateFuture{quoted: newQuoted(id, price), start: start, end: end, alpha: alpha, convexity: convexity}, nil
}

func (f *RateFuture) Kind() Kind                  { return AnalyticDiscountable }
func (f *RateFuture) RiskMaturityDate() time.Time { return f.end }

// Forward is the forward rate implied by the quoted price.
func (f *RateFuture) Forward() float64 {
	return (100-f.value)/100 - f.convexity
}

func (f *RateFuture) DiscountFactorAtMaturity(c Curve) (float64, error) {
	dfS, err := discount(c, f.start)
	if err != nil {
		return 0, err
	}
	return dfS / (1 + f.Forward()*f.alpha), nil
}

func (f *RateFuture) ImpliedQuote(c Curve) (float64, error) {
	fwd, err := simpleForward(c, f.start, f.end, f.alpha)
	if err != nil {
		return 0, err
	}
	return 100 * (1 - (fwd + f.convexity)), nil
}

func (f *RateFuture) WithMarketQuote(q decimal.Decimal) Asset {
	cp := *f
	cp.quoted = newQuoted(f.id, q)
	return &cp
}
