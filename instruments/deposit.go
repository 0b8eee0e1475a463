package instruments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/ratecore/utils"
)

// Deposit is a simply compounded cash deposit from start to maturity.
type Deposit struct {
	quoted
	start, maturity time.Time
	alpha           float64
}

// NewDeposit builds a deposit quoted at rate (0.05 is 5%).
func NewDeposit(id string, start, maturity time.Time, rate decimal.Decimal, dc utils.DayCount) (*Deposit, error) {
	alpha, err := accrual(id, start, maturity, dc)
	if err != nil {
		return nil, err
	}
	return &Deposit{quoted: newQuoted(id, rate), start: start, maturity: maturity, alpha: alpha}, nil
}

func (d *Deposit) Kind() Kind                  { return AnalyticDiscountable }
func (d *Deposit) RiskMaturityDate() time.Time { return d.maturity }
func (d *Deposit) StartDate() time.Time        { return d.start }

// DiscountFactorAtMaturity returns DF(start) / (1 + r*alpha).
func (d *Deposit) DiscountFactorAtMaturity(c Curve) (float64, error) {
	dfS, err := discount(c, d.start)
	if err != nil {
		return 0, err
	}
	return dfS / (1 + d.value*d.alpha), nil
}

func (d *Deposit) ImpliedQuote(c Curve) (float64, error) {
	return simpleForward(c, d.start, d.maturity, d.alpha)
}

func (d *Deposit) WithMarketQuote(q decimal.Decimal) Asset {
	cp := *d
	cp.quoted = newQuoted(d.id, q)
	return &cp
}
