package instruments

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Swap is a single-curve par swap: a fixed leg against a floating leg worth
// DF(effective) - DF(last payment) on the curve being built.
type Swap struct {
	quoted
	effective time.Time
	periods   []Period
}

// NewSwap builds a par swap quoted at the fixed rate.
func NewSwap(id string, effective, maturity time.Time, rate decimal.Decimal, fixed LegConvention) (*Swap, error) {
	periods, err := GenerateSchedule(effective, maturity, fixed)
	if err != nil {
		return nil, fmt.Errorf("swap %s: %w", id, err)
	}
	return &Swap{quoted: newQuoted(id, rate), effective: effective, periods: periods}, nil
}

func (s *Swap) Kind() Kind                  { return AnalyticDiscountable }
func (s *Swap) RiskMaturityDate() time.Time { return s.periods[len(s.periods)-1].PayDate }
func (s *Swap) Periods() []Period           { return append([]Period(nil), s.periods...) }

// annuity sums alpha_i * DF(pay_i) over the first n fixed periods.
func (s *Swap) annuity(c Curve, n int) (float64, error) {
	var sum float64
	for _, p := range s.periods[:n] {
		df, err := discount(c, p.PayDate)
		if err != nil {
			return 0, err
		}
		sum += p.Accrual * df
	}
	return sum, nil
}

// DiscountFactorAtMaturity solves the par condition for the last payment
// discount factor, holding the earlier ones at their values on c:
// DF(T) = (DF(eff) - r*sum_{i<n} alpha_i*DF(p_i)) / (1 + r*alpha_n).
func (s *Swap) DiscountFactorAtMaturity(c Curve) (float64, error) {
	dfEff, err := discount(c, s.effective)
	if err != nil {
		return 0, err
	}
	n := len(s.periods)
	head, err := s.annuity(c, n-1)
	if err != nil {
		return 0, err
	}
	return (dfEff - s.value*head) / (1 + s.value*s.periods[n-1].Accrual), nil
}

// ImpliedQuote returns the par rate (DF(eff) - DF(T)) / annuity.
func (s *Swap) ImpliedQuote(c Curve) (float64, error) {
	dfEff, err := discount(c, s.effective)
	if err != nil {
		return 0, err
	}
	dfT, err := discount(c, s.RiskMaturityDate())
	if err != nil {
		return 0, err
	}
	ann, err := s.annuity(c, len(s.periods))
	if err != nil {
		return 0, err
	}
	if ann == 0 {
		return 0, fmt.Errorf("%w: swap %s", ErrZeroAnnuity, s.id)
	}
	return (dfEff - dfT) / ann, nil
}

func (s *Swap) WithMarketQuote(q decimal.Decimal) Asset {
	cp := *s
	cp.quoted = newQuoted(s.id, q)
	return &cp
}
