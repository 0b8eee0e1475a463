package instruments

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/ratecore/utils"
)

// RateSpread is quoted as the spread of the calibrated curve's simple forward
// over start..end above the reference curve's forward for the same period.
type RateSpread struct {
	quoted
	start, end time.Time
	alpha      float64
	reference  Curve
}

func NewRateSpread(id string, start, end time.Time, spread decimal.Decimal, dc utils.DayCount, reference Curve) (*RateSpread, error) {
	if reference == nil {
		return nil, fmt.Errorf("rate spread %s: %w", id, ErrNilCurve)
	}
	alpha, err := accrual(id, start, end, dc)
	if err != nil {
		return nil, err
	}
	return &RateSpread{quoted: newQuoted(id, spread), start: start, end: end, alpha: alpha, reference: reference}, nil
}

func (r *RateSpread) Kind() Kind                  { return SpreadCalibrated }
func (r *RateSpread) RiskMaturityDate() time.Time { return r.end }

// DiscountFactorAtMaturity applies the quoted spread on top of c's own forward:
// DF(start) / (1 + (fwd_c + s)*alpha).
func (r *RateSpread) DiscountFactorAtMaturity(c Curve) (float64, error) {
	fwd, err := simpleForward(c, r.start, r.end, r.alpha)
	if err != nil {
		return 0, err
	}
	dfS, err := discount(c, r.start)
	if err != nil {
		return 0, err
	}
	return dfS / (1 + (fwd+r.value)*r.alpha), nil
}

func (r *RateSpread) ImpliedQuote(c Curve) (float64, error) {
	fwd, err := simpleForward(c, r.start, r.end, r.alpha)
	if err != nil {
		return 0, err
	}
	ref, err := simpleForward(r.reference, r.start, r.end, r.alpha)
	if err != nil {
		return 0, err
	}
	return fwd - ref, nil
}

func (r *RateSpread) WithMarketQuote(q decimal.Decimal) Asset {
	cp := *r
	cp.quoted = newQuoted(r.id, q)
	return &cp
}

// BasisSwap exchanges a floating leg projected off the calibrated curve
// against a reference floating leg plus the quoted spread. Both legs are
// projected and discounted without notional exchange; discounting is on the
// reference curve.
type BasisSwap struct {
	quoted
	effective  time.Time
	tau        float64
	projection []Period
	refLeg     []Period
	reference  Curve
}

func NewBasisSwap(id string, effective, maturity time.Time, spread decimal.Decimal, leg, referenceLeg LegConvention, reference Curve) (*BasisSwap, error) {
	if reference == nil {
		return nil, fmt.Errorf("basis swap %s: %w", id, ErrNilCurve)
	}
	projection, err := GenerateSchedule(effective, maturity, leg)
	if err != nil {
		return nil, fmt.Errorf("basis swap %s: %w", id, err)
	}
	refLeg, err := GenerateSchedule(effective, maturity, referenceLeg)
	if err != nil {
		return nil, fmt.Errorf("basis swap %s: %w", id, err)
	}
	end := projection[len(projection)-1].EndDate
	return &BasisSwap{
		quoted:     newQuoted(id, spread),
		effective:  effective,
		tau:        utils.YearFraction(effective, end, leg.DayCount),
		projection: projection,
		refLeg:     refLeg,
		reference:  reference,
	}, nil
}

func (b *BasisSwap) Kind() Kind                  { return SpreadCalibrated }
func (b *BasisSwap) RiskMaturityDate() time.Time { return b.projection[len(b.projection)-1].EndDate }

// DiscountFactorAtMaturity shifts c's discount factor by the spread compounded
// continuously over the swap life. Against the reference curve this is the
// projection curve whose forwards sit the quoted spread above the reference.
func (b *BasisSwap) DiscountFactorAtMaturity(c Curve) (float64, error) {
	df, err := discount(c, b.RiskMaturityDate())
	if err != nil {
		return 0, err
	}
	return df * math.Exp(-b.value*b.tau), nil
}

// ImpliedQuote returns (PV_projection - PV_reference) / annuity_reference.
func (b *BasisSwap) ImpliedQuote(c Curve) (float64, error) {
	pvProj, _, err := b.floatLeg(c, b.projection)
	if err != nil {
		return 0, err
	}
	pvRef, ann, err := b.floatLeg(b.reference, b.refLeg)
	if err != nil {
		return 0, err
	}
	if ann == 0 {
		return 0, fmt.Errorf("%w: basis swap %s", ErrZeroAnnuity, b.id)
	}
	return (pvProj - pvRef) / ann, nil
}

// floatLeg values a floating leg projected off proj and discounted on the
// reference curve, returning its PV and annuity.
func (b *BasisSwap) floatLeg(proj Curve, periods []Period) (pv, annuity float64, err error) {
	for _, p := range periods {
		fwd, err := simpleForward(proj, p.StartDate, p.EndDate, p.Accrual)
		if err != nil {
			return 0, 0, err
		}
		df, err := discount(b.reference, p.PayDate)
		if err != nil {
			return 0, 0, err
		}
		pv += fwd * p.Accrual * df
		annuity += p.Accrual * df
	}
	return pv, annuity, nil
}

func (b *BasisSwap) WithMarketQuote(q decimal.Decimal) Asset {
	cp := *b
	cp.quoted = newQuoted(b.id, q)
	return &cp
}
