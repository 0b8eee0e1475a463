// Package curve builds discount curves from calibrating instruments.
package curve

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/ratecore/instruments"
	"github.com/meenmo/ratecore/interpolation"
	"github.com/meenmo/ratecore/utils"
)

var (
	ErrInvalidNode      = errors.New("curve: invalid node")
	ErrUnsortedAssets   = errors.New("curve: asset maturities not ascending")
	ErrMissingReference = errors.New("curve: spread asset needs a reference curve")
	ErrNonMonotone      = errors.New("curve: discount factors not decreasing")
	ErrCalibration      = errors.New("curve: calibration failed")
)

// Node is one (date, discount factor) pillar.
type Node struct {
	Date           time.Time
	DiscountFactor float64
}

// TermPoint is a solved node as handed to storage: the discount factor is
// converted to a decimal only here.
type TermPoint struct {
	ID             string
	Date           time.Time
	DiscountFactor decimal.Decimal
}

// DiscountCurve is what consumers of a curve rely on.
type DiscountCurve interface {
	instruments.Curve
	BaseDate() time.Time
	SpotDate() time.Time
}

// Options configure an InterpolatedCurve.
type Options struct {
	// Method defaults to LogLinear.
	Method      interpolation.Method
	Extrapolate bool
	// DayCount maps dates to interpolation times; defaults to ACT/365F.
	DayCount utils.DayCount
	// SpotDate defaults to the base date.
	SpotDate time.Time
}

// InterpolatedCurve interpolates discount factors between nodes. It is
// immutable and safe for concurrent use.
type InterpolatedCurve struct {
	base, spot time.Time
	dayCount   utils.DayCount
	method     interpolation.Method
	nodes      []Node
	// ids labels nodes with the assets that produced them, when bootstrapped.
	ids   []string
	space *interpolation.Space
}

// NewInterpolatedCurve builds a curve through nodes. A (base, 1) node is added
// when the first node is not on the base date; a curve with the base node
// alone is flat at 1.
func NewInterpolatedCurve(base time.Time, nodes []Node, opts Options) (*InterpolatedCurve, error) {
	if opts.Method == "" {
		opts.Method = interpolation.LogLinear
	}
	if opts.DayCount == "" {
		opts.DayCount = utils.Act365F
	}
	if opts.SpotDate.IsZero() {
		opts.SpotDate = base
	}

	all := make([]Node, 0, len(nodes)+1)
	if len(nodes) == 0 || !nodes[0].Date.Equal(base) {
		all = append(all, Node{Date: base, DiscountFactor: 1})
	}
	all = append(all, nodes...)

	if df := all[0].DiscountFactor; df != 1 {
		return nil, fmt.Errorf("%w: discount factor %g on base date, want 1", ErrInvalidNode, df)
	}
	dates := make([]time.Time, len(all))
	for i, n := range all {
		dates[i] = n.Date
	}
	if i := utils.StrictlyAscending(dates); i > 0 {
		return nil, fmt.Errorf("%w: %s does not follow %s", ErrInvalidNode, dates[i].Format(utils.DateLayout), dates[i-1].Format(utils.DateLayout))
	}

	xs := make([]float64, len(all))
	ys := make([]float64, len(all))
	for i, n := range all {
		if !(n.DiscountFactor > 0) || math.IsInf(n.DiscountFactor, 0) {
			return nil, fmt.Errorf("%w: discount factor %g on %s", ErrInvalidNode, n.DiscountFactor, n.Date.Format(utils.DateLayout))
		}
		xs[i] = utils.YearFraction(base, n.Date, opts.DayCount)
		ys[i] = n.DiscountFactor
	}

	c := &InterpolatedCurve{
		base:     base,
		spot:     opts.SpotDate,
		dayCount: opts.DayCount,
		method:   opts.Method,
		nodes:    all,
	}
	if len(all) > 1 {
		space, err := interpolation.NewSpace(opts.Method, xs, ys, opts.Extrapolate)
		if err != nil {
			return nil, fmt.Errorf("curve: %w", err)
		}
		c.space = space
	}
	return c, nil
}

func (c *InterpolatedCurve) BaseDate() time.Time          { return c.base }
func (c *InterpolatedCurve) SpotDate() time.Time          { return c.spot }
func (c *InterpolatedCurve) DayCount() utils.DayCount     { return c.dayCount }
func (c *InterpolatedCurve) Method() interpolation.Method { return c.method }

// Nodes returns a copy of the curve's pillars, base node included.
func (c *InterpolatedCurve) Nodes() []Node { return append([]Node(nil), c.nodes...) }

func (c *InterpolatedCurve) String() string {
	return fmt.Sprintf("%s curve, %d nodes from %s", c.method, len(c.nodes), c.base.Format(utils.DateLayout))
}

func (c *InterpolatedCurve) yearFraction(t time.Time) float64 {
	return utils.YearFraction(c.base, t, c.dayCount)
}

// DiscountFactor returns the interpolated discount factor at t.
func (c *InterpolatedCurve) DiscountFactor(t time.Time) float64 {
	if c.space == nil {
		return c.nodes[0].DiscountFactor
	}
	return c.space.Value(c.yearFraction(t))
}

// ZeroRate returns the continuously compounded zero rate to t, or 0 at the base date.
func (c *InterpolatedCurve) ZeroRate(t time.Time) float64 {
	x := c.yearFraction(t)
	if x == 0 {
		return 0
	}
	return -math.Log(c.DiscountFactor(t)) / x
}

// ForwardRate returns the simply compounded forward rate between start and end.
func (c *InterpolatedCurve) ForwardRate(start, end time.Time, dc utils.DayCount) (float64, error) {
	alpha := utils.YearFraction(start, end, dc)
	if !(alpha > 0) {
		return 0, fmt.Errorf("curve: forward period %s to %s has accrual %g", start.Format(utils.DateLayout), end.Format(utils.DateLayout), alpha)
	}
	return (c.DiscountFactor(start)/c.DiscountFactor(end) - 1) / alpha, nil
}
