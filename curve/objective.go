package curve

import (
	"math"
	"time"

	"github.com/meenmo/ratecore/instruments"
)

// quoteObjective is the repricing error of one asset as a function of the
// discount factor at its maturity, with all earlier nodes held fixed.
type quoteObjective struct {
	asset    instruments.Asset
	base     time.Time
	nodes    []Node
	maturity time.Time
	opts     Options
	quote    float64
	// err holds the last failure behind a NaN value.
	err error
}

func newQuoteObjective(asset instruments.Asset, base time.Time, nodes []Node, opts Options) *quoteObjective {
	return &quoteObjective{
		asset:    asset,
		base:     base,
		nodes:    nodes,
		maturity: asset.RiskMaturityDate(),
		opts:     opts,
		quote:    asset.MarketQuote().InexactFloat64(),
	}
}

// trial builds the curve with df placed at the asset's maturity. The node
// slice is capped so appending never touches the caller's backing array.
func (o *quoteObjective) trial(df float64) (*InterpolatedCurve, error) {
	n := len(o.nodes)
	return NewInterpolatedCurve(o.base, append(o.nodes[:n:n], Node{Date: o.maturity, DiscountFactor: df}), o.opts)
}

// Value returns implied minus market quote, or NaN when the trial curve or
// the pricing fails.
func (o *quoteObjective) Value(df float64) float64 {
	c, err := o.trial(df)
	if err != nil {
		o.err = err
		return math.NaN()
	}
	implied, err := o.asset.ImpliedQuote(c)
	if err != nil {
		o.err = err
		return math.NaN()
	}
	o.err = nil
	return implied - o.quote
}

// InitialValue reports whether guess already reprices the asset within tolerance.
func (o *quoteObjective) InitialValue(guess, tolerance float64) (bool, error) {
	v := o.Value(guess)
	if o.err != nil {
		return false, o.err
	}
	return math.Abs(v) <= tolerance, nil
}
