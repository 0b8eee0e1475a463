package curve

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meenmo/ratecore/instruments"
	"github.com/meenmo/ratecore/solver"
)

// Measure is any scalar read off a curve, e.g. a discount factor or the PV of
// a trade.
type Measure func(c *InterpolatedCurve) float64

// QuoteSensitivities returns d measure / d quote for every asset by central
// differences: each quote is bumped up and down by bump, and the curve is
// rebootstrapped. Rebuilds run concurrently on at most workers goroutines.
func (b *Bootstrapper) QuoteSensitivities(ctx context.Context, base time.Time, assets []instruments.Asset, bump float64, measure Measure, workers int) ([]float64, error) {
	if measure == nil {
		return nil, errors.New("curve: nil measure")
	}
	quotes := make([]float64, len(assets))
	for i, a := range assets {
		quotes[i] = a.MarketQuote().InexactFloat64()
	}

	f := func(x []float64) (float64, error) {
		bumped := make([]instruments.Asset, len(assets))
		for i, a := range assets {
			bumped[i] = a
			if x[i] != quotes[i] {
				bumped[i] = a.WithMarketQuote(decimal.NewFromFloat(x[i]))
			}
		}
		c, _, err := b.BuildCurve(base, bumped)
		if err != nil {
			return 0, err
		}
		return measure(c), nil
	}
	return solver.Gradient(ctx, f, quotes, bump, workers)
}
