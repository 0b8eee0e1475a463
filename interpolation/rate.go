package interpolation

import (
	"fmt"
	"math"
)

// zeroRate interpolates continuously compounded zero rates r = -ln(y)/x and
// maps back to discount factors on output.
type zeroRate struct {
	ys       []float64
	zeroNode int
	rates    Interpolator
}

func newZeroRate(method Method, xs, ys []float64) (*zeroRate, error) {
	rates := make([]float64, len(ys))
	zeroNode := -1
	for i, y := range ys {
		if y <= 0 {
			return nil, positiveErr(i, y)
		}
		if xs[i] == 0 {
			zeroNode = i
			continue
		}
		rates[i] = -math.Log(y) / xs[i]
	}
	// A node at the base date has no defined rate; it borrows its neighbour's.
	if zeroNode >= 0 {
		if zeroNode+1 < len(rates) {
			rates[zeroNode] = rates[zeroNode+1]
		} else {
			rates[zeroNode] = rates[zeroNode-1]
		}
	}

	var inner Method
	switch method {
	case LinearRate:
		inner = Linear
	case PiecewiseConstantZeroRate:
		inner = Flat
	case LogRateCubicSpline:
		inner = CubicSpline
	default:
		return nil, fmt.Errorf("%w: %q is not a rate method", ErrUnknownMethod, method)
	}
	it, err := New(inner, xs, rates)
	if err != nil {
		return nil, err
	}
	return &zeroRate{ys: ys, zeroNode: zeroNode, rates: it}, nil
}

func (z *zeroRate) ValueAt(x float64, allowExtrapolation bool) float64 {
	if x == 0 {
		if z.zeroNode >= 0 {
			return z.ys[z.zeroNode]
		}
		return 1
	}
	return math.Exp(-z.rates.ValueAt(x, allowExtrapolation) * x)
}

func positiveErr(i int, y float64) error {
	return fmt.Errorf("%w: ys[%d]=%g", ErrNonPositive, i, y)
}
