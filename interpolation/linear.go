package interpolation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

func slope(xs, ys []float64, i int) float64 {
	return (ys[i+1] - ys[i]) / (xs[i+1] - xs[i])
}

type linear struct {
	xs, ys []float64
	pl     interp.PiecewiseLinear
}

func newLinear(xs, ys []float64) (*linear, error) {
	l := &linear{xs: xs, ys: ys}
	if err := l.pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *linear) ValueAt(x float64, allowExtrapolation bool) float64 {
	n := len(l.xs)
	switch {
	case x < l.xs[0]:
		if !allowExtrapolation {
			return l.ys[0]
		}
		return l.ys[0] + slope(l.xs, l.ys, 0)*(x-l.xs[0])
	case x > l.xs[n-1]:
		if !allowExtrapolation {
			return l.ys[n-1]
		}
		return l.ys[n-1] + slope(l.xs, l.ys, n-2)*(x-l.xs[n-1])
	}
	return l.pl.Predict(x)
}

// logLinear interpolates ln(y) linearly, which keeps forward rates piecewise
// constant between discount factor nodes.
type logLinear struct {
	lin *linear
}

func newLogLinear(xs, ys []float64) (*logLinear, error) {
	lns, err := logs(ys)
	if err != nil {
		return nil, err
	}
	lin, err := newLinear(xs, lns)
	if err != nil {
		return nil, err
	}
	return &logLinear{lin: lin}, nil
}

func (l *logLinear) ValueAt(x float64, allowExtrapolation bool) float64 {
	return math.Exp(l.lin.ValueAt(x, allowExtrapolation))
}

func logs(ys []float64) ([]float64, error) {
	out := make([]float64, len(ys))
	for i, y := range ys {
		if y <= 0 {
			return nil, positiveErr(i, y)
		}
		out[i] = math.Log(y)
	}
	return out, nil
}

// flat is a right-continuous step function.
type flat struct {
	xs, ys []float64
}

func (f *flat) ValueAt(x float64, _ bool) float64 {
	i := sort.Search(len(f.xs), func(i int) bool { return f.xs[i] > x }) - 1
	if i < 0 {
		return f.ys[0]
	}
	return f.ys[i]
}
