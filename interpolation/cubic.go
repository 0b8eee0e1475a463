package interpolation

import (
	"gonum.org/v1/gonum/interp"
)

type derivativePredictor interface {
	Predict(x float64) float64
	PredictDerivative(x float64) float64
}

// cubic wraps a gonum piecewise cubic and extends it linearly with the end
// derivative when extrapolating.
type cubic struct {
	x0, xn float64
	fit    derivativePredictor
}

func (c *cubic) ValueAt(x float64, allowExtrapolation bool) float64 {
	switch {
	case x < c.x0:
		if !allowExtrapolation {
			return c.fit.Predict(c.x0)
		}
		return c.fit.Predict(c.x0) + c.fit.PredictDerivative(c.x0)*(x-c.x0)
	case x > c.xn:
		if !allowExtrapolation {
			return c.fit.Predict(c.xn)
		}
		return c.fit.Predict(c.xn) + c.fit.PredictDerivative(c.xn)*(x-c.xn)
	}
	return c.fit.Predict(x)
}

// newNaturalCubic fits a C2 spline with zero second derivative at both ends.
func newNaturalCubic(xs, ys []float64) (*cubic, error) {
	var nc interp.NaturalCubic
	if err := nc.Fit(xs, ys); err != nil {
		return nil, err
	}
	return &cubic{x0: xs[0], xn: xs[len(xs)-1], fit: &nc}, nil
}

// newHermite fits a C1 piecewise cubic using Bessel (three-point) tangents.
func newHermite(xs, ys []float64) (*cubic, error) {
	var pc interp.PiecewiseCubic
	pc.FitWithDerivatives(xs, ys, besselTangents(xs, ys))
	return &cubic{x0: xs[0], xn: xs[len(xs)-1], fit: &pc}, nil
}

func besselTangents(xs, ys []float64) []float64 {
	n := len(xs)
	d := make([]float64, n)
	for i := 1; i < n-1; i++ {
		h0, h1 := xs[i]-xs[i-1], xs[i+1]-xs[i]
		d[i] = (h1*slope(xs, ys, i-1) + h0*slope(xs, ys, i)) / (h0 + h1)
	}
	// One-sided parabolic tangents at the ends.
	h0, h1 := xs[1]-xs[0], xs[2]-xs[1]
	d[0] = ((2*h0+h1)*slope(xs, ys, 0) - h0*slope(xs, ys, 1)) / (h0 + h1)
	h0, h1 = xs[n-1]-xs[n-2], xs[n-2]-xs[n-3]
	d[n-1] = ((2*h0+h1)*slope(xs, ys, n-2) - h0*slope(xs, ys, n-3)) / (h0 + h1)
	return d
}
