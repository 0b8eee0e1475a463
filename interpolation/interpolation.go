// Package interpolation provides one-dimensional interpolation methods sharing a
// common contract, and a bilinear two-dimensional grid interpolator.
//
// Construction validates the nodes; evaluation never fails. Outside the node
// range every method returns its boundary value unless extrapolation is
// allowed, in which case the nearest segment is extended. Log and rate based
// methods apply that rule in their transformed space.
package interpolation

import (
	"errors"
	"fmt"
	"math"
)

// Method tags an interpolation algorithm.
type Method string

const (
	Linear                    Method = "Linear"
	LogLinear                 Method = "LogLinear"
	LinearRate                Method = "LinearRate"
	PiecewiseConstantZeroRate Method = "PiecewiseConstantZeroRate"
	LogRateCubicSpline        Method = "LogRateCubicSpline"
	CubicSpline               Method = "CubicSpline"
	CubicHermite              Method = "CubicHermite"
	Flat                      Method = "Flat"
)

var (
	ErrEmpty             = errors.New("interpolation: empty input")
	ErrLengthMismatch    = errors.New("interpolation: abscissa and ordinate lengths differ")
	ErrTooFewPoints      = errors.New("interpolation: too few points")
	ErrUnsorted          = errors.New("interpolation: labels not strictly ascending")
	ErrNonFinite         = errors.New("interpolation: non-finite value")
	ErrNonPositive       = errors.New("interpolation: non-positive ordinate")
	ErrDimensionMismatch = errors.New("interpolation: grid dimensions do not match labels")
	ErrUnknownMethod     = errors.New("interpolation: unknown method")
)

// Interpolator evaluates a fitted curve.
type Interpolator interface {
	ValueAt(x float64, allowExtrapolation bool) float64
}

// MinPoints returns the number of nodes the method needs.
func (m Method) MinPoints() int {
	switch m {
	case CubicSpline, CubicHermite, LogRateCubicSpline:
		return 4
	default:
		return 2
	}
}

// ParseMethod maps a method name onto a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Linear, LogLinear, LinearRate, PiecewiseConstantZeroRate, LogRateCubicSpline, CubicSpline, CubicHermite, Flat:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// New fits the method to the nodes (xs[i], ys[i]). The slices are copied.
func New(method Method, xs, ys []float64) (Interpolator, error) {
	if err := validate(xs, ys, method.MinPoints()); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	xs = append([]float64(nil), xs...)
	ys = append([]float64(nil), ys...)

	var (
		it  Interpolator
		err error
	)
	switch method {
	case Linear:
		it, err = newLinear(xs, ys)
	case LogLinear:
		it, err = newLogLinear(xs, ys)
	case LinearRate, PiecewiseConstantZeroRate, LogRateCubicSpline:
		it, err = newZeroRate(method, xs, ys)
	case CubicSpline:
		it, err = newNaturalCubic(xs, ys)
	case CubicHermite:
		it, err = newHermite(xs, ys)
	case Flat:
		it = &flat{xs: xs, ys: ys}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return it, nil
}

func validate(xs, ys []float64, minPoints int) error {
	if len(xs) == 0 || len(ys) == 0 {
		return ErrEmpty
	}
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: %d abscissas, %d ordinates", ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) < minPoints {
		return fmt.Errorf("%w: need %d, got %d", ErrTooFewPoints, minPoints, len(xs))
	}
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			return fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}
	return ascending(xs)
}

func ascending(labels []float64) error {
	for i := 1; i < len(labels); i++ {
		if labels[i] <= labels[i-1] {
			return fmt.Errorf("%w: labels[%d]=%g is not above labels[%d]=%g", ErrUnsorted, i, labels[i], i-1, labels[i-1])
		}
	}
	return nil
}

// Space is an immutable set of nodes bound to one method and extrapolation flag.
type Space struct {
	method      Method
	extrapolate bool
	xs, ys      []float64
	it          Interpolator
}

// NewSpace fits method to the nodes and fixes the extrapolation flag.
func NewSpace(method Method, xs, ys []float64, extrapolate bool) (*Space, error) {
	it, err := New(method, xs, ys)
	if err != nil {
		return nil, err
	}
	return &Space{
		method:      method,
		extrapolate: extrapolate,
		xs:          append([]float64(nil), xs...),
		ys:          append([]float64(nil), ys...),
		it:          it,
	}, nil
}

// Value evaluates the space at x.
func (s *Space) Value(x float64) float64 {
	return s.it.ValueAt(x, s.extrapolate)
}

func (s *Space) Method() Method     { return s.method }
func (s *Space) Extrapolates() bool { return s.extrapolate }
func (s *Space) Len() int           { return len(s.xs) }
func (s *Space) Xs() []float64      { return append([]float64(nil), s.xs...) }
func (s *Space) Ys() []float64      { return append([]float64(nil), s.ys...) }
