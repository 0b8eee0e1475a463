// Package solver finds roots of one-dimensional functions inside a bracket.
//
// Every solver is a stateful, single-use object: Solve resets the state, and
// the evaluation count and final bracket can be inspected afterwards. None of
// them is safe for concurrent use.
package solver

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultMaxEvaluations bounds a solve when no limit is configured.
const DefaultMaxEvaluations = 100

var (
	// ErrNoConvergence is returned when the accuracy is not met within the
	// evaluation budget.
	ErrNoConvergence = errors.New("solver: no convergence")
	// ErrNotBracketed is returned when f has the same sign at both ends of the
	// bracket. It wraps ErrNoConvergence.
	ErrNotBracketed = fmt.Errorf("%w: root not bracketed", ErrNoConvergence)
	ErrInvalidInput = errors.New("solver: invalid input")
	ErrNaN          = errors.New("solver: objective returned NaN")
)

// Objective is a function whose root is sought.
type Objective interface {
	Value(x float64) float64
}

// Differentiable is an Objective with an analytic first derivative.
type Differentiable interface {
	Objective
	Derivative(x float64) float64
}

// Func adapts a plain function to Objective.
type Func func(x float64) float64

func (f Func) Value(x float64) float64 { return f(x) }

// FuncWithDerivative adapts a function and its derivative to Differentiable.
type FuncWithDerivative struct {
	F, DF func(x float64) float64
}

func (f FuncWithDerivative) Value(x float64) float64      { return f.F(x) }
func (f FuncWithDerivative) Derivative(x float64) float64 { return f.DF(x) }

// Solver is implemented by Bisection, SafeNewton and Brent.
type Solver interface {
	Solve(f Objective, accuracy, guess, xMin, xMax float64) (float64, error)
	EvaluationNumber() int
}

// Kind names a solver algorithm.
type Kind string

const (
	KindBrent      Kind = "brent"
	KindBisection  Kind = "bisection"
	KindSafeNewton Kind = "newton"
)

// New returns a fresh solver of the given kind.
func New(kind Kind, maxEvaluations int) (Solver, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindBrent, "":
		return NewBrent(maxEvaluations), nil
	case KindBisection:
		return NewBisection(maxEvaluations), nil
	case KindSafeNewton:
		return NewSafeNewton(maxEvaluations), nil
	default:
		return nil, fmt.Errorf("%w: unknown solver %q", ErrInvalidInput, kind)
	}
}

type state struct {
	maxEvaluations   int
	evaluationNumber int
	root             float64
	xMin, xMax       float64
	fxMin, fxMax     float64
}

func newState(maxEvaluations int) state {
	if maxEvaluations <= 0 {
		maxEvaluations = DefaultMaxEvaluations
	}
	return state{maxEvaluations: maxEvaluations}
}

func (s *state) MaxEvaluations() int   { return s.maxEvaluations }
func (s *state) EvaluationNumber() int { return s.evaluationNumber }
func (s *state) Root() float64         { return s.root }
func (s *state) XMin() float64         { return s.xMin }
func (s *state) XMax() float64         { return s.xMax }
func (s *state) FXMin() float64        { return s.fxMin }
func (s *state) FXMax() float64        { return s.fxMax }

// eval refuses to run past the budget, so EvaluationNumber never exceeds
// MaxEvaluations, bracket and guess evaluations included.
func (s *state) eval(f Objective, x float64) (float64, error) {
	if s.evaluationNumber >= s.maxEvaluations {
		return math.NaN(), s.exhausted()
	}
	s.evaluationNumber++
	v := f.Value(x)
	if math.IsNaN(v) {
		return v, fmt.Errorf("%w at x=%g", ErrNaN, x)
	}
	return v, nil
}

// bracket validates the inputs, evaluates f at both ends and clamps the guess
// into the bracket. done reports that an end point is an exact root.
func (s *state) bracket(f Objective, accuracy, guess, xMin, xMax float64) (done bool, err error) {
	if !(accuracy > 0) {
		return false, fmt.Errorf("%w: accuracy %g must be positive", ErrInvalidInput, accuracy)
	}
	if !(xMin < xMax) {
		return false, fmt.Errorf("%w: bracket [%g, %g] is empty", ErrInvalidInput, xMin, xMax)
	}
	*s = state{maxEvaluations: s.maxEvaluations, xMin: xMin, xMax: xMax}

	if s.fxMin, err = s.eval(f, xMin); err != nil {
		return false, err
	}
	if s.fxMin == 0 {
		s.root = xMin
		return true, nil
	}
	if s.fxMax, err = s.eval(f, xMax); err != nil {
		return false, err
	}
	if s.fxMax == 0 {
		s.root = xMax
		return true, nil
	}
	if s.fxMin*s.fxMax > 0 {
		return false, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrNotBracketed, xMin, s.fxMin, xMax, s.fxMax)
	}
	s.root = math.Min(math.Max(guess, xMin), xMax)
	return false, nil
}

func (s *state) exhausted() error {
	return fmt.Errorf("%w: %d function evaluations exceeded, last root %g", ErrNoConvergence, s.maxEvaluations, s.root)
}
