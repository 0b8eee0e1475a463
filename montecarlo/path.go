package montecarlo

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Path holds per-step log-return increments of one asset. Times are the step
// end times; step i covers (Times[i-1], Times[i]] with Times[-1] = 0.
type Path struct {
	Times     []float64
	Drift     []float64
	Diffusion []float64
}

func (p Path) Len() int { return len(p.Times) }

// LogReturn is the total log-return with the diffusion scaled by sign, +1 for
// the path itself and -1 for its antithetic mirror.
func (p Path) LogReturn(sign float64) float64 {
	var r float64
	for i := range p.Drift {
		r += p.Drift[i] + sign*p.Diffusion[i]
	}
	return r
}

// PathSample is one draw of one or more correlated paths.
type PathSample struct {
	Paths  []Path
	Weight float64
}

// Generator emits a fresh, independent PathSample on every call. Times and
// Drift may be shared between samples and must be treated as read-only.
type Generator interface {
	Next() PathSample
}

// uniformGrid returns steps equally spaced times ending at total.
func uniformGrid(total float64, steps int) ([]float64, error) {
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: total time %g", ErrInvalidInput, total)
	}
	if steps <= 0 {
		return nil, fmt.Errorf("%w: %d time steps", ErrInvalidInput, steps)
	}
	times := make([]float64, steps)
	for i := range times {
		times[i] = total * float64(i+1) / float64(steps)
	}
	return times, nil
}

// steps validates a time grid and returns its step lengths.
func steps(times []float64) ([]float64, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: empty time grid", ErrInvalidInput)
	}
	if !(times[0] >= 0) {
		return nil, fmt.Errorf("%w: first time %g is negative", ErrInvalidInput, times[0])
	}
	dt := make([]float64, len(times))
	prev := 0.0
	for i, t := range times {
		if i > 0 && !(t > prev) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%w: times[%d]=%g does not follow %g", ErrInvalidInput, i, t, prev)
		}
		dt[i] = t - prev
		prev = t
	}
	return dt, nil
}

// PathGenerator draws single-asset paths with constant drift and variance
// per unit time.
type PathGenerator struct {
	times []float64
	drift []float64
	gen   *RandomArrayGenerator
}

// NewPathGenerator splits totalTime into steps equal steps.
func NewPathGenerator(drift, variance, totalTime float64, steps int, src rand.Source) (*PathGenerator, error) {
	times, err := uniformGrid(totalTime, steps)
	if err != nil {
		return nil, err
	}
	return NewPathGeneratorOnGrid(drift, variance, times, src)
}

// NewPathGeneratorOnGrid simulates on an explicit, strictly ascending grid
// starting at or after 0.
func NewPathGeneratorOnGrid(drift, variance float64, times []float64, src rand.Source) (*PathGenerator, error) {
	dt, err := steps(times)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(drift) || math.IsInf(drift, 0) {
		return nil, fmt.Errorf("%w: drift %g", ErrInvalidInput, drift)
	}
	variances := make([]float64, len(dt))
	drifts := make([]float64, len(dt))
	for i, d := range dt {
		variances[i] = variance * d
		drifts[i] = drift * d
	}
	gen, err := NewIndependentGenerator(variances, src)
	if err != nil {
		return nil, err
	}
	return &PathGenerator{times: append([]float64(nil), times...), drift: drifts, gen: gen}, nil
}

func (g *PathGenerator) Next() PathSample {
	s := g.gen.NextSample()
	return PathSample{
		Paths:  []Path{{Times: g.times, Drift: g.drift, Diffusion: s.Value}},
		Weight: s.Weight,
	}
}

// MultiPathGenerator draws correlated paths for several assets.
type MultiPathGenerator struct {
	times  []float64
	dt     []float64
	drifts [][]float64
	gen    *RandomArrayGenerator
}

// NewMultiPathGenerator simulates len(drifts) assets whose log-returns have
// the given covariance per unit time.
func NewMultiPathGenerator(drifts []float64, covariance [][]float64, times []float64, src rand.Source) (*MultiPathGenerator, error) {
	if len(drifts) == 0 {
		return nil, fmt.Errorf("%w: no assets", ErrInvalidInput)
	}
	if len(covariance) != len(drifts) {
		return nil, fmt.Errorf("%w: %d drifts, %dx%d covariance", ErrInvalidInput, len(drifts), len(covariance), len(covariance))
	}
	dt, err := steps(times)
	if err != nil {
		return nil, err
	}
	gen, err := NewCorrelatedGenerator(covariance, src)
	if err != nil {
		return nil, err
	}
	per := make([][]float64, len(drifts))
	for j, mu := range drifts {
		if math.IsNaN(mu) || math.IsInf(mu, 0) {
			return nil, fmt.Errorf("%w: drift[%d]=%g", ErrInvalidInput, j, mu)
		}
		per[j] = make([]float64, len(dt))
		for i, d := range dt {
			per[j][i] = mu * d
		}
	}
	return &MultiPathGenerator{times: append([]float64(nil), times...), dt: dt, drifts: per, gen: gen}, nil
}

func (g *MultiPathGenerator) Assets() int { return len(g.drifts) }

func (g *MultiPathGenerator) Next() PathSample {
	paths := make([]Path, len(g.drifts))
	for j := range paths {
		paths[j] = Path{Times: g.times, Drift: g.drifts[j], Diffusion: make([]float64, len(g.dt))}
	}
	weight := 1.0
	for i, d := range g.dt {
		s := g.gen.NextSample()
		weight *= s.Weight
		sd := math.Sqrt(d)
		for j := range paths {
			paths[j].Diffusion[i] = s.Value[j] * sd
		}
	}
	return PathSample{Paths: paths, Weight: weight}
}
