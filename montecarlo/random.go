// Package montecarlo simulates log-normal asset paths and prices path-dependent
// payoffs on them.
//
// Generators are stateful and not safe for concurrent use; the Engine gives
// every chunk of paths its own generator.
package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrInvalidInput            = errors.New("montecarlo: invalid input")
	ErrNotSquare               = errors.New("montecarlo: covariance matrix not square")
	ErrNotSymmetric            = errors.New("montecarlo: covariance matrix not symmetric")
	ErrNotPositiveSemidefinite = errors.New("montecarlo: covariance matrix not positive semidefinite")
	ErrPathMismatch            = errors.New("montecarlo: path count does not match pricer")
)

// symmetryTolerance bounds |c_ij - c_ji| and the relative size of negative
// eigenvalues treated as rounding noise.
const symmetryTolerance = 1e-12

// NewSource returns a PCG source. Distinct streams with one seed are
// independent.
func NewSource(seed, stream uint64) rand.Source {
	return rand.NewPCG(seed, stream)
}

// Sample is one draw of a random array with its importance-sampling weight.
type Sample struct {
	Value  []float64
	Weight float64
}

// RandomArrayGenerator draws Gaussian arrays, either independent with given
// variances or correlated with a given covariance.
type RandomArrayGenerator struct {
	normal distuv.Normal
	// scale holds standard deviations in the independent case.
	scale []float64
	// sqrt is the symmetric square root of the covariance in the correlated case.
	sqrt *mat.Dense
	dim  int
}

// NewIndependentGenerator draws arrays whose i-th element has variance variances[i].
func NewIndependentGenerator(variances []float64, src rand.Source) (*RandomArrayGenerator, error) {
	if len(variances) == 0 {
		return nil, fmt.Errorf("%w: no variances", ErrInvalidInput)
	}
	scale := make([]float64, len(variances))
	for i, v := range variances {
		if !(v >= 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: variance[%d]=%g", ErrInvalidInput, i, v)
		}
		scale[i] = math.Sqrt(v)
	}
	return &RandomArrayGenerator{
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		scale:  scale,
		dim:    len(variances),
	}, nil
}

// NewCorrelatedGenerator draws arrays with covariance cov. The square root is
// computed once, by eigendecomposition.
func NewCorrelatedGenerator(cov [][]float64, src rand.Source) (*RandomArrayGenerator, error) {
	sqrt, err := symmetricSqrt(cov)
	if err != nil {
		return nil, err
	}
	return &RandomArrayGenerator{
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		sqrt:   sqrt,
		dim:    len(cov),
	}, nil
}

func (g *RandomArrayGenerator) Dimension() int { return g.dim }

// NextSample advances the stream by Dimension draws. Weights are always 1.
func (g *RandomArrayGenerator) NextSample() Sample {
	z := make([]float64, g.dim)
	for i := range z {
		z[i] = g.normal.Rand()
	}
	if g.sqrt == nil {
		for i := range z {
			z[i] *= g.scale[i]
		}
		return Sample{Value: z, Weight: 1}
	}
	out := mat.NewVecDense(g.dim, nil)
	out.MulVec(g.sqrt, mat.NewVecDense(g.dim, z))
	return Sample{Value: out.RawVector().Data, Weight: 1}
}

// symmetricSqrt returns S with S*S = cov, S symmetric: Q*sqrt(Λ)*Qᵀ.
func symmetricSqrt(cov [][]float64) (*mat.Dense, error) {
	n := len(cov)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty covariance", ErrInvalidInput)
	}
	data := make([]float64, 0, n*n)
	for i, row := range cov {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrNotSquare, i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: cov[%d][%d]=%g", ErrInvalidInput, i, j, v)
			}
		}
		data = append(data, row...)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			if d := math.Abs(cov[i][j] - cov[j][i]); d > symmetryTolerance*math.Max(1, math.Abs(cov[i][j])) {
				return nil, fmt.Errorf("%w: cov[%d][%d]=%g, cov[%d][%d]=%g", ErrNotSymmetric, i, j, cov[i][j], j, i, cov[j][i])
			}
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(mat.NewSymDense(n, data), true); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition failed", ErrInvalidInput)
	}
	values := eig.Values(nil)
	var largest float64
	for _, v := range values {
		largest = math.Max(largest, math.Abs(v))
	}
	for i, v := range values {
		if v < -symmetryTolerance*math.Max(1, largest) {
			return nil, fmt.Errorf("%w: eigenvalue %g", ErrNotPositiveSemidefinite, v)
		}
		values[i] = math.Sqrt(math.Max(v, 0))
	}

	var q mat.Dense
	eig.VectorsTo(&q)
	var scaled mat.Dense
	scaled.Mul(&q, mat.NewDiagDense(n, values))
	var sqrt mat.Dense
	sqrt.Mul(&scaled, q.T())
	return &sqrt, nil
}
