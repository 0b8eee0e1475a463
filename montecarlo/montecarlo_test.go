package montecarlo_test

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/ratecore/montecarlo"
)

func blackScholesCall(s, k, r, sigma, t float64) float64 {
	d1 := (math.Log(s/k) + (r+sigma*sigma/2)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)
	return s*distuv.UnitNormal.CDF(d1) - k*math.Exp(-r*t)*distuv.UnitNormal.CDF(d2)
}

func TestIndependentGenerator(t *testing.T) {
	t.Parallel()

	g, err := montecarlo.NewIndependentGenerator([]float64{0.04, 0}, montecarlo.NewSource(1, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, g.Dimension())

	const n = 20000
	first := make([]float64, n)
	for i := range first {
		s := g.NextSample()
		require.Len(t, s.Value, 2)
		assert.Equal(t, 1.0, s.Weight)
		assert.Equal(t, 0.0, s.Value[1])
		first[i] = s.Value[0]
	}
	mean, std := stat.MeanStdDev(first, nil)
	assert.InDelta(t, 0, mean, 0.01)
	assert.InDelta(t, 0.2, std, 0.01)

	_, err = montecarlo.NewIndependentGenerator(nil, nil)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewIndependentGenerator([]float64{-1}, nil)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
}

func TestCorrelatedGeneratorReproducesCovariance(t *testing.T) {
	t.Parallel()

	cov := [][]float64{
		{0.04, 0.018, 0.0},
		{0.018, 0.09, -0.012},
		{0.0, -0.012, 0.01},
	}
	g, err := montecarlo.NewCorrelatedGenerator(cov, montecarlo.NewSource(7, 3))
	require.NoError(t, err)

	const n = 100000
	cols := make([][]float64, 3)
	for j := range cols {
		cols[j] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		s := g.NextSample()
		for j := range cols {
			cols[j][i] = s.Value[j]
		}
	}
	for i := range cov {
		for j := range cov {
			assert.InDelta(t, cov[i][j], stat.Covariance(cols[i], cols[j], nil), 0.003, "cov[%d][%d]", i, j)
		}
	}
}

func TestCorrelatedGeneratorValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cov  [][]float64
		want error
	}{
		{"empty", nil, montecarlo.ErrInvalidInput},
		{"not square", [][]float64{{1, 0}, {0}}, montecarlo.ErrNotSquare},
		{"not symmetric", [][]float64{{1, 0.5}, {0.2, 1}}, montecarlo.ErrNotSymmetric},
		{"indefinite", [][]float64{{1, 2}, {2, 1}}, montecarlo.ErrNotPositiveSemidefinite},
		{"NaN", [][]float64{{math.NaN()}}, montecarlo.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := montecarlo.NewCorrelatedGenerator(tt.cov, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Singular but positive semidefinite.
	_, err := montecarlo.NewCorrelatedGenerator([][]float64{{1, 1}, {1, 1}}, montecarlo.NewSource(1, 1))
	assert.NoError(t, err)
}

func TestPathGenerator(t *testing.T) {
	t.Parallel()

	g, err := montecarlo.NewPathGenerator(0.03, 0.04, 1, 4, montecarlo.NewSource(5, 0))
	require.NoError(t, err)
	s := g.Next()
	require.Len(t, s.Paths, 1)
	p := s.Paths[0]
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1}, p.Times)
	for _, d := range p.Drift {
		assert.InDelta(t, 0.03*0.25, d, 1e-15)
	}
	assert.Equal(t, 1.0, s.Weight)

	next := g.Next().Paths[0]
	assert.NotEqual(t, p.Diffusion, next.Diffusion)

	// Zero variance paths are deterministic.
	g, err = montecarlo.NewPathGeneratorOnGrid(0.05, 0, []float64{0, 0.5, 2}, nil)
	require.NoError(t, err)
	p = g.Next().Paths[0]
	assert.Equal(t, []float64{0, 0, 0}, p.Diffusion)
	assert.InDelta(t, 0.1, p.LogReturn(1), 1e-15)
}

func TestPathGeneratorValidation(t *testing.T) {
	t.Parallel()

	_, err := montecarlo.NewPathGenerator(0, 0.04, 1, 0, nil)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewPathGenerator(0, 0.04, 0, 10, nil)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewPathGeneratorOnGrid(0, 0.04, nil, nil)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewPathGeneratorOnGrid(0, 0.04, []float64{-0.1, 1}, nil)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewPathGeneratorOnGrid(0, 0.04, []float64{0.5, 0.5}, nil)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewPathGeneratorOnGrid(0, -0.04, []float64{1}, nil)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewMultiPathGenerator([]float64{0, 0}, [][]float64{{1}}, []float64{1}, nil)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewMultiPathGenerator(nil, nil, []float64{1}, nil)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
}

func TestMultiPathGenerator(t *testing.T) {
	t.Parallel()

	g, err := montecarlo.NewMultiPathGenerator(
		[]float64{0.01, 0.02},
		[][]float64{{0.04, 0.02}, {0.02, 0.09}},
		[]float64{0.5, 1},
		montecarlo.NewSource(11, 0),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Assets())

	const n = 50000
	r0, r1 := make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		s := g.Next()
		require.Len(t, s.Paths, 2)
		r0[i] = s.Paths[0].LogReturn(1)
		r1[i] = s.Paths[1].LogReturn(1)
	}
	assert.InDelta(t, 0.01, stat.Mean(r0, nil), 0.005)
	assert.InDelta(t, 0.04, stat.Variance(r0, nil), 0.002)
	assert.InDelta(t, 0.09, stat.Variance(r1, nil), 0.004)
	assert.InDelta(t, 0.02, stat.Covariance(r0, r1, nil), 0.002)
}

func TestPricerValidation(t *testing.T) {
	t.Parallel()

	_, err := montecarlo.NewEuropeanPathPricer(montecarlo.Call, 0, 100, 1, false)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewEuropeanPathPricer(montecarlo.Call, 100, -1, 1, false)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewEuropeanPathPricer(montecarlo.OptionType(0), 100, 100, 1, false)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewBasketPathPricer([]float64{1, 0}, 1, false)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)
	_, err = montecarlo.NewEverestPathPricer(0, false)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)

	eu, err := montecarlo.NewEuropeanPathPricer(montecarlo.Put, 100, 100, 1, false)
	require.NoError(t, err)
	path := montecarlo.Path{Times: []float64{1}, Drift: []float64{0}, Diffusion: []float64{0}}
	_, err = eu.Value([]montecarlo.Path{path, path})
	assert.ErrorIs(t, err, montecarlo.ErrPathMismatch)
	_, err = eu.Value([]montecarlo.Path{{}})
	assert.ErrorIs(t, err, montecarlo.ErrPathMismatch)

	basket, err := montecarlo.NewBasketPathPricer([]float64{1, 2}, 1, false)
	require.NoError(t, err)
	_, err = basket.Value([]montecarlo.Path{path})
	assert.ErrorIs(t, err, montecarlo.ErrPathMismatch)

	everest, err := montecarlo.NewEverestPathPricer(1, false)
	require.NoError(t, err)
	_, err = everest.Value(nil)
	assert.ErrorIs(t, err, montecarlo.ErrPathMismatch)
}

func TestPricerPayoffs(t *testing.T) {
	t.Parallel()

	up := montecarlo.Path{Times: []float64{0.5, 1}, Drift: []float64{0.01, 0.01}, Diffusion: []float64{0.05, 0.05}}
	down := montecarlo.Path{Times: []float64{0.5, 1}, Drift: []float64{0, 0}, Diffusion: []float64{-0.1, 0}}

	call, err := montecarlo.NewEuropeanPathPricer(montecarlo.Call, 100, 100, 0.95, false)
	require.NoError(t, err)
	v, err := call.Value([]montecarlo.Path{up})
	require.NoError(t, err)
	assert.InDelta(t, 0.95*(100*math.Exp(0.12)-100), v, 1e-12)

	// Mirrored diffusion, shared drift.
	anti, err := montecarlo.NewEuropeanPathPricer(montecarlo.Call, 100, 100, 0.95, true)
	require.NoError(t, err)
	v, err = anti.Value([]montecarlo.Path{up})
	require.NoError(t, err)
	want := 0.95 * (math.Max(100*math.Exp(0.12)-100, 0) + math.Max(100*math.Exp(0.02-0.1)-100, 0)) / 2
	assert.InDelta(t, want, v, 1e-12)

	put, err := montecarlo.NewEuropeanPathPricer(montecarlo.Put, 100, 100, 1, false)
	require.NoError(t, err)
	v, err = put.Value([]montecarlo.Path{down})
	require.NoError(t, err)
	assert.InDelta(t, 100-100*math.Exp(-0.1), v, 1e-12)

	basket, err := montecarlo.NewBasketPathPricer([]float64{0.6, 0.4}, 0.9, false)
	require.NoError(t, err)
	v, err = basket.Value([]montecarlo.Path{up, down})
	require.NoError(t, err)
	assert.InDelta(t, 0.9*(0.6*math.Exp(0.12)+0.4*math.Exp(-0.1)), v, 1e-12)

	everest, err := montecarlo.NewEverestPathPricer(0.9, true)
	require.NoError(t, err)
	v, err = everest.Value([]montecarlo.Path{up, down})
	require.NoError(t, err)
	// Mirrored: up returns -0.08, down returns 0.1.
	assert.InDelta(t, 0.9*(math.Exp(-0.1)+math.Exp(-0.08))/2, v, 1e-12)
}

func TestAntitheticZeroDiffusionIsSymmetric(t *testing.T) {
	t.Parallel()

	p := montecarlo.Path{Times: []float64{1}, Drift: []float64{0.02}, Diffusion: []float64{0}}
	plain, err := montecarlo.NewEuropeanPathPricer(montecarlo.Call, 100, 90, 1, false)
	require.NoError(t, err)
	anti, err := montecarlo.NewEuropeanPathPricer(montecarlo.Call, 100, 90, 1, true)
	require.NoError(t, err)

	a, err := plain.Value([]montecarlo.Path{p})
	require.NoError(t, err)
	b, err := anti.Value([]montecarlo.Path{p})
	require.NoError(t, err)
	assert.InDelta(t, a, b, 1e-12)
}

func TestEngineEuropeanMatchesBlackScholes(t *testing.T) {
	t.Parallel()

	const (
		s0, k, r, sigma, T = 100.0, 100.0, 0.05, 0.2, 1.0
	)
	newGenerator := func(chunk int) (montecarlo.Generator, error) {
		return montecarlo.NewPathGenerator(r-sigma*sigma/2, sigma*sigma, T, 1, montecarlo.NewSource(2024, uint64(chunk)))
	}
	pricer, err := montecarlo.NewEuropeanPathPricer(montecarlo.Call, s0, k, math.Exp(-r*T), true)
	require.NoError(t, err)

	engine := montecarlo.Engine{Paths: 200000, Workers: 4}
	res, err := engine.Price(context.Background(), newGenerator, pricer)
	require.NoError(t, err)

	bs := blackScholesCall(s0, k, r, sigma, T)
	assert.InDelta(t, 10.4506, bs, 1e-4)
	assert.Equal(t, 200000, res.Paths)
	assert.Positive(t, res.StdError)
	assert.InDelta(t, bs, res.Value, 4*res.StdError)

	again, err := engine.Price(context.Background(), newGenerator, pricer)
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestEngineSinglePath(t *testing.T) {
	t.Parallel()

	newGenerator := func(chunk int) (montecarlo.Generator, error) {
		return montecarlo.NewPathGenerator(0, 0.04, 1, 1, montecarlo.NewSource(7, uint64(chunk)))
	}
	pricer, err := montecarlo.NewEuropeanPathPricer(montecarlo.Call, 100, 100, 1, false)
	require.NoError(t, err)

	res, err := montecarlo.Engine{Paths: 1, Workers: 4}.Price(context.Background(), newGenerator, pricer)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Paths)
	assert.False(t, math.IsNaN(res.Value))
	assert.Zero(t, res.StdDev)
	assert.Zero(t, res.StdError)

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestEngineErrors(t *testing.T) {
	t.Parallel()

	pricer, err := montecarlo.NewEverestPathPricer(1, false)
	require.NoError(t, err)
	newGenerator := func(chunk int) (montecarlo.Generator, error) {
		return montecarlo.NewPathGenerator(0, 0.04, 1, 1, montecarlo.NewSource(1, uint64(chunk)))
	}

	_, err = montecarlo.Engine{}.Price(context.Background(), newGenerator, pricer)
	assert.ErrorIs(t, err, montecarlo.ErrInvalidInput)

	basket, err := montecarlo.NewBasketPathPricer([]float64{1, 1}, 1, false)
	require.NoError(t, err)
	_, err = montecarlo.Engine{Paths: 100, Workers: 2}.Price(context.Background(), newGenerator, basket)
	assert.ErrorIs(t, err, montecarlo.ErrPathMismatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = montecarlo.Engine{Paths: 100, Workers: 2}.Price(ctx, newGenerator, pricer)
	assert.ErrorIs(t, err, context.Canceled)
}
