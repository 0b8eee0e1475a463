package montecarlo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/ratecore/internal/workpool"
)

// Result is a Monte Carlo estimate.
type Result struct {
	Value    float64
	StdDev   float64
	StdError float64
	Paths    int
}

// Engine prices a PathPricer by simulation. Paths are split into one
// contiguous chunk per worker and each chunk draws from its own generator,
// so a result depends only on Paths, Workers and the generators, never on
// scheduling.
type Engine struct {
	Paths int
	// Workers defaults to GOMAXPROCS.
	Workers int
	// Logger receives a debug summary per run; nil discards it.
	Logger *zerolog.Logger
}

// GeneratorFactory returns the generator for chunk i. Returned generators
// must not share state.
type GeneratorFactory func(chunk int) (Generator, error)

// Price simulates e.Paths samples and returns their weighted mean value. A
// single path reports zero StdDev and StdError.
func (e Engine) Price(ctx context.Context, newGenerator GeneratorFactory, pricer PathPricer) (Result, error) {
	if e.Paths <= 0 {
		return Result{}, fmt.Errorf("%w: %d paths", ErrInvalidInput, e.Paths)
	}
	if newGenerator == nil || pricer == nil {
		return Result{}, fmt.Errorf("%w: nil generator factory or pricer", ErrInvalidInput)
	}

	chunks := workpool.Workers(e.Paths, e.Workers)
	generators := make([]Generator, chunks)
	for i := range generators {
		g, err := newGenerator(i)
		if err != nil {
			return Result{}, fmt.Errorf("montecarlo: generator %d: %w", i, err)
		}
		generators[i] = g
	}

	start := time.Now()
	values := make([]float64, e.Paths)
	weights := make([]float64, e.Paths)
	err := workpool.Run(ctx, chunks, chunks, func(ctx context.Context, _, c int) error {
		lo, hi := c*e.Paths/chunks, (c+1)*e.Paths/chunks
		for i := lo; i < hi; i++ {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			sample := generators[c].Next()
			v, err := pricer.Value(sample.Paths)
			if err != nil {
				return fmt.Errorf("montecarlo: path %d: %w", i, err)
			}
			values[i], weights[i] = v, sample.Weight
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	mean, std := stat.MeanStdDev(values, weights)
	if e.Paths == 1 {
		// A single sample has no dispersion estimate.
		std = 0
	}
	res := Result{
		Value:    mean,
		StdDev:   std,
		StdError: stat.StdErr(std, float64(e.Paths)),
		Paths:    e.Paths,
	}
	log := zerolog.Nop()
	if e.Logger != nil {
		log = *e.Logger
	}
	log.Debug().
		Int("paths", e.Paths).
		Int("chunks", chunks).
		Float64("value", res.Value).
		Float64("std_error", res.StdError).
		Dur("elapsed", time.Since(start)).
		Msg("monte carlo priced")
	return res, nil
}
