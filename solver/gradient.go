package solver

import (
	"context"
	"fmt"

	"github.com/meenmo/ratecore/internal/workpool"
)

// Gradient estimates the gradient of f at x by central differences. Coordinates
// are evaluated concurrently on at most workers goroutines (GOMAXPROCS when
// workers <= 0), so f must be safe for concurrent use. f never sees x itself,
// only bumped copies of it.
func Gradient(ctx context.Context, f func(x []float64) (float64, error), x []float64, step float64, workers int) ([]float64, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("%w: gradient step %g must be positive", ErrInvalidInput, step)
	}
	grad := make([]float64, len(x))
	err := workpool.Run(ctx, len(x), workers, func(_ context.Context, _, i int) error {
		bumped := append([]float64(nil), x...)
		bumped[i] = x[i] + step
		up, err := f(bumped)
		if err != nil {
			return fmt.Errorf("gradient coordinate %d: %w", i, err)
		}
		bumped[i] = x[i] - step
		down, err := f(bumped)
		if err != nil {
			return fmt.Errorf("gradient coordinate %d: %w", i, err)
		}
		grad[i] = (up - down) / (2 * step)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return grad, nil
}
