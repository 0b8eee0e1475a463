package solver

import "math"

// Bisection halves the bracket until it is narrower than the accuracy.
type Bisection struct {
	state
}

func NewBisection(maxEvaluations int) *Bisection {
	return &Bisection{state: newState(maxEvaluations)}
}

// Solve ignores the guess: bisection always starts from the full bracket.
func (b *Bisection) Solve(f Objective, accuracy, guess, xMin, xMax float64) (float64, error) {
	done, err := b.bracket(f, accuracy, guess, xMin, xMax)
	if err != nil || done {
		return b.root, err
	}

	// Orient the search so that f > 0 lies at root+dx.
	var dx float64
	if b.fxMin < 0 {
		dx = xMax - xMin
		b.root = xMin
	} else {
		dx = xMin - xMax
		b.root = xMax
	}
	for b.evaluationNumber < b.maxEvaluations {
		dx /= 2
		xMid := b.root + dx
		fMid, err := b.eval(f, xMid)
		if err != nil {
			return b.root, err
		}
		if fMid <= 0 {
			b.root = xMid
		}
		if math.Abs(dx) < accuracy || fMid == 0 {
			return b.root, nil
		}
	}
	return b.root, b.exhausted()
}
