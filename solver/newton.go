package solver

import "math"

// SafeNewton takes Newton steps while they stay inside the bracket and shrink
// fast enough, and bisects otherwise. Objectives without an analytic
// derivative are differentiated by central differences; those extra
// evaluations are not counted.
type SafeNewton struct {
	state
}

func NewSafeNewton(maxEvaluations int) *SafeNewton {
	return &SafeNewton{state: newState(maxEvaluations)}
}

func (n *SafeNewton) Solve(f Objective, accuracy, guess, xMin, xMax float64) (float64, error) {
	done, err := n.bracket(f, accuracy, guess, xMin, xMax)
	if err != nil || done {
		return n.root, err
	}

	// Orient so that f(xl) < 0.
	xl, xh := xMin, xMax
	if n.fxMin > 0 {
		xl, xh = xMax, xMin
	}
	dxOld := xMax - xMin
	dx := dxOld

	froot, err := n.eval(f, n.root)
	if err != nil {
		return n.root, err
	}
	dfroot := derivative(f, n.root)

	for n.evaluationNumber < n.maxEvaluations {
		outside := ((n.root-xh)*dfroot-froot)*((n.root-xl)*dfroot-froot) > 0
		slow := math.Abs(2*froot) > math.Abs(dxOld*dfroot)
		dxOld = dx
		if outside || slow {
			dx = (xh - xl) / 2
			n.root = xl + dx
		} else {
			dx = froot / dfroot
			n.root -= dx
		}
		if math.Abs(dx) < accuracy {
			return n.root, nil
		}
		if froot, err = n.eval(f, n.root); err != nil {
			return n.root, err
		}
		if froot == 0 {
			return n.root, nil
		}
		dfroot = derivative(f, n.root)
		if froot < 0 {
			xl = n.root
		} else {
			xh = n.root
		}
	}
	return n.root, n.exhausted()
}

func derivative(f Objective, x float64) float64 {
	if d, ok := f.(Differentiable); ok {
		return d.Derivative(x)
	}
	h := 1e-7 * math.Max(1, math.Abs(x))
	return (f.Value(x+h) - f.Value(x-h)) / (2 * h)
}
