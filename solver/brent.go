package solver

import "math"

const epsilon = 2.220446049250313e-16

// Brent combines inverse quadratic interpolation, secant steps and bisection.
// The guess is the first iterate; the bracket end of the opposite sign is the
// contrapoint.
type Brent struct {
	state
}

func NewBrent(maxEvaluations int) *Brent {
	return &Brent{state: newState(maxEvaluations)}
}

func (b *Brent) Solve(f Objective, accuracy, guess, xMin, xMax float64) (float64, error) {
	done, err := b.bracket(f, accuracy, guess, xMin, xMax)
	if err != nil || done {
		return b.root, err
	}

	froot, err := b.eval(f, b.root)
	if err != nil || froot == 0 {
		return b.root, err
	}
	// xMax holds the contrapoint, xMin the previous iterate.
	if froot*b.fxMax > 0 {
		b.xMin, b.xMax = b.xMax, b.xMin
		b.fxMin, b.fxMax = b.fxMax, b.fxMin
	}
	d := b.root - b.xMin
	e := d

	for b.evaluationNumber < b.maxEvaluations {
		if (froot > 0 && b.fxMax > 0) || (froot < 0 && b.fxMax < 0) {
			b.xMax, b.fxMax = b.xMin, b.fxMin
			d = b.root - b.xMin
			e = d
		}
		if math.Abs(b.fxMax) < math.Abs(froot) {
			b.xMin, b.fxMin = b.root, froot
			b.root, froot = b.xMax, b.fxMax
			b.xMax, b.fxMax = b.xMin, b.fxMin
		}

		xAcc1 := 2*epsilon*math.Abs(b.root) + 0.5*accuracy
		xMid := (b.xMax - b.root) / 2
		if math.Abs(xMid) <= xAcc1 || froot == 0 {
			return b.root, nil
		}

		if math.Abs(e) >= xAcc1 && math.Abs(b.fxMin) > math.Abs(froot) {
			// Inverse quadratic interpolation, or secant when only two points differ.
			var p, q float64
			s := froot / b.fxMin
			if b.xMin == b.xMax {
				p = 2 * xMid * s
				q = 1 - s
			} else {
				q = b.fxMin / b.fxMax
				r := froot / b.fxMax
				p = s * (2*xMid*q*(q-r) - (b.root-b.xMin)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xMid*q - math.Abs(xAcc1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xMid
				e = d
			}
		} else {
			d = xMid
			e = d
		}

		b.xMin, b.fxMin = b.root, froot
		if math.Abs(d) > xAcc1 {
			b.root += d
		} else {
			b.root += math.Copysign(xAcc1, xMid)
		}
		if froot, err = b.eval(f, b.root); err != nil {
			return b.root, err
		}
	}
	return b.root, b.exhausted()
}
