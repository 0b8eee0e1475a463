package interpolation

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Bilinear interpolates a value grid indexed by ascending column and row labels.
// Targets outside the grid are clamped to the nearest edge.
type Bilinear struct {
	columns, rows []float64
	data          *mat.Dense
}

// NewBilinear builds the interpolator. data[j][i] is the value at (columns[i], rows[j]).
func NewBilinear(columns, rows []float64, data [][]float64) (*Bilinear, error) {
	if len(columns) == 0 || len(rows) == 0 || len(data) == 0 {
		return nil, fmt.Errorf("bilinear: %w", ErrEmpty)
	}
	for _, labels := range [][]float64{columns, rows} {
		for i, x := range labels {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("bilinear: %w: label %d is %g", ErrNonFinite, i, x)
			}
		}
	}
	if err := ascending(columns); err != nil {
		return nil, fmt.Errorf("bilinear columns: %w", err)
	}
	if err := ascending(rows); err != nil {
		return nil, fmt.Errorf("bilinear rows: %w", err)
	}
	if len(data) != len(rows) {
		return nil, fmt.Errorf("%w: %d data rows for %d row labels", ErrDimensionMismatch, len(data), len(rows))
	}
	grid := mat.NewDense(len(rows), len(columns), nil)
	for j, row := range data {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: data row %d has %d values for %d column labels", ErrDimensionMismatch, j, len(row), len(columns))
		}
		grid.SetRow(j, row)
	}
	return &Bilinear{
		columns: append([]float64(nil), columns...),
		rows:    append([]float64(nil), rows...),
		data:    grid,
	}, nil
}

// Interpolate returns the bilinear combination of the four corners bounding
// (column, row). A NaN coordinate yields NaN.
func (b *Bilinear) Interpolate(column, row float64) float64 {
	if math.IsNaN(column) || math.IsNaN(row) {
		return math.NaN()
	}
	c0, c1, wc := bound(b.columns, column)
	r0, r1, wr := bound(b.rows, row)
	lower := (1-wc)*b.data.At(r0, c0) + wc*b.data.At(r0, c1)
	if r0 == r1 {
		return lower
	}
	upper := (1-wc)*b.data.At(r1, c0) + wc*b.data.At(r1, c1)
	return (1-wr)*lower + wr*upper
}

// bound locates the labels bracketing x after clamping it into range, and the
// weight of the upper label. An exact hit returns the same index twice.
func bound(labels []float64, x float64) (lo, hi int, w float64) {
	n := len(labels)
	if x <= labels[0] {
		return 0, 0, 0
	}
	if x >= labels[n-1] {
		return n - 1, n - 1, 0
	}
	hi = sort.SearchFloat64s(labels, x)
	if labels[hi] == x {
		return hi, hi, 0
	}
	lo = hi - 1
	return lo, hi, (x - labels[lo]) / (labels[hi] - labels[lo])
}
