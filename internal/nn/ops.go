package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SelectRows gathers rows of m in the given order into a new matrix.
//
// Rows may repeat (beam expansion) or be dropped (batch compaction).
// Panics if idx is empty.
func SelectRows(m *mat.Dense, idx []int) *mat.Dense {
	if len(idx) == 0 {
		panic("SelectRows: empty index list")
	}
	_, cols := m.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, r := range idx {
		copy(out.RawRowView(i), m.RawRowView(r))
	}
	return out
}

// HConcat joins matrices with the same row count side by side.
func HConcat(ms ...*mat.Dense) *mat.Dense {
	if len(ms) == 0 {
		panic("HConcat: no matrices")
	}
	rows, _ := ms[0].Dims()
	width := 0
	for _, m := range ms {
		r, c := m.Dims()
		if r != rows {
			panic(fmt.Sprintf("HConcat: row mismatch %d vs %d", r, rows))
		}
		width += c
	}
	out := mat.NewDense(rows, width, nil)
	for i := 0; i < rows; i++ {
		dst := out.RawRowView(i)
		off := 0
		for _, m := range ms {
			src := m.RawRowView(i)
			copy(dst[off:], src)
			off += len(src)
		}
	}
	return out
}

// LogSoftmaxRows applies log-softmax to each row and returns a new matrix.
//
// Uses the max-subtraction form for numerical stability.
func LogSoftmaxRows(logits *mat.Dense) *mat.Dense {
	rows, cols := logits.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		src := logits.RawRowView(i)
		dst := out.RawRowView(i)
		lse := floats.LogSumExp(src)
		for j, v := range src {
			dst[j] = v - lse
		}
	}
	return out
}

// SoftmaxRow returns the softmax of a single row.
func SoftmaxRow(row []float64) []float64 {
	out := make([]float64, len(row))
	if len(row) == 0 {
		return out
	}
	maxVal := floats.Max(row)
	sum := 0.0
	for i, v := range row {
		out[i] = math.Exp(v - maxVal)
		sum += out[i]
	}
	floats.Scale(1/sum, out)
	return out
}

// ArgmaxRow returns the index and value of the largest element.
//
// Ties resolve to the lowest index.
func ArgmaxRow(row []float64) (int, float64) {
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best, row[best]
}

// Gate computes g*x + (1-g)*y element-wise, where all inputs share one shape.
func Gate(g, x, y *mat.Dense) *mat.Dense {
	rows, cols := g.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		gr, xr, yr, dst := g.RawRowView(i), x.RawRowView(i), y.RawRowView(i), out.RawRowView(i)
		for j := range dst {
			dst[j] = gr[j]*xr[j] + (1-gr[j])*yr[j]
		}
	}
	return out
}
