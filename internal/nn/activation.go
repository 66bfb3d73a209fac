package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sigmoid applies σ(x) = 1 / (1 + exp(-x)) element-wise and returns a new matrix.
//
// Sigmoid squashes values to the range (0, 1), making it useful for
// gate mechanisms in LSTMs and the segment gate.
func Sigmoid(x mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return sigmoid(v)
	}, x)
	return &out
}

// Tanh applies the hyperbolic tangent element-wise and returns a new matrix.
func Tanh(x mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Tanh(v)
	}, x)
	return &out
}

// sigmoid is numerically stable for large |v|.
func sigmoid(v float64) float64 {
	if v >= 0 {
		return 1.0 / (1.0 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1.0 + e)
}
