package nn_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/segnmt/internal/nn"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(7)) //nolint:gosec // G404: deterministic weights for tests
}

func TestParameter(t *testing.T) {
	p := nn.NewParameter("test_param", mat.NewDense(2, 3, nil))

	assert.Equal(t, "test_param", p.Name())
	assert.Equal(t, 6, p.NumElements())

	require.NoError(t, p.Set(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})))
	assert.Equal(t, 6.0, p.Value().At(1, 2))

	err := p.Set(mat.NewDense(3, 2, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test_param shape mismatch")
}

func TestLinear_Forward(t *testing.T) {
	l := nn.NewLinear(3, 2, newRNG(), nn.WithBias())
	require.NoError(t, l.Weight().Set(mat.NewDense(2, 3, []float64{
		1, 0, 0,
		0, 1, 1,
	})))
	require.NoError(t, l.Bias().Set(mat.NewDense(1, 2, []float64{0.5, -1})))

	out := l.Forward(mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	}))

	r, c := out.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.InDeltaSlice(t, []float64{1.5, 4}, out.RawRowView(0), 1e-12)
	assert.InDeltaSlice(t, []float64{4.5, 10}, out.RawRowView(1), 1e-12)
}

func TestLinear_NoBiasByDefault(t *testing.T) {
	l := nn.NewLinear(4, 4, newRNG())
	assert.Nil(t, l.Bias())
	assert.Len(t, l.Parameters(), 1)
	assert.Equal(t, 4, l.InFeatures())
	assert.Equal(t, 4, l.OutFeatures())
}

func TestLinear_ShapeMismatchPanics(t *testing.T) {
	l := nn.NewLinear(3, 2, newRNG())
	assert.Panics(t, func() {
		l.Forward(mat.NewDense(1, 4, nil))
	})
}

func TestXavierBounds(t *testing.T) {
	w := nn.Xavier(10, 6, 6, 10, newRNG())
	bound := 0.6123724356957945 // sqrt(6/16)
	r, c := w.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := w.At(i, j)
			if v < -bound || v > bound {
				t.Errorf("Xavier value %f outside [-%f, %f]", v, bound, bound)
			}
		}
	}
}

func TestCountParameters(t *testing.T) {
	l := nn.NewLinear(3, 2, newRNG(), nn.WithBias())
	e := nn.NewEmbedding(5, 4, newRNG())
	assert.Equal(t, 3*2+2+5*4, nn.CountParameters(l, e))
}
