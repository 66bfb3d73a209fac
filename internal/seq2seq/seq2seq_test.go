package seq2seq

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/segnmt/internal/nn"
)

const (
	embedDim = 3
	hidden   = 4
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(11)) //nolint:gosec // G404: deterministic weights for tests
}

func padTo(m *mat.Dense, rows int) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(rows, c, nil)
	for i := 0; i < r; i++ {
		copy(out.RawRowView(i), m.RawRowView(i))
	}
	return out
}

func TestState_Select(t *testing.T) {
	s := State{
		H: []*mat.Dense{mat.NewDense(3, 1, []float64{1, 2, 3})},
		C: []*mat.Dense{mat.NewDense(3, 1, []float64{4, 5, 6})},
	}
	out := s.Select([]int{2, 0})

	assert.Equal(t, 2, out.Batch())
	assert.Equal(t, []float64{3, 1}, out.H[0].RawMatrix().Data)
	assert.Equal(t, []float64{6, 4}, out.C[0].RawMatrix().Data)
	assert.Equal(t, 0, State{}.Batch())
}

func TestMemory_Select(t *testing.T) {
	a := mat.NewDense(2, 1, nil)
	b := mat.NewDense(5, 1, nil)
	m := &Memory{Hidden: []*mat.Dense{a, b}, Proj: []*mat.Dense{a, b}}

	out := m.Select([]int{1, 1, 0})
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, []int{5, 5, 2}, out.Lengths())
	assert.Same(t, b, out.Hidden[0])
}

func TestBiLSTMEncoder_Shapes(t *testing.T) {
	enc := NewBiLSTMEncoder(embedDim, hidden, 2, newRNG())
	x := nn.Randn(4, embedDim, 1, newRNG())

	out, init := enc.Encode([]*mat.Dense{x, x}, []int{4, 2})

	require.Len(t, out, 2)
	r, c := out[0].Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, enc.Width(), c)
	r, _ = out[1].Dims()
	assert.Equal(t, 2, r)
	require.Len(t, init.H, 2)
	assert.Equal(t, 2, init.Batch())
}

func TestBiLSTMEncoder_PaddingIgnored(t *testing.T) {
	enc := NewBiLSTMEncoder(embedDim, hidden, 2, newRNG())
	short := nn.Randn(2, embedDim, 1, newRNG())
	long := nn.Randn(5, embedDim, 1, rand.New(rand.NewSource(99))) //nolint:gosec // G404: test data

	alone, aloneInit := enc.Encode([]*mat.Dense{short}, []int{2})

	garbage := padTo(short, 5)
	garbage.Set(3, 0, 1000)
	batched, batchedInit := enc.Encode([]*mat.Dense{long, garbage}, []int{5, 2})

	for r := 0; r < 2; r++ {
		assert.InDeltaSlice(t, alone[0].RawRowView(r), batched[1].RawRowView(r), 1e-12)
	}
	for l := range aloneInit.H {
		assert.InDeltaSlice(t, aloneInit.H[l].RawRowView(0), batchedInit.H[l].RawRowView(1), 1e-12)
		assert.InDeltaSlice(t, aloneInit.C[l].RawRowView(0), batchedInit.C[l].RawRowView(1), 1e-12)
	}
}

func TestBiLSTMEncoder_InvalidLengthPanics(t *testing.T) {
	enc := NewBiLSTMEncoder(embedDim, hidden, 1, newRNG())
	x := mat.NewDense(2, embedDim, nil)
	assert.Panics(t, func() { enc.Encode([]*mat.Dense{x}, []int{3}) })
	assert.Panics(t, func() { enc.Encode([]*mat.Dense{x}, []int{0}) })
	assert.Panics(t, func() { enc.Encode([]*mat.Dense{x}, nil) })

	out, init := enc.Encode(nil, nil)
	assert.Nil(t, out)
	assert.Equal(t, 0, init.Batch())
}

func TestAttentionDecoder_Step(t *testing.T) {
	enc := NewBiLSTMEncoder(embedDim, hidden, 2, newRNG())
	dec := NewAttentionDecoder(embedDim, hidden, enc.Width(), 2, 0, newRNG())

	x := nn.Randn(3, embedDim, 1, newRNG())
	encOut, init := enc.Encode([]*mat.Dense{x, x}, []int{3, 1})
	mem := NewMemory(dec, encOut)

	input := nn.Randn(2, embedDim+hidden, 1, newRNG())
	state, combined, attn := dec.Step(input, init, mem)

	assert.Equal(t, 2, state.Batch())
	r, c := combined.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, hidden, c)
	require.Len(t, attn, 2)
	assert.Len(t, attn[0], 3)
	assert.Len(t, attn[1], 1)
	assert.InDelta(t, 1.0, floats.Sum(attn[0]), 1e-12)
	assert.InDelta(t, 1.0, attn[1][0], 1e-12)
	assert.Equal(t, 2, dec.Layers())
}

func TestAttentionDecoder_RowsIndependent(t *testing.T) {
	enc := NewBiLSTMEncoder(embedDim, hidden, 2, newRNG())
	dec := NewAttentionDecoder(embedDim, hidden, enc.Width(), 2, 0, newRNG())

	a := nn.Randn(3, embedDim, 1, newRNG())
	b := nn.Randn(5, embedDim, 1, rand.New(rand.NewSource(5))) //nolint:gosec // G404: test data
	encOut, init := enc.Encode([]*mat.Dense{b, padTo(a, 5)}, []int{5, 3})
	mem := NewMemory(dec, encOut)
	input := nn.Randn(2, embedDim+hidden, 1, newRNG())

	_, combinedAll, attnAll := dec.Step(input, init, mem)
	_, combinedOne, attnOne := dec.Step(nn.SelectRows(input, []int{1}), init.Select([]int{1}), mem.Select([]int{1}))

	assert.InDeltaSlice(t, combinedAll.RawRowView(1), combinedOne.RawRowView(0), 1e-12)
	assert.InDeltaSlice(t, attnAll[1], attnOne[0], 1e-12)
}

func TestAttentionDecoder_MismatchPanics(t *testing.T) {
	dec := NewAttentionDecoder(embedDim, hidden, 2*hidden, 2, 0, newRNG())
	mem := &Memory{Hidden: []*mat.Dense{mat.NewDense(1, 2*hidden, nil)}, Proj: []*mat.Dense{mat.NewDense(1, hidden, nil)}}
	input := mat.NewDense(1, embedDim+hidden, nil)

	assert.Panics(t, func() {
		dec.Step(input, State{H: []*mat.Dense{mat.NewDense(1, hidden, nil)}, C: []*mat.Dense{mat.NewDense(1, hidden, nil)}}, mem)
	})
	assert.Panics(t, func() {
		dec.Step(mat.NewDense(2, embedDim+hidden, nil), State{}, mem)
	})
}
