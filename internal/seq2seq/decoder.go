package seq2seq

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/segnmt/internal/nn"
)

// AttentionDecoder is a stacked LSTM decoder with multiplicative attention
// over the encoder states.
//
// Per step:
//
//	h_1..h_L = LSTM layers over input
//	e_j      = proj_j . h_L
//	alpha    = softmax(e)
//	a        = sum_j alpha_j hidden_j
//	combined = tanh(W [a; h_L])
type AttentionDecoder struct {
	cells    []*nn.LSTMCell
	attProj  *nn.Linear // encoder width -> hidden
	combined *nn.Linear // encoder width + hidden -> hidden
	dropout  *nn.Dropout
	hidden   int
}

// NewAttentionDecoder creates a decoder reading embeddings of embedDim joined
// with the previous combined output.
func NewAttentionDecoder(embedDim, hiddenSize, encWidth, layers int, dropout float64, rng *rand.Rand) *AttentionDecoder {
	d := &AttentionDecoder{
		attProj:  nn.NewLinear(encWidth, hiddenSize, rng, nn.WithName("dec.att")),
		combined: nn.NewLinear(encWidth+hiddenSize, hiddenSize, rng, nn.WithName("dec.combined")),
		dropout:  nn.NewDropout(dropout, rng),
		hidden:   hiddenSize,
	}
	in := embedDim + hiddenSize
	for l := 0; l < layers; l++ {
		d.cells = append(d.cells, nn.NewLSTMCell(in, hiddenSize, rng))
		in = hiddenSize
	}
	return d
}

// Train switches dropout on the decoder output.
func (d *AttentionDecoder) Train(training bool) {
	d.dropout.Train(training)
}

// HiddenSize implements Decoder.
func (d *AttentionDecoder) HiddenSize() int {
	return d.hidden
}

// Layers returns the number of stacked layers.
func (d *AttentionDecoder) Layers() int {
	return len(d.cells)
}

// Project implements Decoder.
func (d *AttentionDecoder) Project(hidden []*mat.Dense) []*mat.Dense {
	out := make([]*mat.Dense, len(hidden))
	for i, h := range hidden {
		out[i] = d.attProj.Forward(h)
	}
	return out
}

// Step implements Decoder.
//
// Panics if the state has a different layer count or the memory a different
// row count than input.
func (d *AttentionDecoder) Step(input *mat.Dense, state State, mem *Memory) (State, *mat.Dense, [][]float64) {
	rows, _ := input.Dims()
	if len(state.H) != len(d.cells) || len(state.C) != len(d.cells) {
		panic(fmt.Sprintf("AttentionDecoder.Step: expected %d layers, got %d", len(d.cells), len(state.H)))
	}
	if mem.Len() != rows {
		panic(fmt.Sprintf("AttentionDecoder.Step: %d inputs for %d memory rows", rows, mem.Len()))
	}

	next := State{
		H: make([]*mat.Dense, len(d.cells)),
		C: make([]*mat.Dense, len(d.cells)),
	}
	x := input
	for l, cell := range d.cells {
		next.H[l], next.C[l] = cell.Step(x, state.H[l], state.C[l])
		x = next.H[l]
	}
	top := x

	attn := make([][]float64, rows)
	_, encWidth := mem.Hidden[0].Dims()
	context := mat.NewDense(rows, encWidth, nil)
	for i := 0; i < rows; i++ {
		proj := mem.Proj[i]
		srcLen, _ := proj.Dims()
		h := top.RawRowView(i)
		scores := make([]float64, srcLen)
		for j := 0; j < srcLen; j++ {
			scores[j] = floats.Dot(proj.RawRowView(j), h)
		}
		alpha := nn.SoftmaxRow(scores)
		attn[i] = alpha

		ctx := context.RawRowView(i)
		for j, a := range alpha {
			floats.AddScaled(ctx, a, mem.Hidden[i].RawRowView(j))
		}
	}

	combined := nn.Tanh(d.combined.Forward(nn.HConcat(context, top)))
	return next, d.dropout.Forward(combined), attn
}

// Parameters returns all weights of the decoder.
func (d *AttentionDecoder) Parameters() []*nn.Parameter {
	var params []*nn.Parameter
	for _, c := range d.cells {
		params = append(params, c.Parameters()...)
	}
	params = append(params, d.attProj.Parameters()...)
	params = append(params, d.combined.Parameters()...)
	return params
}

var _ Decoder = (*AttentionDecoder)(nil)
