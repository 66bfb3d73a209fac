package seq2seq

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/segnmt/internal/nn"
)

// BiLSTMEncoder is a stacked bidirectional LSTM.
//
// Layer l > 0 reads the joined forward/backward outputs of layer l-1. The
// final forward and backward states of every layer are joined and projected
// to the decoder's initial H and C of the same layer.
type BiLSTMEncoder struct {
	fwd    []*nn.LSTMCell
	bwd    []*nn.LSTMCell
	hInit  []*nn.Linear // 2*hidden -> hidden
	cInit  []*nn.Linear // 2*hidden -> hidden
	hidden int
}

// NewBiLSTMEncoder creates an encoder of layers stacked bidirectional layers.
func NewBiLSTMEncoder(embedDim, hiddenSize, layers int, rng *rand.Rand) *BiLSTMEncoder {
	e := &BiLSTMEncoder{hidden: hiddenSize}
	in := embedDim
	for l := 0; l < layers; l++ {
		e.fwd = append(e.fwd, nn.NewLSTMCell(in, hiddenSize, rng))
		e.bwd = append(e.bwd, nn.NewLSTMCell(in, hiddenSize, rng))
		e.hInit = append(e.hInit, nn.NewLinear(2*hiddenSize, hiddenSize, rng, nn.WithName(fmt.Sprintf("enc.h%d", l))))
		e.cInit = append(e.cInit, nn.NewLinear(2*hiddenSize, hiddenSize, rng, nn.WithName(fmt.Sprintf("enc.c%d", l))))
		in = 2 * hiddenSize
	}
	return e
}

// Width returns the width of the encoder hidden states.
func (e *BiLSTMEncoder) Width() int {
	return 2 * e.hidden
}

// Encode implements Encoder.
//
// Panics if a length exceeds its padded matrix or is zero.
func (e *BiLSTMEncoder) Encode(padded []*mat.Dense, lengths []int) ([]*mat.Dense, State) {
	if len(padded) != len(lengths) {
		panic(fmt.Sprintf("BiLSTMEncoder.Encode: %d inputs for %d lengths", len(padded), len(lengths)))
	}
	if len(padded) == 0 {
		return nil, State{}
	}
	seqs := make([]*mat.Dense, len(padded))
	for i, p := range padded {
		rows, cols := p.Dims()
		if lengths[i] < 1 || lengths[i] > rows {
			panic(fmt.Sprintf("BiLSTMEncoder.Encode: length %d outside [1, %d]", lengths[i], rows))
		}
		seqs[i] = mat.DenseCopyOf(p.Slice(0, lengths[i], 0, cols))
	}

	n := len(seqs)
	var init State
	for l := range e.fwd {
		h0, c0 := e.fwd[l].ZeroState(n)
		fOut, fh, fc := e.fwd[l].Run(seqs, false, h0, c0)
		bOut, bh, bc := e.bwd[l].Run(seqs, true, h0, c0)

		init.H = append(init.H, e.hInit[l].Forward(nn.HConcat(fh, bh)))
		init.C = append(init.C, e.cInit[l].Forward(nn.HConcat(fc, bc)))

		for i := range seqs {
			seqs[i] = nn.HConcat(fOut[i], bOut[i])
		}
	}
	return seqs, init
}

// Parameters returns all weights of the encoder.
func (e *BiLSTMEncoder) Parameters() []*nn.Parameter {
	var params []*nn.Parameter
	for l := range e.fwd {
		params = append(params, e.fwd[l].Parameters()...)
		params = append(params, e.bwd[l].Parameters()...)
		params = append(params, e.hInit[l].Parameters()...)
		params = append(params, e.cInit[l].Parameters()...)
	}
	return params
}

var _ Encoder = (*BiLSTMEncoder)(nil)
