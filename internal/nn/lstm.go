package nn

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// LSTMCell computes a single recurrent step for a batch of rows.
//
// Gates are packed in the order input, forget, cell, output:
//
//	[i f g o] = x @ Wih.T + h @ Whh.T + b
//	c' = σ(f) * c + σ(i) * tanh(g)
//	h' = σ(o) * tanh(c')
//
// Example:
//
//	cell := nn.NewLSTMCell(256, 512, rng)
//	h, c := cell.Step(x, h, c)
type LSTMCell struct {
	inputSize  int
	hiddenSize int
	ih         *Linear // [4*hidden, input] with bias
	hh         *Linear // [4*hidden, hidden]
}

// NewLSTMCell creates a new LSTM cell with Xavier initialized weights.
func NewLSTMCell(inputSize, hiddenSize int, rng *rand.Rand) *LSTMCell {
	return &LSTMCell{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		ih:         NewLinear(inputSize, 4*hiddenSize, rng, WithBias(), WithName("lstm.ih")),
		hh:         NewLinear(hiddenSize, 4*hiddenSize, rng, WithName("lstm.hh")),
	}
}

// Step advances the cell by one position.
//
// Input shapes: x [batch, input], h and c [batch, hidden].
// Returns the new hidden and cell states, both [batch, hidden].
// The inputs are never modified.
func (l *LSTMCell) Step(x, h, c *mat.Dense) (*mat.Dense, *mat.Dense) {
	rows, _ := x.Dims()
	hr, hc := h.Dims()
	cr, cc := c.Dims()
	if hr != rows || cr != rows || hc != l.hiddenSize || cc != l.hiddenSize {
		panic(fmt.Sprintf("LSTMCell.Step: expected state [%d %d], got h [%d %d] c [%d %d]",
			rows, l.hiddenSize, hr, hc, cr, cc))
	}

	gates := l.ih.Forward(x)
	gates.Add(gates, l.hh.Forward(h))

	n := l.hiddenSize
	hNext := mat.NewDense(rows, n, nil)
	cNext := mat.NewDense(rows, n, nil)
	for r := 0; r < rows; r++ {
		g := gates.RawRowView(r)
		cPrev := c.RawRowView(r)
		hOut := hNext.RawRowView(r)
		cOut := cNext.RawRowView(r)
		for j := 0; j < n; j++ {
			in := sigmoid(g[j])
			forget := sigmoid(g[n+j])
			cand := math.Tanh(g[2*n+j])
			out := sigmoid(g[3*n+j])
			cOut[j] = forget*cPrev[j] + in*cand
			hOut[j] = out * math.Tanh(cOut[j])
		}
	}
	return hNext, cNext
}

// Run steps the cell over a batch of variable length sequences.
//
// seqs[i] holds the [len_i, input] rows of sequence i (nil for an empty
// sequence). h0 and c0 give the [len(seqs), hidden] initial states. Sequences
// are advanced together; at each position only rows still inside their
// sequence are computed. With reverse set each sequence is read back to front,
// and its outputs are still returned in original position order.
//
// Returns per-sequence outputs [len_i, hidden] (nil when len_i is 0) and the
// final hidden and cell states, which equal h0/c0 for empty sequences.
func (l *LSTMCell) Run(seqs []*mat.Dense, reverse bool, h0, c0 *mat.Dense) ([]*mat.Dense, *mat.Dense, *mat.Dense) {
	n := len(seqs)
	lengths := make([]int, n)
	maxLen := 0
	outputs := make([]*mat.Dense, n)
	for i, s := range seqs {
		if s == nil {
			continue
		}
		lengths[i], _ = s.Dims()
		if lengths[i] > maxLen {
			maxLen = lengths[i]
		}
		outputs[i] = mat.NewDense(lengths[i], l.hiddenSize, nil)
	}

	h := mat.DenseCopyOf(h0)
	c := mat.DenseCopyOf(c0)
	for t := 0; t < maxLen; t++ {
		var active []int
		for i, ln := range lengths {
			if t < ln {
				active = append(active, i)
			}
		}

		x := mat.NewDense(len(active), l.inputSize, nil)
		for r, i := range active {
			pos := t
			if reverse {
				pos = lengths[i] - 1 - t
			}
			copy(x.RawRowView(r), seqs[i].RawRowView(pos))
		}

		hNext, cNext := l.Step(x, SelectRows(h, active), SelectRows(c, active))
		for r, i := range active {
			pos := t
			if reverse {
				pos = lengths[i] - 1 - t
			}
			copy(outputs[i].RawRowView(pos), hNext.RawRowView(r))
			copy(h.RawRowView(i), hNext.RawRowView(r))
			copy(c.RawRowView(i), cNext.RawRowView(r))
		}
	}
	return outputs, h, c
}

// ZeroState returns zero hidden and cell states for batch rows.
func (l *LSTMCell) ZeroState(batch int) (*mat.Dense, *mat.Dense) {
	return Zeros(batch, l.hiddenSize), Zeros(batch, l.hiddenSize)
}

// InputSize returns the expected input width.
func (l *LSTMCell) InputSize() int {
	return l.inputSize
}

// HiddenSize returns the state width.
func (l *LSTMCell) HiddenSize() int {
	return l.hiddenSize
}

// Parameters returns the cell weights.
func (l *LSTMCell) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 3)
	params = append(params, l.ih.Parameters()...)
	params = append(params, l.hh.Parameters()...)
	return params
}
