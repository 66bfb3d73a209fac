// Package seq2seq defines the sequence encoder / decoder contract used by the
// decoding engine and provides the reference recurrent implementation: a
// stacked bidirectional LSTM encoder and a stacked LSTM decoder with
// multiplicative attention.
//
// All per-sentence tensors are row aligned: row i of every State matrix and
// entry i of a Memory belong to the same sentence or hypothesis. Select
// re-slices them together, which is how the engine compacts its live set.
package seq2seq

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/segnmt/internal/nn"
)

// Encoder encodes padded source embeddings.
type Encoder interface {
	// Encode reads padded[i] [maxLen, embed] up to lengths[i] rows and returns
	// the per-sentence hidden states [lengths[i], width] and the initial
	// decoder state.
	Encode(padded []*mat.Dense, lengths []int) ([]*mat.Dense, State)
}

// Decoder advances an attention decoder by one position.
type Decoder interface {
	// Project computes the attention projection of encoder hidden states.
	Project(hidden []*mat.Dense) []*mat.Dense

	// Step consumes input [n, embed+hidden] (the fused token embedding joined
	// with the previous combined output) and returns the new state, the new
	// combined output [n, hidden], and for every row the attention weights
	// over its valid source positions.
	Step(input *mat.Dense, state State, mem *Memory) (State, *mat.Dense, [][]float64)

	// HiddenSize returns the width of the combined output.
	HiddenSize() int
}

// State is the layered recurrent state of a batch: one [n, hidden] matrix
// per layer for H and for C.
type State struct {
	H []*mat.Dense
	C []*mat.Dense
}

// Batch returns the number of rows in the state.
func (s State) Batch() int {
	if len(s.H) == 0 {
		return 0
	}
	r, _ := s.H[0].Dims()
	return r
}

// Select gathers rows idx of every layer into a new state.
func (s State) Select(idx []int) State {
	out := State{
		H: make([]*mat.Dense, len(s.H)),
		C: make([]*mat.Dense, len(s.C)),
	}
	for l := range s.H {
		out.H[l] = nn.SelectRows(s.H[l], idx)
		out.C[l] = nn.SelectRows(s.C[l], idx)
	}
	return out
}

// Memory holds the encoder output the decoder attends to. Entry i covers
// only the valid positions of sentence i, so no padding mask is needed.
type Memory struct {
	Hidden []*mat.Dense // [len_i, encoder width]
	Proj   []*mat.Dense // [len_i, decoder hidden]
}

// NewMemory builds the attention memory of encoded sentences.
func NewMemory(dec Decoder, hidden []*mat.Dense) *Memory {
	return &Memory{Hidden: hidden, Proj: dec.Project(hidden)}
}

// Len returns the number of rows.
func (m *Memory) Len() int {
	return len(m.Hidden)
}

// Lengths returns the source length of every row.
func (m *Memory) Lengths() []int {
	out := make([]int, len(m.Hidden))
	for i, h := range m.Hidden {
		out[i], _ = h.Dims()
	}
	return out
}

// Select returns the rows idx. Matrices are shared, never copied; memory is
// read-only during decoding.
func (m *Memory) Select(idx []int) *Memory {
	out := &Memory{
		Hidden: make([]*mat.Dense, len(idx)),
		Proj:   make([]*mat.Dense, len(idx)),
	}
	for i, j := range idx {
		out.Hidden[i] = m.Hidden[j]
		out.Proj[i] = m.Proj[j]
	}
	return out
}
