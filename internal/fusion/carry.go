package fusion

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Carry is the per-sentence recurrent state of the segment LSTM during
// incremental decoding. It is passed by value; H and C are never modified
// in place once a Carry has been handed out.
type Carry struct {
	H []float64
	C []float64
}

// Seed returns the state reached by running the segment LSTM over a single
// opener embedding from the zero state. Decoding resets a sentence's carry
// to the seed of a marker whenever that marker is predicted.
//
// opener has shape [1, EmbedDim].
func (e *Encoder) Seed(opener *mat.Dense) Carry {
	if r, c := opener.Dims(); r != 1 || c != e.embedDim {
		panic(fmt.Sprintf("Fusion.Seed: expected [1 %d], got [%d %d]", e.embedDim, r, c))
	}
	h0, c0 := e.cell.ZeroState(1)
	h, c := e.cell.Step(opener, h0, c0)
	return Carry{
		H: append([]float64(nil), h.RawRowView(0)...),
		C: append([]float64(nil), c.RawRowView(0)...),
	}
}

// Step runs the single-token path: x holds one embedding per sentence
// [n, EmbedDim] and carries the state each sentence's segment LSTM is in
// before reading it.
//
// Returns the fused embeddings [n, EmbedDim] and the carries after reading x.
func (e *Encoder) Step(x *mat.Dense, carries []Carry) (*mat.Dense, []Carry) {
	rows, _ := x.Dims()
	if rows != len(carries) {
		panic(fmt.Sprintf("Fusion.Step: %d inputs for %d carries", rows, len(carries)))
	}

	hidden := e.cell.HiddenSize()
	h := mat.NewDense(rows, hidden, nil)
	c := mat.NewDense(rows, hidden, nil)
	for i, carry := range carries {
		copy(h.RawRowView(i), carry.H)
		copy(c.RawRowView(i), carry.C)
	}

	hNext, cNext := e.cell.Step(x, h, c)
	next := make([]Carry, rows)
	for i := range next {
		next[i] = Carry{
			H: append([]float64(nil), hNext.RawRowView(i)...),
			C: append([]float64(nil), cNext.RawRowView(i)...),
		}
	}
	return e.mix(x, hNext), next
}
