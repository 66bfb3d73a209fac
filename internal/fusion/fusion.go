// Package fusion implements the segment encoder: a gate that mixes every raw
// token embedding with the context of the segment it belongs to.
//
// For a segment [opener, t1, ..., tn] a small LSTM runs over the whole span,
// opener included. The output at the opener is dropped; the output at each
// content token is projected back to the embedding width and mixed with the
// raw embedding:
//
//	g   = sigmoid(Wg x)
//	out = g*x + (1-g)*P(lstm(x))
//
// One Encoder exists per language.
package fusion

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/segnmt/internal/nn"
	"github.com/born-ml/segnmt/internal/segment"
)

// Encoder is the gate-fusion segment encoder of one language.
type Encoder struct {
	lang     string
	embedDim int
	cell     *nn.LSTMCell
	proj     *nn.Linear // hidden -> embed
	gate     *nn.Linear // embed -> embed
	dropout  *nn.Dropout
}

// Config holds the sizes of a fusion encoder.
type Config struct {
	EmbedDim   int
	HiddenSize int
	Dropout    float64
}

// New creates a fusion encoder for lang.
func New(lang string, cfg Config, rng *rand.Rand) *Encoder {
	return &Encoder{
		lang:     lang,
		embedDim: cfg.EmbedDim,
		cell:     nn.NewLSTMCell(cfg.EmbedDim, cfg.HiddenSize, rng),
		proj:     nn.NewLinear(cfg.HiddenSize, cfg.EmbedDim, rng, nn.WithName(lang+".fusion.proj")),
		gate:     nn.NewLinear(cfg.EmbedDim, cfg.EmbedDim, rng, nn.WithName(lang+".fusion.gate")),
		dropout:  nn.NewDropout(cfg.Dropout, rng),
	}
}

// Language returns the language of the encoder.
func (e *Encoder) Language() string {
	return e.lang
}

// EmbedDim returns the embedding width the encoder reads and writes.
func (e *Encoder) EmbedDim() int {
	return e.embedDim
}

// Train toggles the stochastic part of the fused output.
func (e *Encoder) Train(training bool) {
	e.dropout.Train(training)
}

// Parameters returns all weights of the encoder.
func (e *Encoder) Parameters() []*nn.Parameter {
	params := e.cell.Parameters()
	params = append(params, e.proj.Parameters()...)
	params = append(params, e.gate.Parameters()...)
	return params
}

// mix applies the gate to raw embeddings x and LSTM outputs h.
func (e *Encoder) mix(x, h *mat.Dense) *mat.Dense {
	g := nn.Sigmoid(e.gate.Forward(x))
	return e.dropout.Forward(nn.Gate(g, x, e.proj.Forward(h)))
}

// Fuse encodes a batch of segmented sentences.
//
// spans[i] holds the embeddings of sentence i in segment layout: every
// segment's opener followed by its content tokens, so spans[i] has
// sum(layouts[i].SpanLengths) rows. All segments of the batch are flattened
// into one list and run as independent sequences starting from the zero
// state.
//
// Returns padded per-sentence matrices [maxContent, EmbedDim] (rows past the
// sentence's content length are zero) and the content lengths.
//
// Panics if a span matrix does not match its layout.
func (e *Encoder) Fuse(spans []*mat.Dense, layouts []*segment.Layout) ([]*mat.Dense, []int) {
	if len(spans) != len(layouts) {
		panic(fmt.Sprintf("Fusion.Fuse: %d span matrices for %d layouts", len(spans), len(layouts)))
	}

	if len(layouts) == 0 {
		return nil, nil
	}

	// Flatten: one sequence per segment.
	var segs []*mat.Dense
	var owner []int
	for i, l := range layouts {
		rows, cols := spans[i].Dims()
		if total := sumInts(l.SpanLengths); rows != total || cols != e.embedDim {
			panic(fmt.Sprintf("Fusion.Fuse: sentence %d expected [%d %d], got [%d %d]",
				i, total, e.embedDim, rows, cols))
		}
		off := 0
		for _, span := range l.SpanLengths {
			segs = append(segs, mat.DenseCopyOf(spans[i].Slice(off, off+span, 0, cols)))
			owner = append(owner, i)
			off += span
		}
	}

	h0, c0 := e.cell.ZeroState(len(segs))
	outs, _, _ := e.cell.Run(segs, false, h0, c0)

	// Regroup the content rows (opener dropped) by SubSegmentLengths.
	lengths := make([]int, len(layouts))
	maxLen := 0
	for i, l := range layouts {
		lengths[i] = sumInts(l.SubSegmentLengths)
		if lengths[i] > maxLen {
			maxLen = lengths[i]
		}
	}
	padded := make([]*mat.Dense, len(layouts))
	next := make([]int, len(layouts))
	for i := range layouts {
		padded[i] = mat.NewDense(maxLen, e.embedDim, nil)
	}
	for s, seg := range segs {
		rows, _ := seg.Dims()
		if rows < 2 {
			continue
		}
		x := mat.DenseCopyOf(seg.Slice(1, rows, 0, e.embedDim))
		h := mat.DenseCopyOf(outs[s].Slice(1, rows, 0, e.cell.HiddenSize()))
		fused := e.mix(x, h)
		i := owner[s]
		for r := 0; r < rows-1; r++ {
			copy(padded[i].RawRowView(next[i]), fused.RawRowView(r))
			next[i]++
		}
	}
	return padded, lengths
}

func sumInts(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
