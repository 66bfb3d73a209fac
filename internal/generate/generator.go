// Package generate implements the batched incremental decoder of the
// translation engine.
//
// Every step advances all live rows together:
//  1. embed the last emitted token of every row (the start sentinel first)
//  2. fuse it through the target segment encoder with the row's carry state
//  3. join it with the previous combined output and run the decoder step
//  4. take word and marker log-probabilities from the combined output
//
// A row's carry is reset to the seed of a marker whenever that marker is
// predicted, so the segment recurrence restarts at every boundary.
//
// Greedy decoding runs a whole batch and drops rows from the live set as they
// finish. Beam search runs one sentence with K hypotheses and a global top-k
// over all continuations.
package generate

import (
	"io"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/segnmt/internal/fusion"
	"github.com/born-ml/segnmt/internal/nn"
	"github.com/born-ml/segnmt/internal/segment"
	"github.com/born-ml/segnmt/internal/seq2seq"
)

// Target bundles the target-language components driven by the generator.
type Target struct {
	Embedding  *nn.Embedding
	Fusion     *fusion.Encoder
	Decoder    seq2seq.Decoder
	WordHead   *nn.Linear // hidden -> vocabulary
	MarkerHead *nn.Linear // hidden -> segment.NumMarkers
}

// Specials holds the vocabulary ids the generator needs.
type Specials struct {
	Start int
	End   int

	// Markers maps a marker code to the id of its symbol. Index None is unused.
	Markers [segment.NumMarkers]int
}

// Generator decodes encoded source sentences into token and marker sequences.
type Generator struct {
	target   Target
	specials Specials
	config   DecodeConfig
	seeds    [segment.NumMarkers]fusion.Carry
	logger   *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*generatorOptions)

type generatorOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for decode events.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(o *generatorOptions) {
		o.logger = l
	}
}

// NewGenerator creates a generator and computes the marker seed states.
//
// Panics if config is invalid.
func NewGenerator(target Target, specials Specials, config DecodeConfig, opts ...GeneratorOption) *Generator {
	if err := config.Validate(); err != nil {
		panic(err.Error())
	}
	options := &generatorOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	g := &Generator{
		target:   target,
		specials: specials,
		config:   config,
		logger:   options.logger,
	}
	for m := segment.Space; m < segment.NumMarkers; m++ {
		g.seeds[m] = target.Fusion.Seed(target.Embedding.Forward([]int{specials.Markers[m]}))
	}
	return g
}

// Config returns the decode configuration.
func (g *Generator) Config() DecodeConfig {
	return g.config
}

// nextCarry picks the carry a row reads its next token with.
func (g *Generator) nextCarry(m segment.Marker, after fusion.Carry) fusion.Carry {
	if m != segment.None && m.Valid() {
		return g.seeds[m]
	}
	return after
}

// startRows returns the first-step inputs for n rows: the start sentinel, the
// Space seed and a zero attention output.
func (g *Generator) startRows(n int) ([]int, []fusion.Carry, *mat.Dense) {
	last := make([]int, n)
	carries := make([]fusion.Carry, n)
	for i := range last {
		last[i] = g.specials.Start
		carries[i] = g.seeds[segment.Space]
	}
	return last, carries, mat.NewDense(n, g.target.Decoder.HiddenSize(), nil)
}

type stepResult struct {
	state    seq2seq.State
	combined *mat.Dense
	attn     [][]float64
	words    *mat.Dense     // [n, vocab] log-probabilities
	markers  *mat.Dense     // [n, NumMarkers] log-probabilities
	carries  []fusion.Carry // carries after reading last
}

// step advances every row by one position.
func (g *Generator) step(last []int, carries []fusion.Carry, att *mat.Dense, state seq2seq.State, mem *seq2seq.Memory) stepResult {
	x := g.target.Embedding.Forward(last)
	y, after := g.target.Fusion.Step(x, carries)
	next, combined, attn := g.target.Decoder.Step(nn.HConcat(y, att), state, mem)
	return stepResult{
		state:    next,
		combined: combined,
		attn:     attn,
		words:    nn.LogSoftmaxRows(g.target.WordHead.Forward(combined)),
		markers:  nn.LogSoftmaxRows(g.target.MarkerHead.Forward(combined)),
		carries:  after,
	}
}
