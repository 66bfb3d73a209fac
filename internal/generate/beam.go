package generate

import (
	"fmt"

	"github.com/born-ml/segnmt/internal/fusion"
	"github.com/born-ml/segnmt/internal/nn"
	"github.com/born-ml/segnmt/internal/segment"
	"github.com/born-ml/segnmt/internal/seq2seq"
)

// Hypothesis is one candidate output of beam search. Completed hypotheses
// are never modified.
type Hypothesis struct {
	// Tokens are the generated ids, sentinels excluded.
	Tokens []int

	// Markers holds the marker of every token.
	Markers []segment.Marker

	// LogProb is the cumulative word plus weighted marker log-probability.
	LogProb float64

	// WordLogProbs holds the word log-probability of every step, the end
	// token's step included.
	WordLogProbs []float64

	// Attention holds the attention weights of every step.
	Attention [][]float64

	// Finished is false for a hypothesis completed by the step cap.
	Finished bool

	// Rank is the ranking score assigned by DecodeConfig.Rank.
	Rank float64
}

// extend returns a copy of h with one more step.
func (h *Hypothesis) extend(token int, marker segment.Marker, score, wordLogp float64, attn []float64, end bool) Hypothesis {
	next := Hypothesis{
		Tokens:       append([]int(nil), h.Tokens...),
		Markers:      append([]segment.Marker(nil), h.Markers...),
		LogProb:      score,
		WordLogProbs: append(append([]float64(nil), h.WordLogProbs...), wordLogp),
		Attention:    append(append([][]float64(nil), h.Attention...), attn),
	}
	if !end {
		next.Tokens = append(next.Tokens, token)
		next.Markers = append(next.Markers, marker)
	}
	return next
}

// Beam decodes a single sentence with DecodeConfig.BeamSize hypotheses.
//
// At every step all BeamSize*vocabulary continuations of the live
// hypotheses compete in one global top-k. A continuation's marker is the
// arg-max marker of its parent row. Decoding stops once BeamSize hypotheses
// have completed or the step cap is reached; if none completed by then, the
// best live hypothesis is completed as is.
//
// Returns all completed hypotheses ranked best first.
//
// Panics if mem does not hold exactly one sentence.
func (g *Generator) Beam(mem *seq2seq.Memory, init seq2seq.State) []Hypothesis {
	if mem.Len() != 1 {
		panic(fmt.Sprintf("Generator.Beam: expected 1 sentence, got %d", mem.Len()))
	}
	srcLen := mem.Lengths()[0]
	beamSize := g.config.BeamSize

	last, carries, att := g.startRows(1)
	state := init
	hyps := []Hypothesis{{}}
	var completed []Hypothesis

	for t := 1; len(completed) < beamSize && t <= g.config.MaxSteps; t++ {
		n := len(hyps)
		res := g.step(last, carries, att, state, mem.Select(make([]int, n)))

		markers := make([]segment.Marker, n)
		markerLogps := make([]float64, n)
		for i := 0; i < n; i++ {
			code, lp := nn.ArgmaxRow(res.markers.RawRowView(i))
			markers[i] = segment.Marker(code)
			markerLogps[i] = g.config.MarkerWeight * lp
		}

		top := newTopK(beamSize - len(completed))
		for i := 0; i < n; i++ {
			base := hyps[i].LogProb + markerLogps[i]
			for tok, lp := range res.words.RawRowView(i) {
				top.Push(candidate{score: base + lp, hyp: i, token: tok})
			}
		}

		var (
			nextHyps    []Hypothesis
			parents     []int
			nextLast    []int
			nextCarries []fusion.Carry
		)
		for _, c := range top.Sorted() {
			parent := &hyps[c.hyp]
			wordLogp := res.words.At(c.hyp, c.token)
			end := c.token == g.specials.End
			h := parent.extend(c.token, markers[c.hyp], c.score, wordLogp, res.attn[c.hyp], end)
			if end {
				h.Finished = true
				completed = append(completed, h)
				continue
			}
			nextHyps = append(nextHyps, h)
			parents = append(parents, c.hyp)
			nextLast = append(nextLast, c.token)
			nextCarries = append(nextCarries, g.nextCarry(markers[c.hyp], res.carries[c.hyp]))
		}

		if len(nextHyps) == 0 {
			break
		}
		hyps, last, carries = nextHyps, nextLast, nextCarries
		state = res.state.Select(parents)
		att = nn.SelectRows(res.combined, parents)
	}

	if len(completed) == 0 {
		g.logger.Debug("beam forced completion", "steps", g.config.MaxSteps, "tokens", len(hyps[0].Tokens))
		completed = append(completed, hyps[0])
	}

	g.config.Rank(completed, srcLen)
	return completed
}
