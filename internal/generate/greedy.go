package generate

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/segnmt/internal/fusion"
	"github.com/born-ml/segnmt/internal/nn"
	"github.com/born-ml/segnmt/internal/segment"
	"github.com/born-ml/segnmt/internal/seq2seq"
)

// Output is the greedy decode of one sentence.
type Output struct {
	// Tokens are the generated ids, start and end sentinels excluded.
	Tokens []int

	// Markers holds the predicted marker of every token.
	Markers []segment.Marker

	// LogProb is the cumulative word plus weighted marker log-probability,
	// the end token's step included.
	LogProb float64

	// Steps is the number of steps the sentence was live.
	Steps int

	// Finished is false when the step cap forced completion.
	Finished bool
}

// Score returns LogProb per generated token. An empty output keeps LogProb.
func (o Output) Score() float64 {
	if len(o.Tokens) == 0 {
		return o.LogProb
	}
	return o.LogProb / float64(len(o.Tokens))
}

// liveSet is the dense arena of rows still generating. Row r of every field
// belongs to sentence ids[r]; compact re-slices all fields together.
type liveSet struct {
	ids     []int
	state   seq2seq.State
	mem     *seq2seq.Memory
	att     *mat.Dense
	carries []fusion.Carry
	last    []int
	tokens  [][]int
	markers [][]segment.Marker
	scores  []float64
}

func (l *liveSet) len() int {
	return len(l.ids)
}

// compact keeps rows keep, in order.
func (l *liveSet) compact(keep []int) {
	if len(keep) == 0 {
		*l = liveSet{}
		return
	}
	ids := make([]int, len(keep))
	carries := make([]fusion.Carry, len(keep))
	last := make([]int, len(keep))
	tokens := make([][]int, len(keep))
	markers := make([][]segment.Marker, len(keep))
	scores := make([]float64, len(keep))
	for k, r := range keep {
		ids[k] = l.ids[r]
		carries[k] = l.carries[r]
		last[k] = l.last[r]
		tokens[k] = l.tokens[r]
		markers[k] = l.markers[r]
		scores[k] = l.scores[r]
	}
	l.ids, l.carries, l.last, l.tokens, l.markers, l.scores = ids, carries, last, tokens, markers, scores
	l.state = l.state.Select(keep)
	l.mem = l.mem.Select(keep)
	l.att = nn.SelectRows(l.att, keep)
}

// Greedy decodes every sentence of mem, taking the arg-max word and marker
// at every step.
//
// init is the decoder state the encoder produced for the same rows. Outputs
// are indexed like the rows of mem, whatever order the sentences finish in.
// Decoding stops after DecodeConfig.MaxSteps steps at the latest.
func (g *Generator) Greedy(mem *seq2seq.Memory, init seq2seq.State) []Output {
	n := mem.Len()
	if n == 0 {
		return nil
	}

	last, carries, att := g.startRows(n)
	live := &liveSet{
		ids:     make([]int, n),
		state:   init,
		mem:     mem,
		att:     att,
		carries: carries,
		last:    last,
		tokens:  make([][]int, n),
		markers: make([][]segment.Marker, n),
		scores:  make([]float64, n),
	}
	for i := range live.ids {
		live.ids[i] = i
	}

	outputs := make([]Output, n)
	for t := 1; live.len() > 0; t++ {
		res := g.step(live.last, live.carries, live.att, live.state, live.mem)
		capped := t >= g.config.MaxSteps

		keep := make([]int, 0, live.len())
		for r := range live.ids {
			tok, wordLogp := nn.ArgmaxRow(res.words.RawRowView(r))
			code, markerLogp := nn.ArgmaxRow(res.markers.RawRowView(r))
			marker := segment.Marker(code)

			live.scores[r] += wordLogp + g.config.MarkerWeight*markerLogp
			live.last[r] = tok
			live.carries[r] = g.nextCarry(marker, res.carries[r])

			if tok == g.specials.End {
				outputs[live.ids[r]] = Output{
					Tokens:   live.tokens[r],
					Markers:  live.markers[r],
					LogProb:  live.scores[r],
					Steps:    t,
					Finished: true,
				}
				continue
			}

			live.tokens[r] = append(live.tokens[r], tok)
			live.markers[r] = append(live.markers[r], marker)
			if capped {
				outputs[live.ids[r]] = Output{
					Tokens:  live.tokens[r],
					Markers: live.markers[r],
					LogProb: live.scores[r],
					Steps:   t,
				}
				continue
			}
			keep = append(keep, r)
		}

		live.state, live.att = res.state, res.combined
		if len(keep) < live.len() {
			g.logger.Debug("live set shrank",
				"step", t,
				"finished", live.len()-len(keep),
				"live", len(keep),
				"capped", capped)
			live.compact(keep)
		}
	}
	return outputs
}
