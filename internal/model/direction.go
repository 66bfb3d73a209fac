package model

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/segnmt/internal/batch"
	"github.com/born-ml/segnmt/internal/generate"
	"github.com/born-ml/segnmt/internal/reconstruct"
	"github.com/born-ml/segnmt/internal/segment"
	"github.com/born-ml/segnmt/internal/seq2seq"
	"github.com/born-ml/segnmt/internal/tokenizer"
)

// Direction translates marker-annotated sentences from one language to
// another.
type Direction struct {
	pair      *Pair
	vocab     *tokenizer.Vocab
	segmenter *segment.Segmenter
	generator *generate.Generator
	recon     *reconstruct.Reconstructor
	logger    *slog.Logger
}

// Direction returns a translator for src->tgt decoding with cfg.
func (m *Model) Direction(src, tgt string, cfg generate.DecodeConfig) (*Direction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pair, err := m.Pair(src, tgt)
	if err != nil {
		return nil, err
	}

	markers := m.vocab.Markers()
	specials := generate.Specials{
		Start: tokenizer.StartID,
		End:   tokenizer.EndID,
	}
	for code := segment.Space; code < segment.NumMarkers; code++ {
		specials.Markers[code] = m.vocab.MarkerID(code)
	}

	logger := m.logger.With("direction", src+"-"+tgt)
	return &Direction{
		pair:      pair,
		vocab:     m.vocab,
		segmenter: segment.New(segment.WithMarkers(markers), segment.WithStartToken(tokenizer.StartToken)),
		generator: generate.NewGenerator(pair.Decode, specials, cfg, generate.WithLogger(logger)),
		recon:     reconstruct.New(reconstruct.WithMarkers(markers), reconstruct.WithLogger(logger)),
		logger:    logger,
	}, nil
}

// Source returns the source language.
func (d *Direction) Source() string {
	return d.pair.Source
}

// Target returns the target language.
func (d *Direction) Target() string {
	return d.pair.Target
}

// Translate greedily decodes a batch of marker-annotated sentences. Results
// follow the order of sentences.
func (d *Direction) Translate(sentences [][]string) []reconstruct.Sentence {
	if len(sentences) == 0 {
		return nil
	}

	lengths := make([]int, len(sentences))
	for i, s := range sentences {
		lengths[i] = d.segmenter.ContentLength(s)
	}
	order := batch.ByLengthDesc(lengths)
	layouts := d.segmenter.SegmentBatch(batch.Apply(order, sentences))

	mem, init := d.encode(layouts)
	outputs := d.generator.Greedy(mem, init)

	results := make([]reconstruct.Sentence, len(outputs))
	for k, out := range outputs {
		results[k] = d.recon.Finalize(d.vocab.Words(out.Tokens), out.Markers, out.Score())
	}
	d.logger.Debug("batch decoded", "sentences", len(sentences), "longest", lengths[order[0]])
	return batch.Restore(order, results)
}

// TranslateBeam decodes one sentence with beam search and returns every
// completed hypothesis, best first. Scores are the ranking scores; empty
// hypotheses come last and carry the placeholder score.
func (d *Direction) TranslateBeam(sentence []string) []reconstruct.Sentence {
	layouts := []*segment.Layout{d.segmenter.Segment(sentence)}
	mem, init := d.encode(layouts)
	hyps := d.generator.Beam(mem, init)

	results := make([]reconstruct.Sentence, len(hyps))
	for i, h := range hyps {
		results[i] = d.recon.Finalize(d.vocab.Words(h.Tokens), h.Markers, h.Rank)
	}
	return results
}

// encode embeds the segment streams of layouts, fuses them and runs the
// source encoder.
func (d *Direction) encode(layouts []*segment.Layout) (*seq2seq.Memory, seq2seq.State) {
	spans := make([]*mat.Dense, len(layouts))
	for i, l := range layouts {
		if l.Degenerate {
			d.logger.Debug("degenerate source sentence replaced by placeholder", "index", i)
		}
		var stream []string
		for _, seg := range l.Segments {
			stream = append(stream, seg.Opener)
			stream = append(stream, seg.Tokens...)
		}
		spans[i] = d.pair.Embedding.Forward(d.vocab.IDs(stream))
	}

	padded, lengths := d.pair.Fusion.Fuse(spans, layouts)
	hidden, init := d.pair.Encoder.Encode(padded, lengths)
	return seq2seq.NewMemory(d.pair.Decode.Decoder, hidden), init
}

// String implements fmt.Stringer.
func (d *Direction) String() string {
	return fmt.Sprintf("%s->%s", d.pair.Source, d.pair.Target)
}
