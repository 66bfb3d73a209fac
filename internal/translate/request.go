package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/segnmt/internal/batch"
	"github.com/born-ml/segnmt/internal/memory"
	"github.com/born-ml/segnmt/internal/parallel"
	"github.com/born-ml/segnmt/internal/reconstruct"
	"github.com/born-ml/segnmt/internal/segment"
	"github.com/born-ml/segnmt/internal/textproc"
)

// Options selects the direction and search of one request.
type Options struct {
	// From and To fix the direction. When both are empty the direction is
	// detected per text; when one is empty it is the other language of the
	// model's first pair.
	From string
	To   string

	// BeamSize overrides the configured beam size. 1 decodes greedily.
	BeamSize int
}

// SentenceResult is the translation of one sentence.
type SentenceResult struct {
	Source  string
	Text    string
	Tokens  []string
	Markers []segment.Marker
	Score   float64

	// Cached is set when the translation came from the cache or the
	// translation memory.
	Cached bool
}

// Result is the translation of one input text.
type Result struct {
	From      string
	To        string
	Text      string
	Score     float64 // mean sentence score
	Sentences []SentenceResult
}

// job is one sentence of a request.
type job struct {
	text   int
	src    string
	tgt    string
	source string
	tokens []string
	result SentenceResult
	done   bool
}

func (j *job) cacheKey(beam int) string {
	return fmt.Sprintf("%s-%s/%d\x00%s", j.src, j.tgt, beam, j.source)
}

// unit is a group of jobs decoded together.
type unit struct {
	src, tgt string
	jobs     []*job
}

// Translate translates every text. Results follow the order of texts.
//
// Returns ErrEmptyInput when texts hold no sentence, ErrUnknownLanguage when
// a fixed direction is not served by the model, and the context's error when
// ctx ends before every batch was decoded.
func (t *Translator) Translate(ctx context.Context, texts []string, opts Options) ([]Result, error) {
	beam := opts.BeamSize
	if beam <= 0 {
		beam = t.cfg.Decode.BeamSize
	}

	results, jobs, err := t.prepare(texts, opts)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrEmptyInput
	}

	misses := t.lookup(jobs, beam)
	units := t.plan(misses, beam)
	if len(units) > 0 {
		t.logger.Info("decoding", "sentences", len(misses), "units", len(units), "beam", beam)
	}

	err = parallel.Map(ctx, len(units), func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return t.decode(units[i], beam)
	}, t.cfg.Service.Parallel)
	if err != nil {
		return nil, err
	}

	t.store(misses, beam)

	for _, j := range jobs {
		r := &results[j.text]
		r.Sentences = append(r.Sentences, j.result)
	}
	for i := range results {
		finish(&results[i])
	}
	return results, nil
}

// prepare normalizes, routes and pre-tokenizes every text.
func (t *Translator) prepare(texts []string, opts Options) ([]Result, []*job, error) {
	if len(texts) == 0 {
		return nil, nil, ErrEmptyInput
	}
	langs := t.model.Languages()

	fixedSrc, fixedTgt := opts.From, opts.To
	switch {
	case fixedSrc != "" && fixedTgt == "":
		fixedTgt = otherLanguage(langs, fixedSrc)
	case fixedSrc == "" && fixedTgt != "":
		fixedSrc = otherLanguage(langs, fixedTgt)
	}
	if fixedSrc != "" {
		if _, err := t.model.Pair(fixedSrc, fixedTgt); err != nil {
			return nil, nil, err
		}
	}

	results := make([]Result, len(texts))
	perText := make([][]*job, len(texts))
	parallel.For(len(texts), func(i int) {
		src, tgt := fixedSrc, fixedTgt
		if src == "" {
			src, tgt = textproc.DetectDirection(texts[i], langs[0], langs[1])
		}
		results[i].From, results[i].To = src, tgt
		for _, sentence := range t.cfg.Text.Split(texts[i]) {
			perText[i] = append(perText[i], &job{
				text:   i,
				src:    src,
				tgt:    tgt,
				source: sentence,
				tokens: t.tokenizer.Tokenize(sentence),
			})
		}
	}, t.cfg.Service.Parallel)

	var jobs []*job
	for _, js := range perText {
		jobs = append(jobs, js...)
	}
	return results, jobs, nil
}

// otherLanguage returns the first language of langs that is not lang, or an
// empty string.
func otherLanguage(langs []string, lang string) string {
	for _, l := range langs {
		if l != lang {
			return l
		}
	}
	return ""
}

// lookup serves jobs from the cache and the translation memory and returns
// the rest.
func (t *Translator) lookup(jobs []*job, beam int) []*job {
	var misses []*job
	cacheHits, memoryHits := 0, 0
	for _, j := range jobs {
		if t.cache != nil {
			if v, ok := t.cache.Get(j.cacheKey(beam)); ok {
				j.result = v.(SentenceResult)
				j.result.Cached = true
				j.done = true
				cacheHits++
				continue
			}
		}
		if t.memory != nil {
			e, err := t.memory.Get(memory.Bucket(j.src, j.tgt, beam), j.source)
			switch {
			case err == nil:
				j.result = SentenceResult{Source: j.source, Text: e.Text, Score: e.Score, Cached: true}
				j.done = true
				memoryHits++
				if t.cache != nil {
					t.cache.Add(j.cacheKey(beam), j.result)
				}
				continue
			case !errors.Is(err, memory.ErrNotFound):
				t.logger.Warn("translation memory lookup failed", "error", err)
			}
		}
		misses = append(misses, j)
	}
	if cacheHits > 0 || memoryHits > 0 {
		t.logger.Info("served without decoding", "cache", cacheHits, "memory", memoryHits)
	}
	return misses
}

// plan groups jobs by direction into decode units: batches of at most
// BatchSize for greedy decoding, single sentences for beam search.
func (t *Translator) plan(jobs []*job, beam int) []unit {
	byDir := make(map[string]*unit)
	var order []string
	for _, j := range jobs {
		key := j.src + "-" + j.tgt
		u, ok := byDir[key]
		if !ok {
			u = &unit{src: j.src, tgt: j.tgt}
			byDir[key] = u
			order = append(order, key)
		}
		u.jobs = append(u.jobs, j)
	}

	size := t.cfg.Service.BatchSize
	if beam > 1 {
		size = 1
	}
	var units []unit
	for _, key := range order {
		u := byDir[key]
		for _, r := range batch.Chunk(len(u.jobs), size) {
			units = append(units, unit{src: u.src, tgt: u.tgt, jobs: u.jobs[r[0]:r[1]]})
		}
	}
	return units
}

// decode translates one unit and records its results on the jobs.
func (t *Translator) decode(u unit, beam int) error {
	d, err := t.direction(u.src, u.tgt, beam)
	if err != nil {
		return err
	}

	var out []reconstruct.Sentence
	if beam > 1 {
		for _, j := range u.jobs {
			out = append(out, d.TranslateBeam(j.tokens)[0])
		}
	} else {
		sentences := make([][]string, len(u.jobs))
		for i, j := range u.jobs {
			sentences[i] = j.tokens
		}
		out = d.Translate(sentences)
	}

	for i, j := range u.jobs {
		j.result = SentenceResult{
			Source:  j.source,
			Text:    out[i].Text,
			Tokens:  out[i].Tokens,
			Markers: out[i].Markers,
			Score:   out[i].Score,
		}
		j.done = true
	}
	return nil
}

// store records freshly decoded sentences in the cache and the memory.
func (t *Translator) store(jobs []*job, beam int) {
	for _, j := range jobs {
		if !j.done {
			continue
		}
		if t.cache != nil {
			t.cache.Add(j.cacheKey(beam), j.result)
		}
		if t.memory != nil {
			bucket := memory.Bucket(j.src, j.tgt, beam)
			if err := t.memory.Put(bucket, j.source, memory.Entry{Text: j.result.Text, Score: j.result.Score}); err != nil {
				t.logger.Warn("translation memory store failed", "error", err)
			}
		}
	}
}

// finish joins the sentences of a result.
func finish(r *Result) {
	if len(r.Sentences) == 0 {
		return
	}
	parts := make([]string, 0, len(r.Sentences))
	total := 0.0
	for _, s := range r.Sentences {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
		total += s.Score
	}
	r.Text = strings.Join(parts, " ")
	r.Score = total / float64(len(r.Sentences))
}
