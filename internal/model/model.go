// Package model assembles the language-pair translation network.
//
// One vocabulary and one embedding table are shared by all languages, as are
// the word and marker projections. Every language owns a fusion encoder, a
// bidirectional encoder and an attention decoder, so a direction src->tgt
// reads with src's fusion and encoder and writes with tgt's fusion and
// decoder.
package model

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/born-ml/segnmt/internal/fusion"
	"github.com/born-ml/segnmt/internal/generate"
	"github.com/born-ml/segnmt/internal/nn"
	"github.com/born-ml/segnmt/internal/segment"
	"github.com/born-ml/segnmt/internal/seq2seq"
	"github.com/born-ml/segnmt/internal/tokenizer"
)

// Errors returned by the model.
var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrInvalidConfig   = errors.New("invalid model config")
)

// Config holds the sizes of the network.
type Config struct {
	Languages    []string `yaml:"languages"`
	EmbedDim     int      `yaml:"embed_dim"`
	FusionHidden int      `yaml:"fusion_hidden"`
	HiddenSize   int      `yaml:"hidden_size"`
	Layers       int      `yaml:"layers"`
	Dropout      float64  `yaml:"dropout"`
	Seed         int64    `yaml:"seed"`
}

// DefaultConfig returns an English-Korean configuration.
func DefaultConfig() Config {
	return Config{
		Languages:    []string{"en", "ko"},
		EmbedDim:     64,
		FusionHidden: 64,
		HiddenSize:   128,
		Layers:       2,
		Dropout:      0.2,
		Seed:         1,
	}
}

// Validate checks that the configuration describes a buildable network.
func (c Config) Validate() error {
	switch {
	case len(c.Languages) < 2:
		return fmt.Errorf("%w: need at least two languages, got %d", ErrInvalidConfig, len(c.Languages))
	case c.EmbedDim < 1 || c.FusionHidden < 1 || c.HiddenSize < 1:
		return fmt.Errorf("%w: sizes must be positive", ErrInvalidConfig)
	case c.Layers < 1:
		return fmt.Errorf("%w: Layers must be positive, got %d", ErrInvalidConfig, c.Layers)
	case c.Dropout < 0 || c.Dropout >= 1:
		return fmt.Errorf("%w: Dropout must be in [0, 1), got %g", ErrInvalidConfig, c.Dropout)
	}
	seen := make(map[string]bool, len(c.Languages))
	for _, lang := range c.Languages {
		if lang == "" || seen[lang] {
			return fmt.Errorf("%w: language %q is empty or repeated", ErrInvalidConfig, lang)
		}
		seen[lang] = true
	}
	return nil
}

// Stack holds the components owned by one language.
type Stack struct {
	Fusion  *fusion.Encoder
	Encoder *seq2seq.BiLSTMEncoder
	Decoder *seq2seq.AttentionDecoder
}

// NamedParameter is a parameter with its checkpoint name.
type NamedParameter struct {
	Name  string
	Param *nn.Parameter
}

// Model is the multi-language translation network.
type Model struct {
	config     Config
	vocab      *tokenizer.Vocab
	embedding  *nn.Embedding
	stacks     map[string]*Stack
	wordHead   *nn.Linear
	markerHead *nn.Linear
	logger     *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger shared by the model's directions.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// New builds a model over vocab with weights drawn from cfg.Seed. The model
// starts in evaluation mode.
func New(cfg Config, vocab *tokenizer.Vocab, opts ...Option) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // G404: weight init does not need crypto randomness
	m := &Model{
		config:    cfg,
		vocab:     vocab,
		embedding: nn.NewEmbedding(vocab.Len(), cfg.EmbedDim, rng),
		stacks:    make(map[string]*Stack, len(cfg.Languages)),
	}
	for _, lang := range cfg.Languages {
		enc := seq2seq.NewBiLSTMEncoder(cfg.EmbedDim, cfg.HiddenSize, cfg.Layers, rng)
		m.stacks[lang] = &Stack{
			Fusion: fusion.New(lang, fusion.Config{
				EmbedDim:   cfg.EmbedDim,
				HiddenSize: cfg.FusionHidden,
				Dropout:    cfg.Dropout,
			}, rng),
			Encoder: enc,
			Decoder: seq2seq.NewAttentionDecoder(cfg.EmbedDim, cfg.HiddenSize, enc.Width(), cfg.Layers, cfg.Dropout, rng),
		}
	}
	m.wordHead = nn.NewLinear(cfg.HiddenSize, vocab.Len(), rng, nn.WithName("words"))
	m.markerHead = nn.NewLinear(cfg.HiddenSize, segment.NumMarkers, rng, nn.WithName("markers"))

	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m.Train(false)
	return m, nil
}

// Config returns the model configuration.
func (m *Model) Config() Config {
	return m.config
}

// Vocab returns the shared vocabulary.
func (m *Model) Vocab() *tokenizer.Vocab {
	return m.vocab
}

// Languages returns the languages in configuration order.
func (m *Model) Languages() []string {
	return append([]string(nil), m.config.Languages...)
}

// Stack returns the components of lang.
func (m *Model) Stack(lang string) (*Stack, error) {
	s, ok := m.stacks[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}
	return s, nil
}

// Train switches every dropout layer between training and evaluation mode.
func (m *Model) Train(training bool) {
	for _, s := range m.stacks {
		s.Fusion.Train(training)
		s.Decoder.Train(training)
	}
}

// NamedParameters returns every parameter with a unique, stable name.
func (m *Model) NamedParameters() []NamedParameter {
	var out []NamedParameter
	add := func(prefix string, params []*nn.Parameter) {
		for i, p := range params {
			out = append(out, NamedParameter{
				Name:  fmt.Sprintf("%s.%d.%s", prefix, i, p.Name()),
				Param: p,
			})
		}
	}
	add("shared.embedding", m.embedding.Parameters())
	add("shared.words", m.wordHead.Parameters())
	add("shared.markers", m.markerHead.Parameters())
	for _, lang := range m.config.Languages {
		s := m.stacks[lang]
		add(lang+".fusion", s.Fusion.Parameters())
		add(lang+".encoder", s.Encoder.Parameters())
		add(lang+".decoder", s.Decoder.Parameters())
	}
	return out
}

// NumParameters returns the total number of weights.
func (m *Model) NumParameters() int {
	total := 0
	for _, np := range m.NamedParameters() {
		total += np.Param.NumElements()
	}
	return total
}

// Pair is the set of components that translates from Source to Target.
type Pair struct {
	Source string
	Target string

	Embedding *nn.Embedding
	Fusion    *fusion.Encoder
	Encoder   *seq2seq.BiLSTMEncoder

	// Decode holds the target side driven by the generator.
	Decode generate.Target
}

// Pair returns the components of the direction src->tgt.
func (m *Model) Pair(src, tgt string) (*Pair, error) {
	if src == tgt {
		return nil, fmt.Errorf("%w: %s->%s is not a translation pair", ErrUnknownLanguage, src, tgt)
	}
	source, err := m.Stack(src)
	if err != nil {
		return nil, err
	}
	target, err := m.Stack(tgt)
	if err != nil {
		return nil, err
	}
	return &Pair{
		Source:    src,
		Target:    tgt,
		Embedding: m.embedding,
		Fusion:    source.Fusion,
		Encoder:   source.Encoder,
		Decode: generate.Target{
			Embedding:  m.embedding,
			Fusion:     target.Fusion,
			Decoder:    target.Decoder,
			WordHead:   m.wordHead,
			MarkerHead: m.markerHead,
		},
	}, nil
}
