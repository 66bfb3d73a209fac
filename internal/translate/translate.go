// Package translate is the translation service: it turns free text into
// translated text using the model, an in-process cache and an optional
// persistent translation memory.
//
// A request flows through these stages:
//  1. normalize every text, detect its direction and split it into sentences
//  2. pre-tokenize sentences into marker-annotated tokens
//  3. serve sentences from the cache, then from the translation memory
//  4. batch the remaining sentences per direction and decode the batches on
//     the worker pool
//  5. store new translations and join the sentences of every text
package translate

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/born-ml/segnmt/internal/config"
	"github.com/born-ml/segnmt/internal/memory"
	"github.com/born-ml/segnmt/internal/model"
	"github.com/born-ml/segnmt/internal/tokenizer"
)

// Errors returned by the service.
var (
	ErrEmptyInput      = errors.New("empty input")
	ErrUnknownLanguage = model.ErrUnknownLanguage
	ErrNoVocabulary    = errors.New("no vocabulary configured")
)

// Translator translates texts between the languages of one model. It is safe
// for concurrent use.
type Translator struct {
	cfg       config.Config
	model     *model.Model
	tokenizer *tokenizer.WordTokenizer
	cache     *lru.Cache
	memory    *memory.Store
	ownMemory bool
	logger    *slog.Logger

	mu         sync.Mutex
	directions map[string]*model.Direction
}

// Option configures a Translator.
type Option func(*Translator)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = l
	}
}

// WithModel uses m instead of building a model from the configuration.
func WithModel(m *model.Model) Option {
	return func(t *Translator) {
		t.model = m
	}
}

// WithMemory uses an already open translation memory. The caller keeps
// ownership and closes it.
func WithMemory(s *memory.Store) Option {
	return func(t *Translator) {
		t.memory = s
	}
}

// New creates a Translator from cfg.
//
// Unless WithModel is given, the vocabulary is read from
// cfg.Service.VocabPath and weights from cfg.Service.WeightsPath when set.
// The translation memory at cfg.Service.MemoryPath is opened unless
// WithMemory is given.
func New(cfg config.Config, opts ...Option) (*Translator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Translator{
		cfg:        cfg,
		directions: make(map[string]*model.Direction),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if t.model == nil {
		m, err := loadModel(cfg, t.logger)
		if err != nil {
			return nil, err
		}
		t.model = m
	}
	t.tokenizer = tokenizer.NewWordTokenizer(t.model.Vocab())

	if cfg.Service.CacheSize > 0 {
		cache, err := lru.New(cfg.Service.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		t.cache = cache
	}

	if t.memory == nil && cfg.Service.MemoryPath != "" {
		store, err := memory.Open(cfg.Service.MemoryPath, memory.DefaultOptions())
		if err != nil {
			return nil, err
		}
		t.memory = store
		t.ownMemory = true
	}

	t.logger.Info("translator ready",
		"languages", t.model.Languages(),
		"parameters", t.model.NumParameters(),
		"cache", cfg.Service.CacheSize,
		"memory", t.memory != nil)
	return t, nil
}

func loadModel(cfg config.Config, logger *slog.Logger) (*model.Model, error) {
	if cfg.Service.VocabPath == "" {
		return nil, ErrNoVocabulary
	}
	vocab, err := tokenizer.LoadVocab(cfg.Service.VocabPath)
	if err != nil {
		return nil, err
	}
	m, err := model.New(cfg.Model, vocab, model.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if cfg.Service.WeightsPath != "" {
		if err := m.Load(cfg.Service.WeightsPath); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("no weights configured, using seeded initial weights", "seed", cfg.Model.Seed)
	}
	return m, nil
}

// Model returns the underlying model.
func (t *Translator) Model() *model.Model {
	return t.model
}

// Close releases the translation memory if the Translator opened it.
func (t *Translator) Close() error {
	if t.ownMemory && t.memory != nil {
		return t.memory.Close()
	}
	return nil
}

// direction returns the cached decoder for src->tgt with the given beam size.
func (t *Translator) direction(src, tgt string, beam int) (*model.Direction, error) {
	key := fmt.Sprintf("%s-%s/%d", src, tgt, beam)

	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.directions[key]; ok {
		return d, nil
	}
	dcfg := t.cfg.Decode
	dcfg.BeamSize = beam
	d, err := t.model.Direction(src, tgt, dcfg)
	if err != nil {
		return nil, err
	}
	t.directions[key] = d
	return d, nil
}
