// Package config loads the YAML configuration of the translation service.
//
// Example file:
//
//	model:
//	  languages: [en, ko]
//	  hidden_size: 256
//	decode:
//	  beam_size: 1
//	service:
//	  vocab: data/vocab.json
//	  weights: data/model.safetensors
//	  memory: data/memory.db
//
// Fields left out keep their defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/segnmt/internal/generate"
	"github.com/born-ml/segnmt/internal/model"
	"github.com/born-ml/segnmt/internal/parallel"
	"github.com/born-ml/segnmt/internal/textproc"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// ServiceConfig configures the translation service around the model.
type ServiceConfig struct {
	// VocabPath is the JSON vocabulary file.
	VocabPath string `yaml:"vocab"`

	// WeightsPath is the SafeTensors checkpoint. Empty keeps the seeded
	// initial weights.
	WeightsPath string `yaml:"weights"`

	// MemoryPath is the translation memory database. Empty disables it.
	MemoryPath string `yaml:"memory"`

	// CacheSize is the number of sentences kept in the in-process cache.
	// Zero disables the cache.
	CacheSize int `yaml:"cache_size"`

	// BatchSize is the number of sentences decoded together.
	BatchSize int `yaml:"batch_size"`

	Parallel parallel.Config `yaml:"parallel"`
}

// Config is the complete service configuration.
type Config struct {
	Model   model.Config          `yaml:"model"`
	Decode  generate.DecodeConfig `yaml:"decode"`
	Service ServiceConfig         `yaml:"service"`
	Text    textproc.Config       `yaml:"text"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Model:  model.DefaultConfig(),
		Decode: generate.DefaultDecodeConfig(),
		Service: ServiceConfig{
			CacheSize: 1024,
			BatchSize: 32,
			Parallel:  parallel.DefaultConfig(),
		},
		Text: textproc.DefaultConfig(),
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	//nolint:gosec // G304: config path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("%w: model: %w", ErrInvalidConfig, err)
	}
	if err := c.Decode.Validate(); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrInvalidConfig, err)
	}
	if err := c.Text.Validate(); err != nil {
		return fmt.Errorf("%w: text: %w", ErrInvalidConfig, err)
	}
	switch {
	case c.Service.CacheSize < 0:
		return fmt.Errorf("%w: service: cache_size must not be negative, got %d", ErrInvalidConfig, c.Service.CacheSize)
	case c.Service.BatchSize < 1:
		return fmt.Errorf("%w: service: batch_size must be positive, got %d", ErrInvalidConfig, c.Service.BatchSize)
	}
	return nil
}
