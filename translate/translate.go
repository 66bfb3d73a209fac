// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package translate provides segmentation-aware neural machine translation.
//
// This package wraps the internal translation service and provides a clean
// public API.
//
// Example usage:
//
//	import "github.com/born-ml/segnmt/translate"
//
//	cfg, err := translate.LoadConfig("segnmt.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tr, err := translate.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tr.Close()
//
//	results, err := tr.Translate(ctx, []string{"Hello world!"}, translate.Options{})
//	fmt.Println(results[0].Text)
package translate

import (
	"log/slog"

	"github.com/born-ml/segnmt/internal/config"
	"github.com/born-ml/segnmt/internal/translate"
)

// Configuration

// Config is the complete service configuration: model sizes, decoding,
// service resources and text preparation.
type Config = config.Config

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig reads a YAML configuration file. Fields left out keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// ParseConfig decodes YAML configuration data.
func ParseConfig(data []byte) (Config, error) {
	return config.Parse(data)
}

// Translation

// Translator translates texts between the languages of one model.
type Translator = translate.Translator

// Options selects the direction and search of one request.
type Options = translate.Options

// Result is the translation of one input text.
type Result = translate.Result

// SentenceResult is the translation of one sentence.
type SentenceResult = translate.SentenceResult

// Option configures a Translator.
type Option = translate.Option

// Errors returned by Translate and New.
var (
	ErrEmptyInput      = translate.ErrEmptyInput
	ErrUnknownLanguage = translate.ErrUnknownLanguage
	ErrNoVocabulary    = translate.ErrNoVocabulary
)

// New creates a Translator from cfg.
func New(cfg Config, opts ...Option) (*Translator, error) {
	return translate.New(cfg, opts...)
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return translate.WithLogger(l)
}
