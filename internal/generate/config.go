package generate

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by DecodeConfig.Validate.
var ErrInvalidConfig = errors.New("invalid decode config")

// DecodeConfig configures incremental decoding.
type DecodeConfig struct {
	// MaxSteps caps the number of decoding steps. A sentence still generating
	// at the cap is completed with whatever it holds.
	MaxSteps int `yaml:"max_steps"`

	// BeamSize is the number of hypotheses kept by beam search.
	BeamSize int `yaml:"beam_size"`

	// MarkerWeight scales the marker log-probability added to the word
	// log-probability at every step.
	MarkerWeight float64 `yaml:"marker_weight"`

	// LengthAlpha is the exponent of the length normalization.
	LengthAlpha float64 `yaml:"length_alpha"`

	// SoftLength is the constant in ((SoftLength+len)/(SoftLength+1))^LengthAlpha.
	// It must be positive so that an empty hypothesis has a finite rank.
	SoftLength float64 `yaml:"soft_length"`

	// CoverageWeight scales the attention coverage term of the beam ranking.
	CoverageWeight float64 `yaml:"coverage_weight"`
}

// DefaultDecodeConfig returns the calibrated defaults of the translation
// models.
func DefaultDecodeConfig() DecodeConfig {
	return DecodeConfig{
		MaxSteps:       70,
		BeamSize:       5,
		MarkerWeight:   1.0,
		LengthAlpha:    1.0,
		SoftLength:     0.1,
		CoverageWeight: 0.9,
	}
}

// Validate checks that the configuration can drive a decode.
func (c DecodeConfig) Validate() error {
	switch {
	case c.MaxSteps < 1:
		return fmt.Errorf("%w: MaxSteps must be positive, got %d", ErrInvalidConfig, c.MaxSteps)
	case c.BeamSize < 1:
		return fmt.Errorf("%w: BeamSize must be positive, got %d", ErrInvalidConfig, c.BeamSize)
	case c.SoftLength <= 0:
		return fmt.Errorf("%w: SoftLength must be positive, got %g", ErrInvalidConfig, c.SoftLength)
	}
	return nil
}
