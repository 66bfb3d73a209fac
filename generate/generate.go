// Package generate exposes the decoding configuration of segnmt.
//
// This package wraps the internal generate implementation: a batched
// incremental decoder with greedy and beam search over words and
// segment markers.
//
// Example usage:
//
//	import "github.com/born-ml/segnmt/generate"
//
//	cfg := generate.DefaultDecodeConfig()
//	cfg.BeamSize = 1 // greedy
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package generate

import (
	"github.com/born-ml/segnmt/internal/generate"
)

// DecodeConfig configures incremental decoding.
//
// Parameters:
//   - MaxSteps: Step cap; a sentence still generating is completed as is
//   - BeamSize: Hypotheses kept by beam search (1 = greedy)
//   - MarkerWeight: Scale of the marker log-probability in every step score
//   - LengthAlpha, SoftLength: Length normalization ((Soft+len)/(Soft+1))^Alpha
//   - CoverageWeight: Scale of the attention coverage term of the ranking
type DecodeConfig = generate.DecodeConfig

// DefaultDecodeConfig returns the calibrated defaults.
//
// Defaults:
//   - MaxSteps: 70
//   - BeamSize: 5
//   - MarkerWeight: 1.0
//   - LengthAlpha: 1.0
//   - SoftLength: 0.1
//   - CoverageWeight: 0.9
func DefaultDecodeConfig() DecodeConfig {
	return generate.DefaultDecodeConfig()
}

// ErrInvalidConfig is returned by DecodeConfig.Validate.
var ErrInvalidConfig = generate.ErrInvalidConfig
