package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dropout zeroes elements with probability Rate during training and scales
// the survivors by 1/(1-Rate). In evaluation mode it is the identity.
//
// Decoding always runs in evaluation mode; the layer exists so that model
// definitions carry the same shape as their training counterparts.
type Dropout struct {
	Rate     float64
	training bool
	rng      *rand.Rand
}

// NewDropout creates a dropout layer in evaluation mode.
func NewDropout(rate float64, rng *rand.Rand) *Dropout {
	return &Dropout{Rate: rate, rng: rng}
}

// Train switches the layer between training and evaluation mode.
func (d *Dropout) Train(training bool) {
	d.training = training
}

// Training reports whether the layer is in training mode.
func (d *Dropout) Training() bool {
	return d.training
}

// Forward applies dropout. The input is returned unchanged in evaluation mode.
func (d *Dropout) Forward(input *mat.Dense) *mat.Dense {
	if !d.training || d.Rate <= 0 {
		return input
	}
	keep := 1.0 - d.Rate
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		if d.rng.Float64() < d.Rate {
			return 0
		}
		return v / keep
	}, input)
	return &out
}

// Parameters returns nil (dropout has no weights).
func (d *Dropout) Parameters() []*Parameter {
	return nil
}
