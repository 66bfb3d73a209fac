package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T (+ b)
// where:
//   - x is the input with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the optional bias vector with shape [out_features]
//   - y is the output with shape [batch_size, out_features]
//
// Projections of the translation model carry no bias, so bias is opt-in.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	gate := nn.NewLinear(256, 256, rng)
//	out := gate.Forward(x) // [batch, 256]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [1, out_features], nil without bias
}

// LinearOption configures a Linear layer.
type LinearOption func(*linearOptions)

type linearOptions struct {
	bias bool
	name string
}

// WithBias adds a zero-initialized bias vector to the layer.
func WithBias() LinearOption {
	return func(o *linearOptions) {
		o.bias = true
	}
}

// WithName sets the parameter name prefix of the layer.
func WithName(name string) LinearOption {
	return func(o *linearOptions) {
		o.name = name
	}
}

// NewLinear creates a new Linear layer.
//
// Weights are initialized using Xavier/Glorot uniform distribution.
// Biases, when enabled, are initialized to zeros.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand, opts ...LinearOption) *Linear {
	options := &linearOptions{name: "linear"}
	for _, opt := range opts {
		opt(options)
	}

	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight: NewParameter(options.name+".weight",
			Xavier(inFeatures, outFeatures, outFeatures, inFeatures, rng)),
	}
	if options.bias {
		l.bias = NewParameter(options.name+".bias", Zeros(1, outFeatures))
	}
	return l
}

// Forward computes the output of the linear layer.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
//
// Panics if the input feature count does not match the layer.
func (l *Linear) Forward(input *mat.Dense) *mat.Dense {
	rows, cols := input.Dims()
	if cols != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, cols))
	}

	out := mat.NewDense(rows, l.outFeatures, nil)
	out.Mul(input, l.weight.Value().T())

	if l.bias != nil {
		b := l.bias.Value().RawRowView(0)
		for i := 0; i < rows; i++ {
			floats.Add(out.RawRowView(i), b)
		}
	}

	return out
}

// Parameters returns the weights of this layer.
//
// Returns [weight, bias] if bias is present, otherwise [weight].
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
