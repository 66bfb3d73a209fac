package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Parameter is a named weight matrix of a layer.
//
// Example:
//
//	weight := nn.NewParameter("gate.weight", mat.NewDense(4, 4, nil))
//	w := weight.Value()
type Parameter struct {
	name  string     // Parameter name (e.g., "weight", "bias")
	value *mat.Dense // The weight matrix
}

// NewParameter creates a new named parameter around an initialized matrix.
func NewParameter(name string, value *mat.Dense) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter matrix.
func (p *Parameter) Value() *mat.Dense {
	return p.value
}

// NumElements returns the number of scalars in the parameter.
func (p *Parameter) NumElements() int {
	r, c := p.value.Dims()
	return r * c
}

// Set replaces the parameter values with a copy of v.
//
// Returns an error if the shapes differ.
func (p *Parameter) Set(v mat.Matrix) error {
	r, c := p.value.Dims()
	vr, vc := v.Dims()
	if r != vr || c != vc {
		return fmt.Errorf("%s shape mismatch: expected [%d %d], got [%d %d]", p.name, r, c, vr, vc)
	}
	p.value.Copy(v)
	return nil
}
