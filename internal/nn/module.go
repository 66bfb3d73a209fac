// Package nn implements the dense neural network building blocks used by the
// translation engine.
//
// This package provides:
//   - Module interface: Base interface for row-batched layers
//   - Parameter: Named weight matrices
//   - Linear: Fully connected layer (optional bias)
//   - Embedding: Token id -> vector lookup table
//   - LSTMCell: Single recurrent step
//   - Activations, dropout and row helpers (log-softmax, arg-max, row selection)
//
// Every matrix is a gonum *mat.Dense laid out as [batch, features]: one row per
// sentence or hypothesis. No layer in this package mixes rows, so rows may be
// dropped or reordered between calls.
package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Module is the base interface for row-batched layers.
//
// Forward maps an input of shape [batch, in] to an output of shape
// [batch, out]. Parameters lists the weights owned by the module.
type Module interface {
	// Forward computes the output of the module for a batch of rows.
	Forward(input *mat.Dense) *mat.Dense

	// Parameters returns all weights of this module.
	// Returns an empty slice for modules without weights.
	Parameters() []*Parameter
}

// CountParameters returns the total number of scalar weights held by modules.
func CountParameters(modules ...interface{ Parameters() []*Parameter }) int {
	total := 0
	for _, m := range modules {
		for _, p := range m.Parameters() {
			total += p.NumElements()
		}
	}
	return total
}
