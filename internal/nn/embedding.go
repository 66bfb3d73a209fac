package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Embedding is a lookup table that maps token ids to dense vectors.
//
// Architecture:
//   - Weight: [NumEmbed, EmbedDim]
//   - Forward: ids [n] -> embeddings [n, EmbedDim]
//
// Example:
//
//	embed := nn.NewEmbedding(10000, 256, rng)
//	x := embed.Forward([]int{1, 2, 3}) // [3, 256]
type Embedding struct {
	Weight   *Parameter // Embedding weight matrix [NumEmbed, EmbedDim]
	NumEmbed int        // Number of embeddings (vocabulary size)
	EmbedDim int        // Embedding dimension (vector size)
}

// NewEmbedding creates a new Embedding layer.
//
// The embedding weights are initialized from N(0, 0.1^2). Use
// NewEmbeddingWithWeight for pretrained or hand-built tables.
func NewEmbedding(numEmbeddings, embeddingDim int, rng *rand.Rand) *Embedding {
	return NewEmbeddingWithWeight(Randn(numEmbeddings, embeddingDim, 0.1, rng))
}

// NewEmbeddingWithWeight creates an Embedding layer around an existing table.
func NewEmbeddingWithWeight(weight *mat.Dense) *Embedding {
	r, c := weight.Dims()
	return &Embedding{
		Weight:   NewParameter("embedding.weight", weight),
		NumEmbed: r,
		EmbedDim: c,
	}
}

// Forward performs embedding lookup.
//
// Returns a new [len(ids), EmbedDim] matrix; the table is never aliased.
//
// Panics if any id is out of bounds [0, NumEmbed) or ids is empty.
func (e *Embedding) Forward(ids []int) *mat.Dense {
	if len(ids) == 0 {
		panic("Embedding.Forward: empty id list")
	}
	w := e.Weight.Value()
	out := mat.NewDense(len(ids), e.EmbedDim, nil)
	for i, id := range ids {
		if id < 0 || id >= e.NumEmbed {
			panic(fmt.Sprintf("Embedding.Forward: id %d out of range [0, %d)", id, e.NumEmbed))
		}
		copy(out.RawRowView(i), w.RawRowView(id))
	}
	return out
}

// Parameters returns the embedding table.
func (e *Embedding) Parameters() []*Parameter {
	return []*Parameter{e.Weight}
}
