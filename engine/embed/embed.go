// Package embed maps text to fixed-length vectors. The vector collection is
// provisioned with a fixed dimensionality, so every Embedder must report the
// dimension it produces and stick to it.
package embed

import "context"

// DefaultDimensions matches the provisioned collection size.
const DefaultDimensions = 768

// Embedder turns a text string into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Null is the placeholder embedding strategy: every input maps to the zero
// vector. It keeps the collection schema stable until a real model is wired
// in behind the same interface.
type Null struct {
	dims int
}

// NewNull creates a Null embedder of the given dimensionality.
func NewNull(dims int) *Null {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Null{dims: dims}
}

// Embed returns an all-zero vector regardless of input.
func (n *Null) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, n.dims), nil
}

// Dimensions returns the configured vector length.
func (n *Null) Dimensions() int { return n.dims }
