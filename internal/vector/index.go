// Package vector provides the in-memory cosine index behind skill lookup.
package vector

import "context"

// VectorIndex stores vectors by ID and answers similarity queries.
type VectorIndex interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	// Nearest returns the single best hit; ok is false when the index is empty.
	Nearest(ctx context.Context, query []float32) (result VectorResult, ok bool, err error)
	Size() int
	Close() error
}

// VectorResult is a single hit. Position is the insertion order of the stored vector.
type VectorResult struct {
	ID       string
	Position int
	Score    float64 // cosine similarity in [-1, 1]
}
