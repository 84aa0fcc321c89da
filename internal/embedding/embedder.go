// Package embedding turns normalized skill strings into fixed-size vectors.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations must be deterministic:
// the same text always yields the same vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	// ModelID identifies the vector space; vectors from different IDs are not comparable.
	ModelID() string
	Close() error
}
