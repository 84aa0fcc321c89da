// Package storage persists surface-form embeddings so restarts skip recomputing them.
package storage

import "context"

// VectorCache stores vectors keyed by (model id, text).
type VectorCache interface {
	// Get returns the cached vectors for texts; missing texts are absent from the map.
	Get(ctx context.Context, modelID string, texts []string) (map[string][]float32, error)
	Put(ctx context.Context, modelID string, vectors map[string][]float32) error
	Stats(ctx context.Context) (CacheStats, error)
	Close() error
}

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Entries   int64 `json:"entries"`
	Models    int64 `json:"models"`
	DiskBytes int64 `json:"disk_bytes"`
}
