package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force cosine index. Stored vectors are kept unit length so a
// query costs one inner product per entry.
type MemoryIndex struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewMemoryIndex creates an empty index of the given dimension.
func NewMemoryIndex(dimensions int) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{dimensions: dimensions}, nil
}

// Add appends vectors with the given IDs. Zero vectors are stored as-is and never
// score above 0.
func (m *MemoryIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	for i := range vectors {
		if len(vectors[i]) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), m.dimensions)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		m.ids = append(m.ids, id)
		m.vectors = append(m.vectors, unit(vectors[i]))
	}
	return nil
}

func unit(v []float32) []float32 {
	out := make([]float32, len(v))
	n := L2Norm(v)
	if n == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

func (m *MemoryIndex) prepare(query []float32) ([]float32, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	return unit(query), nil
}

// Nearest scans every stored vector and returns the best cosine match. Equal scores
// resolve to the earliest inserted vector.
func (m *MemoryIndex) Nearest(ctx context.Context, query []float32) (VectorResult, bool, error) {
	q, err := m.prepare(query)
	if err != nil {
		return VectorResult{}, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.ids) == 0 {
		return VectorResult{}, false, nil
	}
	best := VectorResult{ID: m.ids[0], Position: 0, Score: clamp(InnerProduct(q, m.vectors[0]))}
	for i := 1; i < len(m.vectors); i++ {
		if s := clamp(InnerProduct(q, m.vectors[i])); s > best.Score {
			best = VectorResult{ID: m.ids[i], Position: i, Score: s}
		}
	}
	return best, true, nil
}

// Search returns the top-k vectors by cosine similarity, ties in insertion order.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	q, err := m.prepare(query)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.ids) == 0 {
		return nil, nil
	}
	scores := make([]*VectorResult, len(m.ids))
	for i, vec := range m.vectors {
		scores[i] = &VectorResult{ID: m.ids[i], Position: i, Score: clamp(InnerProduct(q, vec))}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k], nil
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Dimensions returns the vector dimension.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Close is a no-op for MemoryIndex.
func (m *MemoryIndex) Close() error {
	return nil
}
