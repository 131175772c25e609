// Package flat provides an exact in-memory vector index.
//
// Every search scans all stored vectors and ranks them by squared
// Euclidean distance. Ties keep insertion order, so results are
// deterministic for a fixed index state.
package flat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an exact squared-L2 nearest-neighbour index.
type Index struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	vectors   [][]float32
	positions map[string]int
}

// New creates an empty index for vectors of the given size.
func New(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, errors.New("flat: dimension must be positive")
	}
	return &Index{
		dimension: dimension,
		positions: make(map[string]int),
	}, nil
}

// Add inserts a vector for the given id.
// Re-adding an id replaces its vector in place.
func (idx *Index) Add(id string, embedding []float32) error {
	if len(embedding) != idx.dimension {
		return fmt.Errorf("flat: embedding dimension mismatch: got %d, want %d", len(embedding), idx.dimension)
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if pos, ok := idx.positions[id]; ok {
		idx.vectors[pos] = vec
		return nil
	}
	idx.positions[id] = len(idx.ids)
	idx.ids = append(idx.ids, id)
	idx.vectors = append(idx.vectors, vec)
	return nil
}

// Search returns the k nearest ids to query, closest first.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != idx.dimension {
		return nil, fmt.Errorf("flat: query dimension mismatch: got %d, want %d", len(query), idx.dimension)
	}
	if k <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]driven.VectorHit, len(idx.ids))
	for i, vec := range idx.vectors {
		hits[i] = driven.VectorHit{ID: idx.ids[i], Distance: SquaredL2(query, vec)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

// Dimensions returns the vector size.
func (idx *Index) Dimensions() int {
	return idx.dimension
}

// SquaredL2 returns the squared Euclidean distance between a and b.
// Both slices must have the same length.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
