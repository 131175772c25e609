package driven

import "context"

// VectorIndex provides nearest-neighbour search over raw vectors.
type VectorIndex interface {
	// Search finds the k nearest neighbours to the query vector,
	// closest first.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the vector size the index was built with.
	Dimensions() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched document id.
	ID string

	// Distance is the squared L2 distance to the query.
	Distance float64
}
