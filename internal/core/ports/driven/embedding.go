package driven

import "context"

// EmbeddingService turns text into vectors. Queries and chunks must go
// through the same model, so ModelName and Dimensions are checked against
// the index artifact before a search.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector size the configured model produces.
	Dimensions() int
	ModelName() string

	Ping(ctx context.Context) error
	Close() error
}
