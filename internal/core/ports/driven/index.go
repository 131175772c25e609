package driven

import (
	"context"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// EventIndex is the similarity index the retrieval core consumes.
// Search returns at most k candidates, distance ascending, and is
// deterministic for a fixed index state. A missing or corrupt index
// fails with domain.ErrIndexUnavailable, never with an empty result.
type EventIndex interface {
	Search(ctx context.Context, question string, k int) ([]domain.ScoredCandidate, error)
}

// IndexLoader opens the current index artifact.
// Each call returns a fresh handle reflecting the artifact on disk.
type IndexLoader interface {
	Load(ctx context.Context) (EventIndex, error)
}

// IndexBuilder replaces the index artifact.
// On success the artifact is fully replaced; on failure the previous
// artifact must remain untouched and loadable.
type IndexBuilder interface {
	Build(ctx context.Context) (domain.RebuildDetails, error)
}
