// Package vectorstore joins an embedding model with a vector index to
// search event documents by question text.
package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// Ensure EventIndex implements the interface.
var _ driven.EventIndex = (*EventIndex)(nil)

// EventIndex answers question searches over a fixed set of documents.
type EventIndex struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorIndex
	docs     map[string]domain.EventDocument
}

// NewEventIndex creates an EventIndex. docs maps vector ids to documents.
func NewEventIndex(embedder driven.EmbeddingService, vectors driven.VectorIndex, docs map[string]domain.EventDocument) *EventIndex {
	return &EventIndex{
		embedder: embedder,
		vectors:  vectors,
		docs:     docs,
	}
}

// Search embeds the question and returns up to k candidates, closest first.
func (e *EventIndex) Search(ctx context.Context, question string, k int) ([]domain.ScoredCandidate, error) {
	if e.embedder == nil || e.vectors == nil {
		return nil, fmt.Errorf("%w: index is not loaded", domain.ErrIndexUnavailable)
	}

	query, err := e.embedder.Embed(ctx, question)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := e.vectors.Search(ctx, query, k)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	candidates := make([]domain.ScoredCandidate, 0, len(hits))
	for _, hit := range hits {
		doc, ok := e.docs[hit.ID]
		if !ok {
			return nil, fmt.Errorf("%w: vector %q has no document", domain.ErrIndexUnavailable, hit.ID)
		}
		candidates = append(candidates, domain.ScoredCandidate{Document: doc, Distance: hit.Distance})
	}
	return candidates, nil
}

// Len returns the number of indexed documents.
func (e *EventIndex) Len() int {
	if e.vectors == nil {
		return 0
	}
	return e.vectors.Len()
}

// ModelName returns the embedding model the index answers with.
func (e *EventIndex) ModelName() string {
	if e.embedder == nil {
		return ""
	}
	return e.embedder.ModelName()
}
