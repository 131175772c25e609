package driven

import (
	"context"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// DocumentProcessor turns one cleaned event into index documents.
// Processors run in a pipeline: the first receives nil documents and
// creates them from the record, later ones may rewrite or drop them.
type DocumentProcessor interface {
	// Name identifies the processor in configuration and errors.
	Name() string

	// Process returns the documents for rec.
	Process(ctx context.Context, rec domain.EventRecord, docs []domain.EventDocument) ([]domain.EventDocument, error)
}
