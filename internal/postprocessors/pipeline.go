// Package postprocessors turns cleaned events into index documents.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// Pipeline chains multiple DocumentProcessors and runs them in order.
type Pipeline struct {
	processors []driven.DocumentProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.DocumentProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the record through all processors in order.
// The first processor receives nil documents and should create them.
// Subsequent processors receive and may modify the documents.
func (p *Pipeline) Process(ctx context.Context, rec domain.EventRecord) ([]domain.EventDocument, error) {
	var docs []domain.EventDocument

	for _, processor := range p.processors {
		var err error
		docs, err = processor.Process(ctx, rec, docs)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return docs, nil
}

// ProcessAll runs every record through the pipeline and concatenates
// the documents, keeping record order.
func (p *Pipeline) ProcessAll(ctx context.Context, records []domain.EventRecord) ([]domain.EventDocument, error) {
	var all []domain.EventDocument
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		docs, err := p.Process(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", rec.UID, err)
		}
		all = append(all, docs...)
	}
	return all, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.DocumentProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
