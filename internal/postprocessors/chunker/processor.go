// Package chunker splits event documents into overlapping chunks.
package chunker

import (
	"context"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 800

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 120

// Ensure Processor implements the interface.
var _ driven.DocumentProcessor = (*Processor)(nil)

// Processor splits an event's document text into chunks.
type Processor struct {
	chunkSize  int
	overlap    int
	agendaSlug string
	splitter   *Splitter
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithAgendaSlug sets the agenda recorded in chunk metadata.
func WithAgendaSlug(slug string) Option {
	return func(p *Processor) {
		p.agendaSlug = slug
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	p.splitter = NewSplitter(p.chunkSize, p.overlap, DefaultSeparators)

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the record's document text. Incoming documents are ignored.
// Every chunk carries the event metadata plus its position and the total.
func (p *Processor) Process(_ context.Context, rec domain.EventRecord, _ []domain.EventDocument) ([]domain.EventDocument, error) {
	pieces := p.splitter.Split(rec.Document)
	if len(pieces) == 0 {
		return nil, nil
	}

	base := rec.Metadata(p.agendaSlug)
	docs := make([]domain.EventDocument, len(pieces))
	for i, text := range pieces {
		md := base
		md.ChunkID = i
		md.ChunkCount = len(pieces)
		docs[i] = domain.EventDocument{Content: text, Metadata: md}
	}
	return docs, nil
}
