package postprocessors

import (
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
	"github.com/perachon/p7-puls-events-rag/internal/postprocessors/chunker"
)

// ChunkerName is the registry name of the text chunker.
const ChunkerName = "chunker"

// RegisterDefaults adds the built-in processors.
func RegisterDefaults(r *Registry) {
	r.Register(ChunkerName, buildChunker)
}

// DefaultSteps is the rebuild pipeline for the given settings.
func DefaultSteps(settings domain.RebuildSettings, agendaSlug string) []Step {
	return []Step{{
		Name: ChunkerName,
		Config: map[string]any{
			"chunk_size":  settings.ChunkSize,
			"overlap":     settings.ChunkOverlap,
			"agenda_slug": agendaSlug,
		},
	}}
}

// DefaultPipeline builds DefaultSteps with the built-in registry.
func DefaultPipeline(settings domain.RebuildSettings, agendaSlug string) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	steps := DefaultSteps(settings, agendaSlug)
	logger.Debug("rebuild pipeline: %v", stepNames(steps))
	return r.Pipeline(steps...)
}

// buildChunker reads chunk_size, overlap and agenda_slug. Missing or
// non-positive sizes keep the chunker defaults; an explicit overlap of 0 is kept.
func buildChunker(cfg map[string]any) (driven.DocumentProcessor, error) {
	var opts []chunker.Option
	if size, ok := configInt(cfg, "chunk_size"); ok && size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := configInt(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if slug, ok := cfg["agenda_slug"].(string); ok {
		opts = append(opts, chunker.WithAgendaSlug(slug))
	}
	return chunker.New(opts...), nil
}
