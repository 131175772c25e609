package driving

import (
	"context"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// EvalService scores the answer pipeline against a gold question set.
type EvalService interface {
	// Run answers every case and scores the predicted sources.
	Run(ctx context.Context, cases []domain.EvalCase) (*domain.EvalReport, error)
}

// IngestService fetches events upstream and writes cleaned records.
type IngestService interface {
	// Ingest fetches raw events, writes them to rawPath, cleans them and
	// writes index-ready JSONL to cleanPath. Empty paths skip that output.
	Ingest(ctx context.Context, rawPath, cleanPath string) (*domain.IngestReport, error)
}
