package driving

import (
	"context"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// AnswerService answers questions about events.
type AnswerService interface {
	// Ask validates the request, retrieves, gates and synthesises an answer.
	// Malformed input fails with an error matching domain.ErrInvalidInput.
	// NotFound and LowConfidence are answers, not errors.
	Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error)

	// AllowedCities returns the city whitelist domain.
	AllowedCities() []string
}

// RebuildService replaces the vector index out-of-band.
type RebuildService interface {
	// Rebuild runs a full rebuild. A failed rebuild returns a result with
	// status "error" and diagnostics, alongside domain.ErrRebuildFailed.
	Rebuild(ctx context.Context) (*domain.RebuildResult, error)
}

// HistoryService exposes recorded asks and rebuilds.
type HistoryService interface {
	Asks(ctx context.Context, limit int) ([]domain.AskRecord, error)
	Rebuilds(ctx context.Context, limit int) ([]domain.RebuildResult, error)
}
