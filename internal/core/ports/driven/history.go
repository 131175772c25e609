package driven

import (
	"context"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// AskLogStore records answered questions.
type AskLogStore interface {
	// RecordAsk stores one ask outcome.
	RecordAsk(ctx context.Context, rec domain.AskRecord) error

	// RecentAsks returns up to limit records, newest first.
	RecentAsks(ctx context.Context, limit int) ([]domain.AskRecord, error)
}

// RebuildLogStore records rebuild attempts.
type RebuildLogStore interface {
	// RecordRebuild stores one rebuild outcome.
	RecordRebuild(ctx context.Context, res domain.RebuildResult) error

	// RecentRebuilds returns up to limit results, newest first.
	RecentRebuilds(ctx context.Context, limit int) ([]domain.RebuildResult, error)
}
