package services

import (
	"context"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

const defaultHistoryLimit = 20

// HistoryService reads recorded asks and rebuilds.
type HistoryService struct {
	asks     driven.AskLogStore
	rebuilds driven.RebuildLogStore
}

// NewHistoryService creates a history service. Either store may be nil.
func NewHistoryService(asks driven.AskLogStore, rebuilds driven.RebuildLogStore) *HistoryService {
	return &HistoryService{asks: asks, rebuilds: rebuilds}
}

// Asks returns recent asks, newest first.
func (s *HistoryService) Asks(ctx context.Context, limit int) ([]domain.AskRecord, error) {
	if s.asks == nil {
		return nil, nil
	}
	return s.asks.RecentAsks(ctx, historyLimit(limit))
}

// Rebuilds returns recent rebuilds, newest first.
func (s *HistoryService) Rebuilds(ctx context.Context, limit int) ([]domain.RebuildResult, error) {
	if s.rebuilds == nil {
		return nil, nil
	}
	return s.rebuilds.RecentRebuilds(ctx, historyLimit(limit))
}

func historyLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	return limit
}
