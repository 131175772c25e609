package memory

import (
	"context"
	"sync"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interfaces.
var (
	_ driven.AskLogStore     = (*HistoryStore)(nil)
	_ driven.RebuildLogStore = (*HistoryStore)(nil)
)

// HistoryStore keeps asks and rebuilds in memory, oldest first.
type HistoryStore struct {
	mu       sync.RWMutex
	asks     []domain.AskRecord
	rebuilds []domain.RebuildResult
}

// NewHistoryStore creates an empty history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// RecordAsk stores one ask outcome.
func (s *HistoryStore) RecordAsk(_ context.Context, rec domain.AskRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asks = append(s.asks, rec)
	return nil
}

// RecentAsks returns up to limit records, newest first.
func (s *HistoryStore) RecentAsks(_ context.Context, limit int) ([]domain.AskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.asks, limit), nil
}

// RecordRebuild stores one rebuild outcome.
func (s *HistoryStore) RecordRebuild(_ context.Context, res domain.RebuildResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuilds = append(s.rebuilds, res)
	return nil
}

// RecentRebuilds returns up to limit results, newest first.
func (s *HistoryStore) RecentRebuilds(_ context.Context, limit int) ([]domain.RebuildResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.rebuilds, limit), nil
}

func newestFirst[T any](items []T, limit int) []T {
	n := len(items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]T, 0, n)
	for i := len(items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, items[i])
	}
	return out
}
