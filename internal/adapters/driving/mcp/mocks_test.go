package mcp

import (
	"context"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer  *domain.Answer
	err     error
	cities  []string
	lastReq domain.AskRequest
}

func (m *mockAnswerService) Ask(_ context.Context, req domain.AskRequest) (*domain.Answer, error) {
	m.lastReq = req
	return m.answer, m.err
}

func (m *mockAnswerService) AllowedCities() []string {
	return m.cities
}

// mockRebuildService is a mock implementation of driving.RebuildService.
type mockRebuildService struct {
	result *domain.RebuildResult
	err    error
}

func (m *mockRebuildService) Rebuild(_ context.Context) (*domain.RebuildResult, error) {
	return m.result, m.err
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	asks     []domain.AskRecord
	rebuilds []domain.RebuildResult
	err      error
}

func (m *mockHistoryService) Asks(_ context.Context, _ int) ([]domain.AskRecord, error) {
	return m.asks, m.err
}

func (m *mockHistoryService) Rebuilds(_ context.Context, _ int) ([]domain.RebuildResult, error) {
	return m.rebuilds, m.err
}
