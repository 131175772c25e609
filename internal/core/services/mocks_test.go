package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEventIndex implements driven.EventIndex for testing.
type mockEventIndex struct {
	candidates []domain.ScoredCandidate
	searchErr  error
	calls      atomic.Int32
	lastK      atomic.Int32
}

func (m *mockEventIndex) Search(_ context.Context, _ string, k int) ([]domain.ScoredCandidate, error) {
	m.calls.Add(1)
	m.lastK.Store(int32(k))
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.candidates) {
		return m.candidates[:k], nil
	}
	return m.candidates, nil
}

// staticSource hands out a fixed index.
type staticSource struct {
	index driven.EventIndex
	err   error
}

func (s staticSource) Get(context.Context) (driven.EventIndex, error) {
	return s.index, s.err
}

// mockLoader implements driven.IndexLoader for testing.
type mockLoader struct {
	mu      sync.Mutex
	indexes []driven.EventIndex
	err     error
	loads   atomic.Int32
	delay   time.Duration
}

func (m *mockLoader) Load(_ context.Context) (driven.EventIndex, error) {
	m.loads.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if len(m.indexes) == 0 {
		return &mockEventIndex{}, nil
	}
	idx := m.indexes[0]
	if len(m.indexes) > 1 {
		m.indexes = m.indexes[1:]
	}
	return idx, nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	reply    string
	err      error
	calls    atomic.Int32
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.calls.Add(1)
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLMService) ModelName() string            { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt: %s", name)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// --- Fixtures ---

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func candidate(uid, city string, begin time.Time, distance float64) domain.ScoredCandidate {
	return domain.ScoredCandidate{
		Document: domain.EventDocument{
			Content: "Titre: " + uid,
			Metadata: domain.EventMetadata{
				UID:          uid,
				LocationCity: city,
				FirstBeginDT: domain.FormatTimestamp(begin),
			},
		},
		Distance: distance,
	}
}

func upcoming(uid, city string, distance float64) domain.ScoredCandidate {
	return candidate(uid, city, testNow.Add(48*time.Hour), distance)
}

func uidsOf(cands []domain.ScoredCandidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Document.Metadata.UID
	}
	return out
}
