package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService composes validation, retrieval, gating and assembly.
type AnswerService struct {
	retriever *Retriever
	assembler *Assembler
	policy    domain.RetrievalPolicy
	whitelist []string
	asks      driven.AskLogStore
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithAskLog records every answered request.
func WithAskLog(store driven.AskLogStore) AnswerOption {
	return func(s *AnswerService) {
		s.asks = store
	}
}

// NewAnswerService creates an answer service.
func NewAnswerService(
	retriever *Retriever,
	assembler *Assembler,
	settings domain.RetrievalSettings,
	opts ...AnswerOption,
) *AnswerService {
	s := &AnswerService{
		retriever: retriever,
		assembler: assembler,
		policy:    settings.Policy,
		whitelist: settings.AllowedCities,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AllowedCities returns the city whitelist domain.
func (s *AnswerService) AllowedCities() []string {
	out := make([]string, len(s.whitelist))
	copy(out, s.whitelist)
	return out
}

// Ask answers a question about events.
func (s *AnswerService) Ask(ctx context.Context, req domain.AskRequest) (*domain.Answer, error) {
	question, err := ValidateQuestion(req.Question)
	if err != nil {
		return nil, err
	}
	cities, err := ValidateCities(req.AllowedCities, s.whitelist)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ans := &domain.Answer{ID: uuid.NewString(), BestDistance: math.Inf(1)}
	rec := domain.AskRecord{
		ID:            ans.ID,
		Question:      question,
		AllowedCities: cities,
		FutureOnly:    req.FutureOnly,
		CreatedAt:     start.UTC(),
	}

	if err := s.answer(ctx, s.policy.Query(question, cities, req.FutureOnly), ans); err != nil {
		rec.Error = err.Error()
		rec.Duration = time.Since(start)
		s.record(ctx, rec)
		logger.WithFields(map[string]any{"request_id": ans.ID, "error": err}).Warn("ask failed")
		return nil, fmt.Errorf("ask: %w", err)
	}
	ans.Duration = time.Since(start)

	rec.Verdict = ans.Verdict
	rec.Sources = ans.Sources
	rec.Relaxed = ans.Relaxed
	rec.Duration = ans.Duration
	if !math.IsInf(ans.BestDistance, 0) {
		best := ans.BestDistance
		rec.BestDistance = &best
	}
	s.record(ctx, rec)

	logger.WithFields(map[string]any{
		"request_id": ans.ID,
		"verdict":    ans.Verdict,
		"sources":    len(ans.Sources),
		"relaxed":    ans.Relaxed,
		"best":       ans.BestDistance,
		"duration":   ans.Duration,
	}).Info("ask")
	return ans, nil
}

func (s *AnswerService) answer(ctx context.Context, q domain.RetrievalQuery, ans *domain.Answer) error {
	res, err := s.retriever.Retrieve(ctx, q)
	if err != nil {
		return err
	}

	decision := Gate(res.Candidates, s.policy.ConfidenceCeiling)
	logger.Debug("Gate: %s (%s)", decision.Verdict, decision.Reason)

	ans.Verdict = decision.Verdict
	ans.BestDistance = decision.Best
	ans.Relaxed = res.Relaxed
	ans.Sources = []string{}

	switch decision.Verdict {
	case domain.VerdictNotFound:
		ans.Text = NotFoundMessage
		return nil
	case domain.VerdictLowConfidence:
		ans.Text = LowConfidenceMessage
		return nil
	}

	docs := res.Documents()
	text, sources, err := s.assembler.Assemble(ctx, q.Question, docs)
	if err != nil {
		return err
	}
	ans.Text = text
	ans.Sources = sources
	ans.Citations = Citations(docs)
	return nil
}

func (s *AnswerService) record(ctx context.Context, rec domain.AskRecord) {
	if s.asks == nil {
		return
	}
	// History is best effort and must not fail the answer.
	if err := s.asks.RecordAsk(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("record ask %s: %v", rec.ID, err)
	}
}
