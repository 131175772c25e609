package services

import (
	"context"
	"fmt"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// IndexSource hands out the current index handle.
// *IndexProvider is the production implementation.
type IndexSource interface {
	Get(ctx context.Context) (driven.EventIndex, error)
}

// Retriever runs index search, filtering and one relaxation pass.
type Retriever struct {
	source IndexSource
	policy domain.RetrievalPolicy
	now    func() time.Time
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithClock overrides the freshness reference clock.
func WithClock(now func() time.Time) RetrieverOption {
	return func(r *Retriever) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRetriever creates a retriever. The policy supplies the relaxation
// step and minimum floor; per-query thresholds come from the query.
func NewRetriever(source IndexSource, policy domain.RetrievalPolicy, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		source: source,
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve fetches KFetch candidates once and filters them.
// When the strict pass keeps fewer than min(MinResults, KFinal), the same
// candidates are filtered again with MaxDistance widened by RelaxStep.
// Only the distance bound is relaxed. There is no third pass.
func (r *Retriever) Retrieve(ctx context.Context, q domain.RetrievalQuery) (*domain.RetrievalResult, error) {
	logger.Section("Retrieval")

	idx, err := r.source.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", asIndexUnavailable(err))
	}

	candidates, err := idx.Search(ctx, q.Question, q.KFetch)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", asIndexUnavailable(err))
	}
	logger.Debug("Fetched %d candidates (k_fetch=%d)", len(candidates), q.KFetch)

	params := FilterParams{
		AllowedCities: q.AllowedCities,
		FutureOnly:    q.FutureOnly,
		MaxDistance:   q.MaxDistance,
		KFinal:        q.KFinal,
		Now:           r.now(),
	}

	kept := FilterCandidates(candidates, params)
	logger.Debug("Strict pass kept %d (max_distance=%.3f)", len(kept), params.MaxDistance)

	result := &domain.RetrievalResult{
		Candidates: kept,
		Fetched:    len(candidates),
		Threshold:  params.MaxDistance,
	}

	if len(kept) < min(r.policy.MinResults, q.KFinal) {
		params.MaxDistance = q.MaxDistance + r.policy.RelaxStep
		result.Candidates = FilterCandidates(candidates, params)
		result.Relaxed = true
		result.Threshold = params.MaxDistance
		logger.Debug("Relaxed pass kept %d (max_distance=%.3f)", len(result.Candidates), params.MaxDistance)
	}

	return result, nil
}
