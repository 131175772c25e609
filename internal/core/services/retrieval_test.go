package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

func newTestRetriever(idx *mockEventIndex) *Retriever {
	return NewRetriever(staticSource{index: idx}, domain.DefaultRetrievalPolicy(), WithClock(fixedClock))
}

func defaultQuery(question string) domain.RetrievalQuery {
	return domain.DefaultRetrievalPolicy().Query(question, nil, true)
}

func TestRetriever_StrictPassSufficient(t *testing.T) {
	idx := &mockEventIndex{candidates: []domain.ScoredCandidate{
		upcoming("a", "Paris", 0.2),
		upcoming("b", "Paris", 0.5),
		upcoming("c", "Paris", 0.9),
		upcoming("d", "Paris", 1.1),
	}}

	res, err := newTestRetriever(idx).Retrieve(context.Background(), defaultQuery("expo"))

	require.NoError(t, err)
	assert.False(t, res.Relaxed)
	assert.InDelta(t, 1.0, res.Threshold, 1e-9)
	assert.Equal(t, []string{"a", "b", "c"}, uidsOf(res.Candidates))
	assert.Equal(t, 4, res.Fetched)
	assert.Equal(t, int32(1), idx.calls.Load())
	assert.Equal(t, int32(30), idx.lastK.Load())
}

func TestRetriever_RelaxesWhenTooFew(t *testing.T) {
	// Strict keeps 1, relaxed (1.2) keeps 4.
	idx := &mockEventIndex{candidates: []domain.ScoredCandidate{
		upcoming("a", "Paris", 0.8),
		upcoming("b", "Paris", 1.05),
		upcoming("c", "Paris", 1.1),
		upcoming("d", "Paris", 1.15),
		upcoming("e", "Paris", 1.4),
	}}

	res, err := newTestRetriever(idx).Retrieve(context.Background(), defaultQuery("expo"))

	require.NoError(t, err)
	assert.True(t, res.Relaxed)
	assert.InDelta(t, 1.2, res.Threshold, 1e-9)
	assert.Equal(t, []string{"a", "b", "c", "d"}, uidsOf(res.Candidates))
	assert.Equal(t, int32(1), idx.calls.Load(), "relaxation must not query the index again")
}

func TestRetriever_RelaxationNeverLoosensGeoOrTime(t *testing.T) {
	idx := &mockEventIndex{candidates: []domain.ScoredCandidate{
		upcoming("lyon", "Lyon", 0.1),
		candidate("past", "Orsay", testNow.Add(-time.Hour), 0.1),
		upcoming("blank", "", 0.1),
		upcoming("orsay", "Orsay", 1.1),
	}}
	q := domain.DefaultRetrievalPolicy().Query("expo", []string{"Orsay"}, true)

	res, err := newTestRetriever(idx).Retrieve(context.Background(), q)

	require.NoError(t, err)
	assert.True(t, res.Relaxed)
	assert.Equal(t, []string{"orsay"}, uidsOf(res.Candidates))
}

func TestRetriever_NoThirdPass(t *testing.T) {
	idx := &mockEventIndex{candidates: []domain.ScoredCandidate{
		upcoming("a", "Paris", 1.25),
		upcoming("b", "Paris", 1.5),
	}}

	res, err := newTestRetriever(idx).Retrieve(context.Background(), defaultQuery("expo"))

	require.NoError(t, err)
	assert.True(t, res.Relaxed)
	assert.Empty(t, res.Candidates)
}

func TestRetriever_TriggerUsesSmallerOfFloorAndKFinal(t *testing.T) {
	idx := &mockEventIndex{candidates: []domain.ScoredCandidate{
		upcoming("a", "Paris", 0.5),
		upcoming("b", "Paris", 1.1),
	}}
	q := defaultQuery("expo")
	q.KFinal = 1

	res, err := newTestRetriever(idx).Retrieve(context.Background(), q)

	require.NoError(t, err)
	assert.False(t, res.Relaxed, "one kept result satisfies min(3, k_final=1)")
	assert.Equal(t, []string{"a"}, uidsOf(res.Candidates))
}

func TestRetriever_RelaxedNeverFewerThanStrict(t *testing.T) {
	idx := &mockEventIndex{candidates: []domain.ScoredCandidate{
		upcoming("a", "Paris", 0.9),
		upcoming("b", "Paris", 1.0),
	}}

	res, err := newTestRetriever(idx).Retrieve(context.Background(), defaultQuery("expo"))

	require.NoError(t, err)
	assert.True(t, res.Relaxed)
	assert.Len(t, res.Candidates, 2)
}

func TestRetriever_IndexFailureIsHard(t *testing.T) {
	t.Run("search error", func(t *testing.T) {
		idx := &mockEventIndex{searchErr: errors.New("corrupt artifact")}

		res, err := newTestRetriever(idx).Retrieve(context.Background(), defaultQuery("expo"))

		require.Error(t, err)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
		assert.Contains(t, err.Error(), "corrupt artifact")
	})

	t.Run("handle error", func(t *testing.T) {
		r := NewRetriever(staticSource{err: errors.New("missing file")}, domain.DefaultRetrievalPolicy())

		_, err := r.Retrieve(context.Background(), defaultQuery("expo"))

		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	})

	t.Run("cancellation is not an index failure", func(t *testing.T) {
		idx := &mockEventIndex{searchErr: context.Canceled}

		_, err := newTestRetriever(idx).Retrieve(context.Background(), defaultQuery("expo"))

		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, domain.ErrIndexUnavailable)
	})
}

func TestRetriever_EmptyIndexIsNotAnError(t *testing.T) {
	res, err := newTestRetriever(&mockEventIndex{}).Retrieve(context.Background(), defaultQuery("expo"))

	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, 0, res.Fetched)
}
