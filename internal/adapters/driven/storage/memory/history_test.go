package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

func TestHistoryStore_AsksNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.RecordAsk(ctx, domain.AskRecord{ID: id}))
	}

	recs, err := store.RecentAsks(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].ID)
	assert.Equal(t, "b", recs[1].ID)

	all, err := store.RecentAsks(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHistoryStore_Rebuilds(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore()

	require.NoError(t, store.RecordRebuild(ctx, domain.RebuildResult{ID: "r1", Status: domain.RebuildStatusError}))
	require.NoError(t, store.RecordRebuild(ctx, domain.RebuildResult{ID: "r2", Status: domain.RebuildStatusOK}))

	res, err := store.RecentRebuilds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "r2", res[0].ID)
	assert.True(t, res[0].OK())
}

func TestHistoryStore_Empty(t *testing.T) {
	recs, err := NewHistoryStore().RecentAsks(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
