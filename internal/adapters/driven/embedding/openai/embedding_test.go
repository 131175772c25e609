package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

func TestNewEmbeddingService_Dimensions(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "k", Model: "mistral-embed"})
	require.NoError(t, err)
	assert.Equal(t, 1024, svc.Dimensions())
	assert.False(t, svc.sendDimsHint)

	svc, err = NewEmbeddingService(Config{APIKey: "k", Model: "text-embedding-3-small", Dimensions: 512})
	require.NoError(t, err)
	assert.Equal(t, 512, svc.Dimensions())
	assert.True(t, svc.sendDimsHint)

	_, err = NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestEmbeddingService_EmbedBatch_ReordersByIndex(t *testing.T) {
	var got embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL, Model: "mistral-embed"})
	require.NoError(t, err)

	out, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, out)
	assert.Equal(t, []string{"a", "b"}, got.Input)
	assert.Zero(t, got.Dimensions)
}

func TestEmbeddingService_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	out, err := svc.EmbedBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, out)
}
