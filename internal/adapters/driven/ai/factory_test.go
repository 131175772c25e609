package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.EmbeddingSettings
		wantModel string
		wantDims  int
		wantErr   bool
	}{
		{name: "nil settings", settings: nil, wantErr: true},
		{
			name:      "ollama",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "all-minilm"},
			wantModel: "all-minilm",
			wantDims:  384,
		},
		{
			name:      "mistral",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderMistral, Model: "mistral-embed", APIKey: "k"},
			wantModel: "mistral-embed",
			wantDims:  1024,
		},
		{
			name:      "openai",
			settings:  &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small", APIKey: "k"},
			wantModel: "text-embedding-3-small",
			wantDims:  1536,
		},
		{name: "openai without key", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}, wantErr: true},
		{name: "anthropic", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, wantErr: true},
		{name: "static", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderStatic}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Equal(t, tt.wantDims, svc.Dimensions())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantModel string
		wantErr   bool
	}{
		{name: "nil settings", wantErr: true},
		{name: "static", settings: &domain.LLMSettings{Provider: domain.AIProviderStatic}, wantModel: "static"},
		{name: "ollama", settings: &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "mistral"}, wantModel: "mistral"},
		{
			name:      "mistral",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderMistral, Model: "mistral-small-latest", APIKey: "k"},
			wantModel: "mistral-small-latest",
		},
		{
			name:      "anthropic",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderAnthropic, Model: "claude-3-5-haiku-latest", APIKey: "k"},
			wantModel: "claude-3-5-haiku-latest",
		},
		{name: "mistral without key", settings: &domain.LLMSettings{Provider: domain.AIProviderMistral}, wantErr: true},
		{name: "unknown", settings: &domain.LLMSettings{Provider: "nope"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestValidateLLMConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := ValidateLLMConfig(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderMistral, APIKey: "bad", BaseURL: srv.URL,
	})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	assert.NoError(t, ValidateLLMConfig(context.Background(), &domain.LLMSettings{Provider: domain.AIProviderStatic}))
}

func TestValidateEmbeddingConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
	}))
	defer srv.Close()

	err := ValidateEmbeddingConfig(context.Background(), &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, BaseURL: srv.URL,
	})
	assert.NoError(t, err)
}

func TestChatOptions(t *testing.T) {
	opts := ChatOptions(&domain.LLMSettings{Temperature: 0.2})
	assert.InDelta(t, 0.2, opts.Temperature, 1e-9)
}
