// Package ai builds embedding and LLM adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/perachon/p7-puls-events-rag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/perachon/p7-puls-events-rag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/perachon/p7-puls-events-rag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/perachon/p7-puls-events-rag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/perachon/p7-puls-events-rag/internal/adapters/driven/llm/openai"
	staticllm "github.com/perachon/p7-puls-events-rag/internal/adapters/driven/llm/static"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

// pingTimeout bounds connectivity checks.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService builds the embedder named by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrEmbeddingUnavailable)
	}
	if !settings.Provider.SupportsEmbeddings() {
		return nil, fmt.Errorf("%w: %s does not support embeddings, use ollama, openai or mistral",
			domain.ErrEmbeddingUnavailable, settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s requires an API key", domain.ErrEmbeddingUnavailable, settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderMistral:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: orDefault(settings.BaseURL, openaillm.MistralBaseURL),
			Model:   settings.Model,
		})

	default:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	}
}

// CreateLLMService builds the chat model named by settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no llm settings", domain.ErrLLMUnavailable)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: provider %q is not configured", domain.ErrLLMUnavailable, settings.Provider)
	}

	switch settings.Provider {
	case domain.AIProviderStatic:
		return staticllm.NewLLMService(), nil

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderMistral:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: orDefault(settings.BaseURL, openaillm.MistralBaseURL),
			Model:   settings.Model,
		})

	default:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	}
}

// ChatOptions returns the generation options for settings.
func ChatOptions(settings *domain.LLMSettings) driven.ChatOptions {
	return driven.ChatOptions{Temperature: settings.Temperature}
}

// ValidateEmbeddingConfig builds an embedder and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLMConfig builds a chat model and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
