// Package openai generates answers with an OpenAI-compatible chat API.
// Mistral's La Plateforme speaks the same protocol under MistralBaseURL.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/apiclient"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	MistralBaseURL    = "https://api.mistral.ai/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second

	defaultRequestsPerSec = 1.0
)

// ErrMissingAPIKey is returned by the constructors when no key is set.
var ErrMissingAPIKey = errors.New("openai: API key is required")

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// RequestsPerSecond throttles calls; free tiers reject bursts. Zero means 1/s.
	RequestsPerSecond float64

	HTTPClient *http.Client
}

// LLMService calls /chat/completions and returns the first choice.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSec
	}

	api := apiclient.New("openai", cfg.BaseURL, cfg.Timeout,
		apiclient.WithBearer(cfg.APIKey),
		apiclient.WithRateLimit(cfg.RequestsPerSecond),
		apiclient.WithHTTPClient(cfg.HTTPClient),
	)
	return &LLMService{api: api, model: cfg.Model}, nil
}

func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := chatCompletionRequest{
		Model:       s.model,
		Messages:    make([]chatCompletionMsg, len(messages)),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for i, m := range messages {
		req.Messages[i] = chatCompletionMsg(m)
	}

	var resp chatCompletionResponse
	err := s.api.PostJSON(ctx, "/chat/completions", req, &resp)
	switch {
	case err != nil:
	case resp.Error != nil:
		err = fmt.Errorf("openai: %s", resp.Error.Message)
	case len(resp.Choices) == 0:
		err = errors.New("openai: no choices returned")
	default:
		return resp.Choices[0].Message.Content, nil
	}
	return "", apiclient.Unavailable(domain.ErrLLMUnavailable, err)
}

func (s *LLMService) ModelName() string { return s.model }

// Ping checks the key against /models.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/models", nil)
}

func (s *LLMService) Close() error { return nil }
