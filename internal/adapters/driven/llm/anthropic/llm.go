// Package anthropic generates answers with the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/apiclient"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-haiku-latest"
	DefaultTimeout = 120 * time.Second

	// defaultMaxTokens is sent when the caller leaves MaxTokens at zero;
	// the API has no default of its own.
	defaultMaxTokens = 1024
	anthropicVersion = "2023-06-01"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /v1/messages.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string            `json:"model"`
	System      string            `json:"system,omitempty"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	api := apiclient.New("anthropic", cfg.BaseURL, cfg.Timeout,
		apiclient.WithHeader("x-api-key", cfg.APIKey),
		apiclient.WithHeader("anthropic-version", anthropicVersion),
	)
	return &LLMService{api: api, model: cfg.Model}, nil
}

// Chat moves system turns to the top-level system field; the Messages API
// only accepts user and assistant turns in the list.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := messagesRequest{
		Model:       s.model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	var system []string
	for _, m := range messages {
		if m.Role == driven.RoleSystem {
			system = append(system, m.Content)
		} else {
			req.Messages = append(req.Messages, messagesMessage(m))
		}
	}
	req.System = strings.Join(system, "\n\n")

	var resp messagesResponse
	if err := s.api.PostJSON(ctx, "/v1/messages", req, &resp); err != nil {
		return "", apiclient.Unavailable(domain.ErrLLMUnavailable, err)
	}
	if resp.Error != nil {
		return "", apiclient.Unavailable(domain.ErrLLMUnavailable, errors.New("anthropic: "+resp.Error.Message))
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", apiclient.Unavailable(domain.ErrLLMUnavailable, errors.New("anthropic: empty response"))
	}
	return text.String(), nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping validates the key by listing models.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/v1/models", nil)
}

func (s *LLMService) Close() error { return nil }
