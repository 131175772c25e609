// Package ollama generates answers with a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/apiclient"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL  = "http://localhost:11434"
	DefaultLLMModel = "llama3.2"
	// DefaultLLMTimeout leaves room for a cold model load.
	DefaultLLMTimeout = 180 * time.Second
)

type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /api/chat with streaming off.
type LLMService struct {
	api   *apiclient.Client
	model string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  struct {
		NumPredict  int     `json:"num_predict,omitempty"`
		Temperature float64 `json:"temperature"`
	} `json:"options"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		api:   apiclient.New("ollama", orDefault(cfg.BaseURL, DefaultBaseURL), cfg.Timeout),
		model: cfg.Model,
	}
}

func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	req := chatRequest{Model: s.model, Messages: make([]chatMessage, 0, len(messages))}
	req.Options.NumPredict = opts.MaxTokens
	req.Options.Temperature = opts.Temperature
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage(m))
	}

	var resp chatResponse
	if err := s.api.PostJSON(ctx, "/api/chat", req, &resp); err != nil {
		return "", apiclient.Unavailable(domain.ErrLLMUnavailable, err)
	}
	if resp.Error != "" {
		return "", apiclient.Unavailable(domain.ErrLLMUnavailable, errors.New("ollama: "+resp.Error))
	}
	return resp.Message.Content, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists installed models, which needs no inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags", nil)
}

func (s *LLMService) Close() error { return nil }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
