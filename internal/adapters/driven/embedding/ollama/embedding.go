// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/apiclient"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "all-minilm"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 384
)

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions overrides the size looked up from the model name.
	Dimensions int
}

// EmbeddingService calls /api/embed, which takes the whole batch at once.
type EmbeddingService struct {
	api        *apiclient.Client
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
		if d, ok := domain.EmbeddingDimensions()[modelBase(cfg.Model)]; ok {
			cfg.Dimensions = d
		}
	}
	return &EmbeddingService{
		api:        apiclient.New("ollama", cfg.BaseURL, cfg.Timeout),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch returns vectors in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	err := s.api.PostJSON(ctx, "/api/embed", embedRequest{Model: s.model, Input: texts}, &resp)
	switch {
	case err != nil:
	case resp.Error != "":
		err = errors.New("ollama: " + resp.Error)
	case len(resp.Embeddings) != len(texts):
		err = fmt.Errorf("ollama: got %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}
	if err != nil {
		return nil, apiclient.Unavailable(domain.ErrEmbeddingUnavailable, err)
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = toFloat32(e)
	}
	return out, nil
}

func (s *EmbeddingService) Dimensions() int   { return s.dimensions }
func (s *EmbeddingService) ModelName() string { return s.model }

func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/api/tags", nil)
}

func (s *EmbeddingService) Close() error { return nil }

// modelBase strips an Ollama tag: "all-minilm:l6-v2" -> "all-minilm".
func modelBase(model string) string {
	base, _, _ := strings.Cut(model, ":")
	return base
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
