// Package openai embeds text with an OpenAI-compatible /embeddings API,
// Mistral's mistral-embed included.
package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driven/apiclient"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	fallbackDims = 1536
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Dimensions overrides the model's native size. It is sent upstream
	// only when it differs, since only text-embedding-3-* accept it.
	Dimensions int
}

type EmbeddingService struct {
	api          *apiclient.Client
	model        string
	dimensions   int
	sendDimsHint bool
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
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

	native, known := domain.EmbeddingDimensions()[cfg.Model]
	svc := &EmbeddingService{
		api:        apiclient.New("openai", cfg.BaseURL, cfg.Timeout, apiclient.WithBearer(cfg.APIKey)),
		model:      cfg.Model,
		dimensions: native,
	}
	switch {
	case cfg.Dimensions > 0:
		svc.dimensions = cfg.Dimensions
		svc.sendDimsHint = cfg.Dimensions != native
	case !known:
		svc.dimensions = fallbackDims
	}
	return svc, nil
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch returns vectors in input order, whatever order the API used.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := embeddingRequest{Model: s.model, Input: texts}
	if s.sendDimsHint {
		req.Dimensions = s.dimensions
	}

	var resp embeddingResponse
	err := s.api.PostJSON(ctx, "/embeddings", req, &resp)
	switch {
	case err != nil:
	case resp.Error != nil:
		err = errors.New("openai: " + resp.Error.Message)
	case len(resp.Data) != len(texts):
		err = fmt.Errorf("openai: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}
	if err != nil {
		return nil, apiclient.Unavailable(domain.ErrEmbeddingUnavailable, err)
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			vec[j] = float32(x)
		}
		out[i] = vec
	}
	return out, nil
}

func (s *EmbeddingService) Dimensions() int   { return s.dimensions }
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks the key against /models.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Get(ctx, "/models", nil)
}

func (s *EmbeddingService) Close() error { return nil }
