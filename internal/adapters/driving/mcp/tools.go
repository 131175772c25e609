package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question      string   `json:"question" jsonschema:"the question about cultural events"`
	AllowedCities []string `json:"allowed_cities,omitempty" jsonschema:"restrict answers to these cities (must be in the configured whitelist)"`
	FutureOnly    *bool    `json:"future_only,omitempty" jsonschema:"only upcoming events (default true)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string           `json:"answer"`
	Verdict   string           `json:"verdict"`
	Sources   []string         `json:"sources"`
	Citations []CitationOutput `json:"citations,omitempty"`
}

// CitationOutput represents one event an answer was built from.
type CitationOutput struct {
	UID       string `json:"uid"`
	Date      string `json:"date,omitempty"`
	City      string `json:"city,omitempty"`
	Location  string `json:"location,omitempty"`
	URL       string `json:"url,omitempty"`
	AgendaURL string `json:"agenda_url,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
}

// RebuildInput is the input schema for the rebuild tool.
type RebuildInput struct{}

// RebuildOutput is the output schema for the rebuild tool.
type RebuildOutput struct {
	Status    string                `json:"status"`
	Message   string                `json:"message"`
	DurationS float64               `json:"duration_s"`
	Details   domain.RebuildDetails `json:"details"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about upcoming cultural events, citing event uids",
	}, s.handleAsk)

	if s.ports.Rebuild != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "rebuild",
			Description: "Rebuild the events vector index from the latest cleaned data",
		}, s.handleRebuild)
	}
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	req := domain.NewAskRequest(input.Question)
	req.AllowedCities = input.AllowedCities
	if input.FutureOnly != nil {
		req.FutureOnly = *input.FutureOnly
	}

	ans, err := s.ports.Answer.Ask(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, AskOutput{}, err
		}
		logger.Error("mcp ask: %v", err)
		return nil, AskOutput{}, ErrInternal
	}

	output := AskOutput{
		Answer:  ans.Text,
		Verdict: ans.Verdict.String(),
		Sources: ans.Sources,
	}
	if output.Sources == nil {
		output.Sources = []string{}
	}
	for _, c := range ans.Citations {
		md := c.Metadata
		output.Citations = append(output.Citations, CitationOutput{
			UID:       md.UID,
			Date:      md.FirstBeginDT,
			City:      md.LocationCity,
			Location:  md.LocationName,
			URL:       md.OriginURL,
			AgendaURL: md.AgendaURL,
			Excerpt:   c.Excerpt,
		})
	}

	return nil, output, nil
}

// handleRebuild handles the rebuild tool invocation.
// A failed build is reported in the output, with its diagnostics.
func (s *Server) handleRebuild(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RebuildInput,
) (*mcp.CallToolResult, RebuildOutput, error) {
	res, err := s.ports.Rebuild.Rebuild(ctx)
	if res == nil {
		if errors.Is(err, domain.ErrRebuildInProgress) {
			return nil, RebuildOutput{}, err
		}
		logger.Error("mcp rebuild: %v", err)
		return nil, RebuildOutput{}, ErrInternal
	}

	return nil, RebuildOutput{
		Status:    string(res.Status),
		Message:   res.Message,
		DurationS: res.DurationSeconds(),
		Details:   res.Details,
	}, nil
}
