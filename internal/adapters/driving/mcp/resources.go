package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for event assistant resources.
	uriScheme = "pulsrag://"

	// historyLimit caps history resource listings.
	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "cities",
		Name:        "cities",
		Description: "Cities accepted in allowed_cities",
		MIMEType:    "application/json",
	}, s.handleCitiesResource)

	if s.ports.History != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: uriScheme + "history/{kind}",
			Name:        "history",
			Description: "Recent asks or rebuilds (kind is asks or rebuilds)",
			MIMEType:    "application/json",
		}, s.handleHistoryResource)
	}
}

// handleCitiesResource returns the city whitelist.
func (s *Server) handleCitiesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Answer.AllowedCities())
}

// handleHistoryResource returns recent asks or rebuilds.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	switch extractHistoryKind(req.Params.URI) {
	case "asks":
		asks, err := s.ports.History.Asks(ctx, historyLimit)
		if err != nil {
			return nil, fmt.Errorf("listing asks: %w", err)
		}

		type askInfo struct {
			ID        string   `json:"id"`
			Question  string   `json:"question"`
			Verdict   string   `json:"verdict"`
			Sources   []string `json:"sources"`
			Error     string   `json:"error,omitempty"`
			CreatedAt string   `json:"created_at"`
		}
		infos := make([]askInfo, len(asks))
		for i, a := range asks {
			infos[i] = askInfo{
				ID:        a.ID,
				Question:  a.Question,
				Verdict:   a.Verdict.String(),
				Sources:   a.Sources,
				Error:     a.Error,
				CreatedAt: a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			}
		}
		return jsonResource(req.Params.URI, infos)

	case "rebuilds":
		rebuilds, err := s.ports.History.Rebuilds(ctx, historyLimit)
		if err != nil {
			return nil, fmt.Errorf("listing rebuilds: %w", err)
		}
		return jsonResource(req.Params.URI, rebuilds)

	default:
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractHistoryKind extracts the kind from a URI like pulsrag://history/{kind}.
func extractHistoryKind(uri string) string {
	const prefix = uriScheme + "history/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
