package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/perachon/p7-puls-events-rag/internal/logger"
)

// Version is reported to clients in the initialize handshake.
const Version = "0.1.0"

const shutdownTimeout = 5 * time.Second

// Server serves the events assistant to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer registers the tools and resources the ports allow.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingAnswerService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports}
	s.server = mcp.NewServer(
		&mcp.Implementation{Name: "pulsrag", Title: "PULS events assistant", Version: Version},
		&mcp.ServerOptions{Instructions: instructions(ports)},
	)
	s.registerTools()
	s.registerResources()
	return s, nil
}

// instructions tells the client which cities the assistant covers.
func instructions(p *Ports) string {
	var b strings.Builder
	b.WriteString("Ask about cultural events from the PULS agenda. Answers cite event uids.")
	if cities := p.Answer.AllowedCities(); len(cities) > 0 {
		fmt.Fprintf(&b, " Covered cities: %s.", strings.Join(cities, ", "))
	}
	if p.Rebuild != nil {
		b.WriteString(" Call rebuild after the event data changed.")
	}
	return b.String()
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.server }, nil)
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Info("mcp: listening on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
