// Package mcp provides an MCP (Model Context Protocol) server adapter for PULS events.
// It lets AI assistants ask questions about upcoming events and trigger index rebuilds.
package mcp

import "errors"

var (
	// ErrMissingAnswerService is returned when the answer service is not provided.
	ErrMissingAnswerService = errors.New("mcp: answer service is required")

	// ErrInternal is what clients see for infrastructure failures.
	// The cause is logged, not returned.
	ErrInternal = errors.New("internal error, see server logs")
)
