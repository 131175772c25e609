// Package tui provides an interactive terminal user interface for asking
// about events. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions about events.
	Answer driving.AnswerService

	// Rebuild replaces the vector index. Optional.
	Rebuild driving.RebuildService

	// History lists recorded asks. Optional.
	History driving.HistoryService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	answer driving.AnswerService,
	rebuild driving.RebuildService,
	history driving.HistoryService,
) *Ports {
	return &Ports{
		Answer:  answer,
		Rebuild: rebuild,
		History: history,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
