// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// AskRequested is a command to answer a question.
type AskRequested struct {
	Request domain.AskRequest
}

// AnswerReceived carries an answer back to the model.
type AnswerReceived struct {
	Answer *domain.Answer
	Err    error
}

// HistoryLoaded carries recent asks.
type HistoryLoaded struct {
	Asks []domain.AskRecord
	Err  error
}

// RebuildStarted is sent when an index rebuild begins.
type RebuildStarted struct{}

// RebuildCompleted carries the outcome of an index rebuild.
// Result may be set alongside Err when the build failed with diagnostics.
type RebuildCompleted struct {
	Result *domain.RebuildResult
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question input and answer view.
	ViewAsk
	// ViewHistory lists recent asks.
	ViewHistory
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewHistory:
		return "history"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
