// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/keymap"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/styles"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady      State = "ready"
	StateAsking     State = "asking"
	StateAnswered   State = "answered"
	StateRebuilding State = "rebuilding"
	StateError      State = "error"
	StateHelp       State = "help"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	verdict domain.Verdict
	filter  string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	var left string
	switch s.state {
	case StateAsking:
		left = s.styles.Muted.Render("Searching events...")
	case StateRebuilding:
		left = s.styles.Muted.Render("Rebuilding index...")
	case StateError:
		if s.message != "" {
			left = s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		} else {
			left = s.styles.Error.Render("Error")
		}
	case StateHelp:
		left = s.styles.Normal.Render("Help")
	case StateAnswered:
		left = s.styles.Verdict(s.verdict).Render(s.verdict.String())
	default:
		if s.message != "" {
			left = s.styles.Normal.Render(s.message)
		} else {
			left = s.styles.Muted.Render("Ready")
		}
	}

	if s.filter != "" {
		left += s.styles.Muted.Render("  [" + s.filter + "]")
	}
	return left
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateAnswered {
		bindings = s.keymap.AnswerHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetVerdict records the verdict of the last answer and switches to StateAnswered.
func (s *Bar) SetVerdict(v domain.Verdict) {
	s.verdict = v
	s.state = StateAnswered
}

// Verdict returns the last recorded verdict.
func (s *Bar) Verdict() domain.Verdict {
	return s.verdict
}

// SetFilter sets the filter summary shown after the state, e.g. "Paris, upcoming".
func (s *Bar) SetFilter(filter string) {
	s.filter = filter
}

// Filter returns the filter summary.
func (s *Bar) Filter() string {
	return s.filter
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to its default state. The filter is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.verdict = ""
}
