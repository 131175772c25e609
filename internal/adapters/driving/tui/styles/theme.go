// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// Theme is the colour palette.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	Bar        lipgloss.Color
}

// DefaultTheme is a dark palette with the agenda's poster red as accent.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    "#E4572E",
		Secondary:  "#29B6F6",
		Background: "#1E1E2E",
		Foreground: "#CDD6F4",
		Muted:      "#6C7086",
		Success:    "#A6E3A1",
		Warning:    "#F9E2AF",
		Error:      "#F38BA8",
		Border:     "#45475A",
		Bar:        "#181825",
	}
}

// Styles are the rendered styles shared by every view.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Help     lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Border     lipgloss.Style

	// Answer is the generated answer body.
	Answer lipgloss.Style
	// Source renders event uids and city tags.
	Source lipgloss.Style
}

// NewStyles builds styles from theme. A nil theme means DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	rounded := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	return &Styles{
		theme: theme,

		Title:    fg(theme.Primary).Bold(true),
		Subtitle: fg(theme.Secondary).Bold(true),
		Normal:   fg(theme.Foreground),
		Muted:    fg(theme.Muted),
		Selected: fg(theme.Foreground).Background(theme.Primary).Bold(true),
		Help:     fg(theme.Muted).Italic(true),

		Error:   fg(theme.Error),
		Success: fg(theme.Success),
		Warning: fg(theme.Warning),

		InputField: rounded.Padding(0, 1),
		StatusBar:  fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Border:     rounded,

		Answer: fg(theme.Foreground).PaddingLeft(2),
		Source: fg(theme.Secondary),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Verdict returns the style of an answer verdict: green when answered,
// yellow when the match was too weak, red when nothing matched.
func (s *Styles) Verdict(v domain.Verdict) lipgloss.Style {
	switch v {
	case domain.VerdictOK:
		return s.Success.Bold(true)
	case domain.VerdictLowConfidence:
		return s.Warning.Bold(true)
	default:
		return s.Error.Bold(true)
	}
}
