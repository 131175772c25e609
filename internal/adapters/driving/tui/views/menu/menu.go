// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/messages"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/styles"
)

// Action is what selecting a menu item does.
type Action int

const (
	// ActionNavigate switches to the item's view.
	ActionNavigate Action = iota
	// ActionRebuild starts an index rebuild.
	ActionRebuild
	// ActionQuit exits the app.
	ActionQuit
)

// Item represents a single menu option.
type Item struct {
	Label  string
	View   messages.ViewType
	Action Action
}

// View represents the main menu view.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates a new menu view. The rebuild entry is only offered
// when canRebuild is set.
func NewView(s *styles.Styles, canRebuild bool) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	items := []Item{
		{Label: "Ask a question", View: messages.ViewAsk},
		{Label: "History", View: messages.ViewHistory},
	}
	if canRebuild {
		items = append(items, Item{Label: "Rebuild index", Action: ActionRebuild})
	}
	items = append(items,
		Item{Label: "Help", View: messages.ViewHelp},
		Item{Label: "Quit", Action: ActionQuit},
	)

	return &View{
		styles: s,
		items:  items,
		width:  80,
		height: 24,
	}
}

// Init initialises the menu view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
			return v, nil

		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
			return v, nil

		case "enter":
			return v, v.activate(v.items[v.selected])

		case "q":
			return v, tea.Quit
		}
	}

	return v, nil
}

func (v *View) activate(item Item) tea.Cmd {
	switch item.Action {
	case ActionQuit:
		return tea.Quit
	case ActionRebuild:
		return func() tea.Msg { return messages.RebuildStarted{} }
	default:
		return func() tea.Msg { return messages.ViewChanged{View: item.View} }
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder

	b.WriteString(v.styles.Title.Render("PULS Events"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("Ask about upcoming cultural events"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		cursor := "  "
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

		if i == v.selected {
			cursor = "> "
			style = lipgloss.NewStyle().
				Foreground(v.styles.Theme().Primary).
				Bold(true)
		}

		b.WriteString(cursor + style.Render(item.Label))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the currently selected index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu items.
func (v *View) Items() []Item {
	return v.items
}
