// Package history provides the view listing recent asks.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/messages"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/styles"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
)

// ErrNoHistoryService indicates that no history service was provided.
var ErrNoHistoryService = errors.New("history service is required")

// listLimit is how many asks are loaded.
const listLimit = 50

// View lists recent asks, newest first.
type View struct {
	styles  *styles.Styles
	service driving.HistoryService
	ctx     context.Context

	asks     []domain.AskRecord
	selected int
	loading  bool
	err      error
	width    int
	height   int
	ready    bool
}

// NewView creates a history view.
func NewView(s *styles.Styles, service driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		service: service,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context used for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the history.
func (v *View) Init() tea.Cmd {
	return v.Load()
}

// Load returns a command fetching recent asks.
func (v *View) Load() tea.Cmd {
	v.loading = true
	svc := v.service
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.HistoryLoaded{Err: ErrNoHistoryService}
		}
		asks, err := svc.Asks(ctx, listLimit)
		return messages.HistoryLoaded{Asks: asks, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.HistoryLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.asks = msg.Asks
			v.selected = 0
		}
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		case "r":
			return v, v.Load()
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.asks)-1 {
				v.selected++
			}
		}
	}
	return v, nil
}

// View renders the history list and the selected entry.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("History"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.asks) == 0:
		b.WriteString(v.styles.Muted.Render("No questions asked yet"))
	default:
		v.renderList(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [r] Reload  [Esc] Back"))
	return b.String()
}

func (v *View) renderList(b *strings.Builder) {
	visible := max(v.height-10, 1)
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := min(start+visible, len(v.asks))

	for i := start; i < end; i++ {
		a := v.asks[i]
		status := a.Verdict.String()
		if a.Error != "" {
			status = "error"
		}
		line := fmt.Sprintf("%s  %-14s  %s",
			a.CreatedAt.Local().Format("2006-01-02 15:04"), status, a.Question)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		b.WriteString("\n")
	}

	sel := v.asks[v.selected]
	b.WriteString("\n")
	if sel.Error != "" {
		b.WriteString(v.styles.Error.Render(sel.Error))
		return
	}
	detail := fmt.Sprintf("%s  %s", sel.Duration.Round(1e6), sel.Verdict.Description())
	if sel.Relaxed {
		detail += "  (relaxed)"
	}
	b.WriteString(v.styles.Muted.Render(detail))
	if len(sel.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Source.Render("Sources: " + strings.Join(sel.Sources, ", ")))
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Asks returns the loaded asks.
func (v *View) Asks() []domain.AskRecord {
	return v.asks
}

// Selected returns the selected index.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
