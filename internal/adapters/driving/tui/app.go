package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/keymap"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/messages"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/styles"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/views/ask"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/views/history"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/views/menu"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keys   *keymap.KeyMap

	menuView    *menu.View
	askView     *ask.View
	historyView *history.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// rebuilding is set while a rebuild command is running.
	rebuilding bool

	// notice is a one-line outcome shown under the menu.
	notice string

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keys:        km,
		menuView:    menu.NewView(s, ports.Rebuild != nil),
		askView:     ask.NewView(s, km, ports.Answer),
		historyView: history.NewView(s, ports.History),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.askView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("pulsrag"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}

		switch a.currentView {
		case messages.ViewMenu:
			a.menuView, cmd = a.menuView.Update(msg)
		case messages.ViewAsk:
			a.askView, cmd = a.askView.Update(msg)
		case messages.ViewHistory:
			a.historyView, cmd = a.historyView.Update(msg)
		case messages.ViewHelp:
			if key.Matches(msg, a.keys.Back) {
				a.currentView = messages.ViewMenu
			}
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewAsk:
			a.askView.Reset()
			return a, a.askView.Init()
		case messages.ViewHistory:
			return a, a.historyView.Init()
		case messages.ViewMenu, messages.ViewHelp:
		}
		return a, nil

	case messages.AnswerReceived:
		a.err = msg.Err
		a.askView, cmd = a.askView.Update(msg)
		return a, cmd

	case messages.HistoryLoaded:
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.RebuildStarted:
		return a, a.startRebuild()

	case messages.RebuildCompleted:
		a.rebuilding = false
		a.notice, a.err = rebuildNotice(msg)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewAsk {
			a.askView, cmd = a.askView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) startRebuild() tea.Cmd {
	if a.rebuilding {
		return nil
	}
	if a.ports.Rebuild == nil {
		a.err = ErrRebuildUnavailable
		a.notice = ""
		return nil
	}
	a.rebuilding = true
	a.notice = "Rebuilding index..."
	a.err = nil

	svc := a.ports.Rebuild
	ctx := a.ctx
	return func() tea.Msg {
		res, err := svc.Rebuild(ctx)
		return messages.RebuildCompleted{Result: res, Err: err}
	}
}

func rebuildNotice(msg messages.RebuildCompleted) (string, error) {
	switch {
	case errors.Is(msg.Err, domain.ErrRebuildInProgress):
		return "", msg.Err
	case msg.Result == nil && msg.Err != nil:
		return "", msg.Err
	case msg.Result == nil:
		return "", nil
	}
	notice := fmt.Sprintf("%s (%.1fs)", msg.Result.Message, msg.Result.DurationSeconds())
	if !msg.Result.OK() {
		return notice, msg.Err
	}
	return notice, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.viewMenu()
	}
}

func (a *App) viewMenu() string {
	out := a.menuView.View()
	if a.notice != "" {
		style := a.styles.Success
		if a.rebuilding {
			style = a.styles.Muted
		} else if a.err != nil {
			style = a.styles.Error
		}
		out += "\n\n" + style.Render(a.notice)
	}
	if a.err != nil && a.notice == "" {
		out += "\n\n" + a.styles.Error.Render("Error: "+a.err.Error())
	}
	return out
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n")
	for _, sec := range a.keys.Sections() {
		b.WriteString("\n" + a.styles.Subtitle.Render(sec.Title) + "\n")
		for _, kb := range sec.Bindings {
			h := kb.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\n" + a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Notice returns the last rebuild notice.
func (a *App) Notice() string {
	return a.notice
}

// Rebuilding reports whether a rebuild is running.
func (a *App) Rebuilding() bool {
	return a.rebuilding
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
}
