// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/components/input"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/components/list"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/components/status"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/keymap"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/messages"
	"github.com/perachon/p7-puls-events-rag/internal/adapters/driving/tui/styles"
	"github.com/perachon/p7-puls-events-rag/internal/core/domain"
	"github.com/perachon/p7-puls-events-rag/internal/core/ports/driving"
)

// View is the ask view: question input, answer text, cited events and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	citations *list.CitationList
	statusbar *status.Bar

	answerService driving.AnswerService
	ctx           context.Context

	// cities is the filter cycle; index 0 means unrestricted.
	cities     []string
	cityIndex  int
	futureOnly bool

	answer     *domain.Answer
	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true = typing a question, false = reading the answer
}

// NewView creates a new ask view.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	answerService driving.AnswerService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQuestionInput(s),
		citations:     list.NewCitationList(s),
		statusbar:     status.NewBar(s, km),
		answerService: answerService,
		ctx:           context.Background(),
		cities:        []string{""},
		futureOnly:    true,
		width:         80,
		height:        24,
		focusInput:    true,
	}
	if answerService != nil {
		v.cities = append(v.cities, answerService.AllowedCities()...)
	}
	v.statusbar.SetFilter(v.filterLabel())
	return v
}

// WithContext sets the context used for asks.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if keymap.Matches(keyStr, v.keymap.CycleCity) {
		v.cityIndex = (v.cityIndex + 1) % len(v.cities)
		v.statusbar.SetFilter(v.filterLabel())
		return v, nil
	}
	if keymap.Matches(keyStr, v.keymap.ToggleFuture) {
		v.futureOnly = !v.futureOnly
		v.statusbar.SetFilter(v.filterLabel())
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			question := strings.TrimSpace(v.input.Value())
			if question == "" {
				return v, nil
			}
			v.err = nil
			v.focusInput = false
			v.input.Blur()
			v.statusbar.SetState(status.StateAsking)
			return v, v.performAsk(v.Request(question))
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if keymap.Matches(keyStr, v.keymap.NewQuestion) {
		v.Reset()
		return v, v.input.Focus()
	}

	v.citations, _ = v.citations.Update(msg)
	return v, nil
}

// Request builds the ask request for a question using the current filters.
func (v *View) Request(question string) domain.AskRequest {
	req := domain.NewAskRequest(question)
	req.FutureOnly = v.futureOnly
	if city := v.cities[v.cityIndex]; city != "" {
		req.AllowedCities = []string{city}
	}
	return req
}

func (v *View) performAsk(req domain.AskRequest) tea.Cmd {
	svc := v.answerService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		ans, err := svc.Ask(ctx, req)
		return messages.AnswerReceived{Answer: ans, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Answer == nil {
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.citations.SetCitations(msg.Answer.Citations)
	v.statusbar.SetMessage("")
	v.statusbar.SetVerdict(msg.Answer.Verdict)
	v.focusInput = false
	v.input.Blur()
}

// setError shows err and hands the keyboard back to the input.
func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusInput = true
	v.input.Focus()
}

func (v *View) filterLabel() string {
	city := v.cities[v.cityIndex]
	if city == "" {
		city = "all cities"
	}
	if v.futureOnly {
		return city + ", upcoming"
	}
	return city + ", all dates"
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("PULS Events"), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.answer != nil {
		verdict := v.styles.Verdict(v.answer.Verdict).Render(v.answer.Verdict.Description())
		text := v.styles.Answer.Width(max(v.width-4, 20)).Render(answerBody(v.answer.Text))
		sections = append(sections, verdict, "", text, "")
		if v.answer.Verdict == domain.VerdictOK {
			sections = append(sections, v.citations.View())
		}
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// answerBody drops the trailing sources block; the citation list shows it.
func answerBody(text string) string {
	if i := strings.LastIndex(text, "\n\nSources :"); i >= 0 {
		return text[:i]
	}
	return text
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.citations.SetDimensions(width, height/2)
	v.statusbar.SetWidth(width)
}

// Ready reports whether the view has been sized.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the current question text.
func (v *View) Question() string {
	return v.input.Value()
}

// SetQuestion sets the question text.
func (v *View) SetQuestion(question string) {
	v.input.SetValue(question)
}

// Answer returns the last answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// FutureOnly reports whether only upcoming events are requested.
func (v *View) FutureOnly() bool {
	return v.futureOnly
}

// City returns the selected city filter, empty when unrestricted.
func (v *View) City() string {
	return v.cities[v.cityIndex]
}

// InputFocused reports whether the question input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset clears the answer and returns to input mode. Filters are kept.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.Reset()
	v.citations.SetCitations(nil)
	v.answer = nil
	v.err = nil
	v.statusbar.Clear()
}
