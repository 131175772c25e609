// Package keymap holds the TUI key bindings and the help sections built from them.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap groups every binding the views react to.
type KeyMap struct {
	Quit key.Binding
	Back key.Binding
	Help key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	Ask          key.Binding
	CycleCity    key.Binding
	ToggleFuture key.Binding
	NewQuestion  key.Binding

	Reload key.Binding
}

// Section is a titled block of the help screen.
type Section struct {
	Title    string
	Bindings []key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns vim-style navigation plus the ask shortcuts.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind("ctrl+c", "quit", "ctrl+c"),
		Back: bind("esc", "back to menu", "esc"),
		Help: bind("?", "help", "?"),

		Up:     bind("↑/k", "up", "up", "k"),
		Down:   bind("↓/j", "down", "down", "j"),
		Select: bind("enter", "select", "enter"),

		Ask:          bind("enter", "ask", "enter"),
		CycleCity:    bind("tab", "cycle city filter", "tab"),
		ToggleFuture: bind("ctrl+f", "upcoming only / all dates", "ctrl+f"),
		NewQuestion:  bind("n", "new question", "n"),

		Reload: bind("r", "reload", "r"),
	}
}

// ShortHelp is shown in the status bar while typing a question.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ask, k.CycleCity, k.ToggleFuture, k.Back}
}

// AnswerHelp is shown in the status bar under an answer.
func (k *KeyMap) AnswerHelp() []key.Binding {
	return []key.Binding{k.NewQuestion, k.Up, k.Down, k.Back}
}

// Sections lays out the help screen, one section per view.
func (k *KeyMap) Sections() []Section {
	return []Section{
		{"General", []key.Binding{k.Back, k.Quit}},
		{"Menu", []key.Binding{k.Up, k.Down, k.Select}},
		{"Ask", []key.Binding{k.Ask, k.CycleCity, k.ToggleFuture}},
		{"Answer", []key.Binding{k.Up, k.Down, k.NewQuestion}},
		{"History", []key.Binding{k.Up, k.Down, k.Reload}},
	}
}

// Matches reports whether keyStr is one of binding's keys.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
