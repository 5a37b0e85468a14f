package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/coop-snake/internal/core"
)

// KeyMap defines the key bindings of the player view.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Straight key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Straight, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Straight, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w"),
			key.WithHelp("↑/w", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s"),
			key.WithHelp("↓/s", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("→/d", "right"),
		),
		Straight: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "straight"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Intent translates a key press into the intent it votes for.
// Returns false for keys that are not steering keys.
func (k KeyMap) Intent(msg tea.KeyMsg) (core.Intent, bool) {
	switch {
	case key.Matches(msg, k.Up):
		return core.Toward(core.Up), true
	case key.Matches(msg, k.Down):
		return core.Toward(core.Down), true
	case key.Matches(msg, k.Left):
		return core.Toward(core.Left), true
	case key.Matches(msg, k.Right):
		return core.Toward(core.Right), true
	case key.Matches(msg, k.Straight):
		return core.Straight, true
	}
	return core.Straight, false
}
