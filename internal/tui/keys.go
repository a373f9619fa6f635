package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the call form bindings.
type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Left   key.Binding // Selector: previous option.
	Right  key.Binding // Selector: next option.
	Submit key.Binding
	Back   key.Binding // Return to the prompt.
	Quit   key.Binding // Leave HAF.
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down", "enter"),
		key.WithHelp("tab/↓", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab/↑", "previous field"),
	),
	Left: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "previous option"),
	),
	Right: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next option"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "submit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back to prompt"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+q"),
		key.WithHelp("ctrl+q", "exit HAF"),
	),
}
