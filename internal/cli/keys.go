package cli

import "charm.land/bubbles/v2/key"

// keyMap defines the chat key bindings.
type keyMap struct {
	Send       key.Binding
	Focus      key.Binding
	Back       key.Binding
	Up         key.Binding
	Down       key.Binding
	ThumbsUp   key.Binding
	ThumbsDown key.Binding
	Regenerate key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "rate answers"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "tab", "i"),
			key.WithHelp("esc", "back to input"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous answer"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next answer"),
		),
		ThumbsUp: key.NewBinding(
			key.WithKeys("y", "+"),
			key.WithHelp("y", "👍"),
		),
		ThumbsDown: key.NewBinding(
			key.WithKeys("n", "-"),
			key.WithHelp("n", "👎"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "regenerate"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// inputHelp lists the bindings shown while typing.
func (k keyMap) inputHelp() []key.Binding {
	return []key.Binding{k.Send, k.Focus, k.Quit}
}

// threadHelp lists the bindings shown while browsing answers.
func (k keyMap) threadHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.ThumbsUp, k.ThumbsDown, k.Regenerate, k.Back, k.Quit}
}
