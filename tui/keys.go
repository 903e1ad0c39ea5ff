// ABOUTME: Key bindings for the playback TUI built on bubbles/key.
// ABOUTME: keyMap implements help.KeyMap so the bubbles help view can list them.
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Train     key.Binding
	Back      key.Binding
	Forward   key.Binding
	Play      key.Binding
	First     key.Binding
	Last      key.Binding
	Dataset   key.Binding
	Criterion key.Binding
	DepthUp   key.Binding
	DepthDown key.Binding
	MinUp     key.Binding
	MinDown   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Train:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "train")),
		Back:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "back")),
		Forward:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "forward")),
		Play:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		First:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "first step")),
		Last:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "last step")),
		Dataset:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dataset")),
		Criterion: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "criterion")),
		DepthUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "max depth")),
		DepthDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "max depth")),
		MinUp:     key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "min samples")),
		MinDown:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "min samples")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Train, k.Play, k.Back, k.Forward, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Train, k.Play, k.Back, k.Forward},
		{k.First, k.Last, k.Dataset, k.Criterion},
		{k.DepthUp, k.MinUp, k.Help, k.Quit},
	}
}
