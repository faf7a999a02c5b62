package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// Key builds a binding whose help label is its first key
func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keymap struct {
	Play       key.Binding
	ReleaseAll key.Binding
	OctaveDown key.Binding
	OctaveUp   key.Binding
	QwertyDown key.Binding
	QwertyUp   key.Binding
	Quit       key.Binding
}

var bindings = keymap{
	Play:       key.NewBinding(key.WithKeys("a", "w", "s", "e", "d", "f", "t", "g", "y", "h", "u", "j", "k"), key.WithHelp("a-k", "toggle key")),
	ReleaseAll: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "release all")),
	OctaveDown: Key("octave shift down", "z"),
	OctaveUp:   Key("octave shift up", "x"),
	QwertyDown: Key("qwerty octave down", "["),
	QwertyUp:   Key("qwerty octave up", "]"),
	Quit:       Key("quit", "q", "ctrl+c"),
}

func (k keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.ReleaseAll, k.OctaveDown, k.OctaveUp, k.QwertyDown, k.QwertyUp, k.Quit}
}

func (k keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.ReleaseAll},
		{k.OctaveDown, k.OctaveUp},
		{k.QwertyDown, k.QwertyUp, k.Quit},
	}
}
