package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-cvkeys/config"
	"go-cvkeys/dac"
	"go-cvkeys/engine"
	"go-cvkeys/keys"
	"go-cvkeys/matrix"
	"go-cvkeys/theme"
	"go-cvkeys/voice"
)

func newModel(t *testing.T) Model {
	t.Helper()
	vm := matrix.NewVirtual(matrix.DefaultLayout)
	cfg := config.DefaultConfig()
	e, err := engine.New(cfg, engine.Hardware{Scanner: vm, Bus: dac.BusFunc(func(uint16) error { return nil })})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	updates, observe := Updates()
	e.Observe(observe)
	return NewModel(e, vm, theme.New(theme.Builtin()), updates)
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestQwertyTogglesKeys(t *testing.T) {
	m := newModel(t)
	next, _ := m.Update(typed("a"))
	m = next.(Model)
	if !m.Matrix.Down(keys.C1) {
		t.Fatalf("a should press C1")
	}
	next, _ = m.Update(typed("]"))
	m = next.(Model)
	next, _ = m.Update(typed("w"))
	m = next.(Model)
	if !m.Matrix.Down(keys.CS2) {
		t.Fatalf("w in octave 2 should press C#2")
	}
	next, _ = m.Update(typed("a"))
	m = next.(Model)
	if !m.Matrix.Down(keys.C1) || !m.Matrix.Down(keys.C2) {
		t.Fatalf("toggle state wrong")
	}
	next, _ = m.Update(typed(" "))
	m = next.(Model)
	if m.Matrix.Down(keys.C1) || m.Matrix.Down(keys.CS2) {
		t.Fatalf("space should release everything")
	}
}

func TestTapReleasesLater(t *testing.T) {
	m := newModel(t)
	next, cmd := m.Update(typed("x"))
	m = next.(Model)
	if !m.Matrix.Down(keys.OctaveUp) || cmd == nil {
		t.Fatalf("x should press OctaveUp and schedule a release")
	}
	next, _ = m.Update(releaseMsg(keys.OctaveUp))
	m = next.(Model)
	if m.Matrix.Down(keys.OctaveUp) {
		t.Fatalf("OctaveUp still down")
	}
}

func TestViewShowsState(t *testing.T) {
	m := newModel(t)
	next, _ := m.Update(UpdateMsg(voice.State{Key: keys.A2, Gate: true, Held: []keys.ID{keys.A2}}))
	m = next.(Model)
	out := m.View()
	if !strings.Contains(out, "A2") || !strings.Contains(out, "go-cvkeys") {
		t.Fatalf("view missing state:\n%s", out)
	}
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	m.Matrix.Press(keys.C3)
	next, cmd := m.Update(typed("q"))
	if cmd == nil || next.(Model).View() != "" {
		t.Fatalf("q should quit")
	}
	if m.Matrix.Down(keys.C3) {
		t.Fatalf("quit should release keys")
	}
}
