package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-cvkeys/engine"
	"go-cvkeys/keys"
	"go-cvkeys/matrix"
	"go-cvkeys/theme"
	"go-cvkeys/voice"
	"go-cvkeys/widgets"
)

// tapLength holds a function key down long enough for a full scan
const tapLength = 40 * time.Millisecond

// qwerty maps one octave onto the home rows, C to C
var qwerty = map[string]int{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5, "t": 6,
	"g": 7, "y": 8, "h": 9, "u": 10, "j": 11, "k": 12,
}

type Model struct {
	Engine  *engine.Engine
	Matrix  *matrix.Virtual
	Theme   *theme.Theme
	Updates <-chan voice.State

	help     help.Model
	state    voice.State
	octave   int // keybed octave under the qwerty keys, 0-3
	status   string
	quitting bool
}

// UpdateMsg carries a voice snapshot
type UpdateMsg voice.State

type releaseMsg keys.ID

// Updates returns a channel fed from voice updates and the observer that
// feeds it. Updates are dropped when the UI falls behind.
func Updates() (<-chan voice.State, func(voice.State)) {
	ch := make(chan voice.State, 1)
	return ch, func(st voice.State) {
		select {
		case ch <- st:
		default:
		}
	}
}

func NewModel(e *engine.Engine, vm *matrix.Virtual, th *theme.Theme, updates <-chan voice.State) Model {
	return Model{
		Engine:  e,
		Matrix:  vm,
		Theme:   th,
		Updates: updates,
		help:    help.New(),
		state:   e.Stats().Voice,
	}
}

func ListenForUpdates(updates <-chan voice.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return nil
		}
		return UpdateMsg(st)
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		m.state = voice.State(msg)
		return m, ListenForUpdates(m.Updates)

	case releaseMsg:
		m.Matrix.Release(keys.ID(msg))
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, bindings.Quit):
		m.quitting = true
		m.Matrix.ReleaseAll()
		return m, tea.Quit

	case key.Matches(msg, bindings.ReleaseAll):
		m.Matrix.ReleaseAll()
		m.status = "all keys released"

	case key.Matches(msg, bindings.OctaveDown):
		return m, m.tap(keys.OctaveDown)
	case key.Matches(msg, bindings.OctaveUp):
		return m, m.tap(keys.OctaveUp)

	case key.Matches(msg, bindings.QwertyDown):
		m.octave = max(0, m.octave-1)
		m.status = fmt.Sprintf("qwerty octave %d", m.octave+1)
	case key.Matches(msg, bindings.QwertyUp):
		m.octave = min(3, m.octave+1)
		m.status = fmt.Sprintf("qwerty octave %d", m.octave+1)

	case key.Matches(msg, bindings.Play):
		id := keys.MinKeybed + keys.ID(m.octave*12+qwerty[msg.String()])
		if id > keys.MaxKeybed {
			return m, nil
		}
		// Terminals report no key-up, so keys latch
		down, err := m.Matrix.Toggle(id)
		if err != nil {
			m.status = err.Error()
		} else if down {
			m.status = fmt.Sprintf("%s down", id)
		} else {
			m.status = fmt.Sprintf("%s up", id)
		}
	}
	return m, nil
}

func (m Model) tap(id keys.ID) tea.Cmd {
	if err := m.Matrix.Press(id); err != nil {
		return nil
	}
	return tea.Tick(tapLength, func(time.Time) tea.Msg { return releaseMsg(id) })
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	th := m.Theme
	st := m.state
	stats := m.Engine.Stats()

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(th.Warning())

	gate := th.Symbols.GateOff
	if st.Gate {
		gate = th.Symbols.GateOn
	}
	header := headerStyle.Render(fmt.Sprintf("go-cvkeys  gate %c  key %-4s  shift %+d", gate, st.Key, st.Shift))

	cv := fmt.Sprintf("CV  %6.4fV %s  dac %6.4fV  word %v",
		float64(st.Volts), widgets.RenderMeter(th, float64(st.Volts), 6, 24), st.Target, st.Word)

	counters := fmt.Sprintf("held %d  retrig %d  queue %d/%d  dropped %d/%d  invalid %d  dac err %d",
		len(st.Held), st.Retriggers, stats.Queue.Pending, stats.Queue.Capacity,
		st.Dropped, stats.Queue.Dropped, st.Invalid, st.DACErrors)
	if st.Dropped > 0 || stats.Queue.Dropped > 0 || st.DACErrors > 0 {
		counters = warnStyle.Render(counters)
	} else {
		counters = dimStyle.Render(counters)
	}

	helpView := m.help.View(bindings)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderKeybed(th, st.Held, st.Key))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderFunctionKeys(th, m.Matrix.Down))
	out.WriteString("\n\n")
	out.WriteString(cv)
	out.WriteString("\n")
	out.WriteString(counters)
	out.WriteString("\n\n")
	out.WriteString(helpView)
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(m.status))
	}
	return out.String()
}
