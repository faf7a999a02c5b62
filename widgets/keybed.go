package widgets

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"go-cvkeys/keys"
	"go-cvkeys/theme"
)

// black marks the sharps within an octave
var black = [12]bool{1: true, 3: true, 6: true, 8: true, 10: true}

// RenderKeybed draws the keybed one octave per line, lowest octave at the
// bottom. held is oldest first; sounding is keys.None when silent.
func RenderKeybed(th *theme.Theme, held []keys.ID, sounding keys.ID) string {
	heldStyle := lipgloss.NewStyle().Foreground(th.Accent())
	playStyle := lipgloss.NewStyle().Foreground(th.Active()).Bold(true)
	upStyle := lipgloss.NewStyle().Foreground(th.Muted())
	labelStyle := lipgloss.NewStyle().Foreground(th.FG())

	var lines []string
	for first := keys.MinKeybed; first <= keys.MaxKeybed; first += 12 {
		var line strings.Builder
		line.WriteString(labelStyle.Render(fmt.Sprintf("%-3s", first)))
		for n := 0; n < 12; n++ {
			id := first + keys.ID(n)
			if id > keys.MaxKeybed {
				break
			}
			sym := th.Symbols.KeyUp
			if black[n] {
				sym = th.Symbols.KeyBlack
			}
			style := upStyle
			switch {
			case id == sounding:
				sym, style = th.Symbols.KeyPlay, playStyle
			case slices.Contains(held, id):
				sym, style = th.Symbols.KeyHeld, heldStyle
			}
			line.WriteString(" ")
			line.WriteString(style.Render(string(sym)))
		}
		lines = append(lines, line.String())
	}
	slices.Reverse(lines)
	return strings.Join(lines, "\n")
}

// RenderFunctionKeys lists the function buttons, highlighting those down
func RenderFunctionKeys(th *theme.Theme, down func(keys.ID) bool) string {
	on := lipgloss.NewStyle().Foreground(th.Active())
	off := lipgloss.NewStyle().Foreground(th.Muted())
	ids := lo.RangeFrom(keys.MinFunction, int(keys.MaxFunction-keys.MinFunction)+1)
	return strings.Join(lo.Map(ids, func(id keys.ID, _ int) string {
		if down != nil && down(id) {
			return on.Render(id.String())
		}
		return off.Render(id.String())
	}), " ")
}

// RenderMeter draws value within [0, max] as a bar of width cells
func RenderMeter(th *theme.Theme, value, max float64, width int) string {
	if width <= 0 || max <= 0 {
		return ""
	}
	filled := int(value / max * float64(width))
	filled = lo.Clamp(filled, 0, width)
	bar := lipgloss.NewStyle().Foreground(th.Accent()).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(th.Muted()).Render(strings.Repeat("░", width-filled))
	return bar + rest
}
