package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Keybed
	KeyUp    rune // □ released
	KeyHeld  rune // ■ held, not sounding
	KeyPlay  rune // ▶ sounding
	KeyBlack rune // ▪ released black key

	// Gate
	GateOn  rune // ●
	GateOff rune // ○
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			KeyUp:    '□',
			KeyHeld:  '■',
			KeyPlay:  '▶',
			KeyBlack: '▪',

			GateOn:  '●',
			GateOff: '○',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0   // near black
	RoleSurface = 0.125 // slate
	RoleMuted   = 0.25  // grey-blue
	RoleFG      = 0.5   // pale teal (readable)
	RoleAccent  = 0.45  // teal
	RoleActive  = 0.75  // amber
	RoleWarning = 0.875 // orange
	RoleError   = 1.0   // red
)

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Error() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleError))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
