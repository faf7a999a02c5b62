// Package matrix scans the key matrix one column at a time and turns row
// state changes into key events.
package matrix

import (
	"fmt"

	"go-cvkeys/keys"
)

// Layout maps matrix positions to keys. keys.None marks an unpopulated cell.
type Layout [][]keys.ID

// DefaultLayout is the 6x10 keyboard matrix: function buttons on the outer
// columns, the keybed interleaved in between.
var DefaultLayout = Layout{
	{keys.OctaveUp, keys.CS1, keys.G1, keys.CS2, keys.G2, keys.CS3, keys.G3, keys.CS4, keys.G4, keys.Rest},
	{keys.OctaveDown, keys.D1, keys.GS1, keys.D2, keys.GS2, keys.D3, keys.GS3, keys.D4, keys.GS4, keys.Hold},
	{keys.PlayPause, keys.DS1, keys.A1, keys.DS2, keys.A2, keys.DS3, keys.A3, keys.DS4, keys.A4, keys.Func},
	{keys.Record, keys.E1, keys.AS1, keys.E2, keys.AS2, keys.E3, keys.AS3, keys.E4, keys.AS4, keys.Mode},
	{keys.Stop, keys.F1, keys.B1, keys.F2, keys.B2, keys.F3, keys.B3, keys.F4, keys.B4, keys.None},
	{keys.C1, keys.FS1, keys.C2, keys.FS2, keys.C3, keys.FS3, keys.C4, keys.FS4, keys.C5, keys.None},
}

// Rows returns the number of rows
func (l Layout) Rows() int { return len(l) }

// Cols returns the number of columns
func (l Layout) Cols() int {
	if len(l) == 0 {
		return 0
	}
	return len(l[0])
}

// Position is a matrix cell
type Position struct {
	Row, Col int
}

// Validate checks that the layout is rectangular, fits a 32-bit row bitmap
// and places every key at most once.
func (l Layout) Validate() error {
	if l.Rows() == 0 || l.Cols() == 0 {
		return fmt.Errorf("matrix: empty layout")
	}
	if l.Rows() > 32 {
		return fmt.Errorf("matrix: %d rows exceed the row bitmap", l.Rows())
	}
	var seen [256]bool
	for r, row := range l {
		if len(row) != l.Cols() {
			return fmt.Errorf("matrix: row %d has %d columns, want %d", r, len(row), l.Cols())
		}
		for _, id := range row {
			if id == keys.None {
				continue
			}
			if seen[id] {
				return fmt.Errorf("matrix: key %s placed twice", id)
			}
			seen[id] = true
		}
	}
	return nil
}

// Index returns the position of every key in the layout
func (l Layout) Index() map[keys.ID]Position {
	idx := make(map[keys.ID]Position)
	for r, row := range l {
		for c, id := range row {
			if id != keys.None {
				idx[id] = Position{Row: r, Col: c}
			}
		}
	}
	return idx
}
