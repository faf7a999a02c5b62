// Package pitch maps keybed keys onto a 1 V/octave control voltage.
package pitch

import "go-cvkeys/keys"

// Volts is the logical control voltage before the output amplifier
type Volts float64

// semitone holds the fractional volts of each note within an octave
var semitone = [12]Volts{
	0.0 / 12, 1.0 / 12, 2.0 / 12, 3.0 / 12,
	4.0 / 12, 5.0 / 12, 6.0 / 12, 7.0 / 12,
	8.0 / 12, 9.0 / 12, 10.0 / 12, 11.0 / 12,
}

// KeyToVoltage returns the CV for a keybed key at the given octave shift.
// The octave and note are taken straight from the key id, so C1 (id 1) sits
// one semitone above 0V. Callers filter non-keybed ids first.
func KeyToVoltage(id keys.ID, shift Shift) Volts {
	octave := int(id) / 12
	note := int(id) % 12
	return Volts(octave) + semitone[note] + Volts(shift)
}
