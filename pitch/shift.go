package pitch

// Shift is an octave offset added to every key's voltage
type Shift int

// Range bounds the octave shift
type Range struct {
	Min Shift
	Max Shift
}

// DefaultRange allows one octave either way
var DefaultRange = Range{Min: -1, Max: 1}

// Clamp limits s to r
func (r Range) Clamp(s Shift) Shift {
	if s < r.Min {
		return r.Min
	}
	if s > r.Max {
		return r.Max
	}
	return s
}

// Up returns s raised one octave, clamped
func (r Range) Up(s Shift) Shift { return r.Clamp(s + 1) }

// Down returns s lowered one octave, clamped
func (r Range) Down(s Shift) Shift { return r.Clamp(s - 1) }

// Valid returns true if Min <= 0 <= Max. Every voice starts unshifted, so
// zero has to be inside the range.
func (r Range) Valid() bool { return r.Min <= 0 && 0 <= r.Max }
