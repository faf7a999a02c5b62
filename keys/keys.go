package keys

import (
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a key on the matrix. 0 is reserved as "no key".
type ID uint8

// None is the sentinel for "no key". It never enters the queue or the stack.
const None ID = 0

// Keybed keys, lowest first
const (
	C1 ID = iota + 1
	CS1
	D1
	DS1
	E1
	F1
	FS1
	G1
	GS1
	A1
	AS1
	B1
	C2
	CS2
	D2
	DS2
	E2
	F2
	FS2
	G2
	GS2
	A2
	AS2
	B2
	C3
	CS3
	D3
	DS3
	E3
	F3
	FS3
	G3
	GS3
	A3
	AS3
	B3
	C4
	CS4
	D4
	DS4
	E4
	F4
	FS4
	G4
	GS4
	A4
	AS4
	B4
	C5
)

// Function keys
const (
	OctaveUp ID = iota + 50
	OctaveDown
	PlayPause
	Record
	Stop
	Rest
	Hold
	Func
	Mode
)

const (
	MinKeybed   = C1
	MaxKeybed   = C5
	MinFunction = OctaveUp
	MaxFunction = Mode
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var functionNames = [...]string{
	OctaveUp - MinFunction:   "OctaveUp",
	OctaveDown - MinFunction: "OctaveDown",
	PlayPause - MinFunction:  "PlayPause",
	Record - MinFunction:     "Record",
	Stop - MinFunction:       "Stop",
	Rest - MinFunction:       "Rest",
	Hold - MinFunction:       "Hold",
	Func - MinFunction:       "Func",
	Mode - MinFunction:       "Mode",
}

// IsKeybed returns true if id is a musical key
func IsKeybed(id ID) bool {
	return id >= MinKeybed && id <= MaxKeybed
}

// IsFunction returns true if id is one of the function buttons
func IsFunction(id ID) bool {
	return id >= MinFunction && id <= MaxFunction
}

// Valid returns true for any id the matrix can produce
func Valid(id ID) bool {
	return IsKeybed(id) || IsFunction(id)
}

// String returns a note name ("C#2") for keybed keys and the button name for
// function keys.
func (id ID) String() string {
	switch {
	case id == None:
		return "none"
	case IsKeybed(id):
		n := int(id) - 1
		return fmt.Sprintf("%s%d", noteNames[n%12], n/12+1)
	case IsFunction(id):
		return functionNames[id-MinFunction]
	default:
		return fmt.Sprintf("key(%d)", uint8(id))
	}
}

// Parse accepts a note name ("C1", "c#3"), a function key name ("OctaveUp")
// or a decimal id.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, fmt.Errorf("empty key name")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 || !Valid(ID(n)) {
			return None, fmt.Errorf("key id %d out of range", n)
		}
		return ID(n), nil
	}
	for i, name := range functionNames {
		if strings.EqualFold(name, s) {
			return MinFunction + ID(i), nil
		}
	}

	// Split note letters from the octave digit
	idx := strings.IndexAny(s, "0123456789")
	if idx <= 0 {
		return None, fmt.Errorf("unknown key %q", s)
	}
	note, octStr := strings.ToUpper(s[:idx]), s[idx:]
	oct, err := strconv.Atoi(octStr)
	if err != nil {
		return None, fmt.Errorf("unknown key %q", s)
	}
	for i, n := range noteNames {
		if n == note {
			id := (oct-1)*12 + i + 1
			if id < int(MinKeybed) || id > int(MaxKeybed) {
				return None, fmt.Errorf("key %q outside keybed", s)
			}
			return ID(id), nil
		}
	}
	return None, fmt.Errorf("unknown key %q", s)
}
