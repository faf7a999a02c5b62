package keys

import "fmt"

// Kind is the key transition type. Values match the wire encoding.
type Kind uint8

const (
	Released Kind = 0
	Pressed  Kind = 1
)

func (k Kind) String() string {
	switch k {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Event is a single key transition observed by the matrix scanner
type Event struct {
	Kind Kind
	Key  ID
}

// Press and Release build events
func Press(id ID) Event   { return Event{Kind: Pressed, Key: id} }
func Release(id ID) Event { return Event{Kind: Released, Key: id} }

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Key, e.Kind)
}

// Packed is an Event folded into one machine word: kind in the high byte,
// value in the low 24 bits.
type Packed uint32

const valueMask = 0x00ffffff

// Pack folds e into a single word
func Pack(e Event) Packed {
	return Packed(uint32(e.Kind)<<24 | uint32(e.Key)&valueMask)
}

// Unpack reverses Pack
func Unpack(p Packed) Event {
	return Event{
		Kind: Kind(uint32(p) >> 24),
		Key:  ID(uint32(p) & valueMask),
	}
}
